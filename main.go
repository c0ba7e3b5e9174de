// ABOUTME: Entry point for the Stellar contacts dashboard
// ABOUTME: Loads config, wires logger, API client and store, then routes to the TUI, web, CLI or MCP front end
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/harperreed/stellar/api"
	"github.com/harperreed/stellar/cli"
	"github.com/harperreed/stellar/config"
	"github.com/harperreed/stellar/export"
	"github.com/harperreed/stellar/logging"
	"github.com/harperreed/stellar/store"
	"github.com/harperreed/stellar/tui"
	"github.com/harperreed/stellar/web"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file path (default: ~/.config/stellar/config.toml)")
	apiURL := flag.String("api-url", "", "Contacts API base URL (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error (overrides config)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("stellar version %s\n", version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	args := flag.Args()

	// With no command, open the dashboard when attached to a terminal
	if len(args) == 0 {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			printUsage()
			os.Exit(0)
		}
		args = []string{"tui"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "tui":
		// The dashboard owns the screen, so logs go to a file
		logger, closeLog, err := logging.NewFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer func() { _ = closeLog() }()

		st := newStore(cfg, logger)
		err = tui.Run(ctx, st, tui.Options{
			RecentDays: cfg.UI.RecentDays,
			ExportDays: cfg.UI.ExportDays,
			Saver:      export.NewFileSaver(cfg.Export.Dir),
		})
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "web":
		fs := flag.NewFlagSet("web", flag.ExitOnError)
		addr := fs.String("addr", cfg.Web.Addr, "Listen address")
		_ = fs.Parse(commandArgs)

		logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		server, err := web.NewServer(newStore(cfg, logger), web.Options{
			RecentDays: cfg.UI.RecentDays,
			ExportDays: cfg.UI.ExportDays,
			Logger:     logger,
		})
		if err != nil {
			log.Fatalf("Failed to create web server: %v", err)
		}

		logger.Info("starting web dashboard", "addr", *addr, "api", cfg.API.BaseURL)
		if err := server.Start(ctx, *addr); err != nil {
			log.Fatalf("Web server failed: %v", err)
		}

	case "mcp":
		// stdout carries the protocol
		logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		if err := cli.MCPCommand(ctx, newStore(cfg, logger), version); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "contacts":
		if len(commandArgs) == 0 {
			fmt.Println("Error: contacts requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		runContactsCommand(ctx, cfg, commandArgs[0], commandArgs[1:])

	case "config":
		runConfigCommand(cfg, *configPath, commandArgs)

	case "version":
		fmt.Printf("stellar version %s\n", version)

	case "help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func newClient(cfg config.Config, logger *slog.Logger) *api.Client {
	client, err := api.NewClient(cfg.API.BaseURL, api.WithLogger(logger))
	if err != nil {
		log.Fatalf("Invalid API URL: %v", err)
	}
	return client
}

func newStore(cfg config.Config, logger *slog.Logger) *store.Store {
	return store.New(newClient(cfg, logger),
		store.WithPageSize(cfg.UI.PageSize),
		store.WithLogger(logger),
	)
}

func runContactsCommand(ctx context.Context, cfg config.Config, sub string, args []string) {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	client := newClient(cfg, logger)
	app := &cli.App{
		Store: store.New(client,
			store.WithPageSize(cfg.UI.PageSize),
			store.WithLogger(logger),
		),
		Lister:     client,
		Saver:      export.NewFileSaver(cfg.Export.Dir),
		RecentDays: cfg.UI.RecentDays,
		ExportDays: cfg.UI.ExportDays,
	}

	commands := map[string]func(context.Context, *cli.App, []string) error{
		"list":   cli.ListContactsCommand,
		"show":   cli.ShowContactCommand,
		"add":    cli.AddContactCommand,
		"update": cli.UpdateContactCommand,
		"delete": cli.DeleteContactCommand,
		"search": cli.SearchContactsCommand,
		"sort":   cli.SortContactsCommand,
		"recent": cli.RecentContactsCommand,
		"export": cli.ExportContactsCommand,
		"stats":  cli.StatsCommand,
	}

	run, ok := commands[sub]
	if !ok {
		fmt.Printf("Unknown contacts command: %s\n\n", sub)
		printUsage()
		os.Exit(1)
	}
	if err := run(ctx, app, args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runConfigCommand(cfg config.Config, path string, args []string) {
	if path == "" {
		path = config.DefaultPath()
	}

	if len(args) > 0 && args[0] == "init" {
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("Config already exists: %s", path)
		}
		if err := config.Save(cfg, path); err != nil {
			log.Fatalf("Error: %v", err)
		}
		fmt.Printf("✓ Config written to %s\n", path)
		return
	}

	fmt.Printf("Config file:   %s\n", path)
	fmt.Printf("API URL:       %s\n", cfg.API.BaseURL)
	fmt.Printf("Page size:     %d\n", cfg.UI.PageSize)
	fmt.Printf("Recent days:   %d\n", cfg.UI.RecentDays)
	fmt.Printf("Export days:   %d\n", cfg.UI.ExportDays)
	fmt.Printf("Export dir:    %s\n", cfg.Export.Dir)
	fmt.Printf("Web address:   %s\n", cfg.Web.Addr)
	fmt.Printf("Log file:      %s\n", cfg.Log.File)
}

func printUsage() {
	fmt.Printf(`stellar v%s - Contact management dashboard

USAGE:
  stellar [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/stellar/config.toml)
  --api-url <url>        Contacts API base URL (default: http://localhost:8080)
  --log-level <level>    debug, info, warn or error

COMMANDS:
  tui                    Interactive terminal dashboard (default on a terminal)
  web                    Browser dashboard
  contacts               Scriptable contact commands
  mcp                    Start MCP server for Claude Desktop
  config                 Show configuration, or 'config init' to write it
  version                Show version

WEB:
  stellar web
    --addr <addr>             Listen address (default: :8090)

CONTACT COMMANDS:
  stellar contacts list     List contacts one page at a time
    --page <n>                Page number (default: 1)
    --size <n>                Contacts per page (default: 5)
    --all                     List every contact

  stellar contacts show <id>     Show one contact

  stellar contacts add      Add a new contact
    --name <name>             Contact name (required)
    --email <email>           Email address (required)
    --phone <phone>           Phone number (required)
    --tag <tag>               Friend, Family, Work or Other (default: Other)
    --notes <notes>           Notes about contact

  stellar contacts update [flags] <id>  Update an existing contact
    --name, --email, --phone, --tag, --notes
    Note: flags must come before the contact ID

  stellar contacts delete <id>   Delete a contact

  stellar contacts search   Search contacts
    --name <text>             Name contains
    --phone <text>            Phone contains
    --tag <tag>               Exact tag
    --notes <text>            Notes contain
    Note: more than one flag runs an advanced search, which ignores --phone

  stellar contacts sort     List every contact sorted
    --by <field>              id or name (default: name)
    --direction <dir>         asc or desc (default: asc)

  stellar contacts recent   Contacts added recently
    --days <n>                Days to look back (default: 5)

  stellar contacts export   Save a CSV export
    --days <n>                Days to include (default: 30)
    --out -                   Write CSV to stdout instead

  stellar contacts stats    Total contacts and pages
    --dashboard               Tag breakdown and recent additions

EXAMPLES:
  # Open the dashboard
  stellar

  # Add a contact
  stellar contacts add --name "John Smith" --email "john@acme.com" --phone "555-0100" --tag Work

  # Find family members
  stellar contacts search --tag family

  # Export the last week as CSV
  stellar contacts export --days 7 --out - > week.csv

`, version)
}
