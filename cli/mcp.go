// ABOUTME: MCP server subcommand
// ABOUTME: Registers contact tools, resources and prompts and serves them on stdio
package cli

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/stellar/handlers"
	"github.com/harperreed/stellar/store"
)

// NewMCPServer builds the MCP server over the store without starting it.
func NewMCPServer(st *store.Store, version string) *mcp.Server {
	contactHandlers := handlers.NewContactHandlers(st)
	resourceHandlers := handlers.NewResourceHandlers(st)
	promptHandlers := handlers.NewPromptHandlers(st)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "stellar",
		Version: version,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List one page of contacts",
	}, contactHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Fetch a single contact by ID",
	}, contactHandlers.GetContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact (name, email and phone are required)",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's information",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact by ID",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_contacts",
		Description: "Search contacts by name, phone, tag or notes",
	}, contactHandlers.SearchContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sort_contacts",
		Description: "List every contact sorted by id or name",
	}, contactHandlers.SortContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recent_contacts",
		Description: "List contacts added in the last N days",
	}, contactHandlers.RecentContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_contacts",
		Description: "Export contacts from the last N days as CSV",
	}, contactHandlers.ExportContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "contact_stats",
		Description: "Total contact count and paging summary",
	}, contactHandlers.ContactStats)

	// Register resources
	server.AddResource(&mcp.Resource{
		URI:         handlers.ResourceScheme + "contacts",
		Name:        "contacts",
		Description: "The contact list currently shown",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         handlers.ResourceScheme + "stats",
		Name:        "stats",
		Description: "Total contact count and paging summary",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: handlers.ResourceScheme + "contacts/{id}",
		Name:        "contact",
		Description: "A single contact by ID",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	// Register prompts
	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, st *store.Store, version string) error {
	log.Println("Starting Stellar MCP Server...")

	server := NewMCPServer(st, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
