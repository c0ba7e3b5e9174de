// ABOUTME: Contact CLI commands
// ABOUTME: Scriptable list, show, add, update, delete, search, sort, recent, export and stats over the store
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/stellar/api"
	"github.com/harperreed/stellar/export"
	"github.com/harperreed/stellar/models"
	"github.com/harperreed/stellar/store"
	"github.com/harperreed/stellar/viz"
)

// stdout is where command output goes; tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// Lister fetches every contact in one request.
type Lister interface {
	List(ctx context.Context) ([]models.Contact, error)
}

var _ Lister = (*api.Client)(nil)

// App bundles what the contact commands need.
type App struct {
	Store      *store.Store
	Lister     Lister
	Saver      export.Saver
	RecentDays int
	ExportDays int
}

// ListContactsCommand prints one page of contacts, or every contact with --all.
func ListContactsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "Page number (1-based)")
	size := fs.Int("size", 0, "Contacts per page (default from config)")
	all := fs.Bool("all", false, "List every contact without paging")
	_ = fs.Parse(args)

	if *all {
		if app.Lister == nil {
			return fmt.Errorf("--all is not available")
		}
		contacts, err := app.Lister.List(ctx)
		if err != nil {
			return err
		}
		printContacts(contacts)
		fmt.Fprintf(stdout, "\nTotal: %d contact(s)\n", len(contacts))
		return nil
	}

	if *page < 1 {
		return fmt.Errorf("--page must be at least 1")
	}
	p := app.Store.State().Pagination
	if *size > 0 {
		p = p.WithSize(*size)
	}
	if err := app.Store.SetPagination(ctx, p.WithPage(*page-1)); err != nil {
		return err
	}

	s := app.Store.State()
	printContacts(s.Contacts)
	fmt.Fprintf(stdout, "\n%s (%d contacts)\n", s.ListLabel(), s.TotalContacts)
	return nil
}

// ShowContactCommand prints a single contact.
func ShowContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := contactIDArg(fs)
	if err != nil {
		return err
	}
	if err := app.Store.SelectContact(ctx, id); err != nil {
		return notFound(id, err)
	}

	c := app.Store.State().Selected
	if c == nil {
		return fmt.Errorf("contact %d not found", id)
	}
	printContact(*c)
	return nil
}

// AddContactCommand creates a contact.
func AddContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address (required)")
	phone := fs.String("phone", "", "Phone number (required)")
	tag := fs.String("tag", string(models.DefaultTag), "Tag: Friend, Family, Work or Other")
	notes := fs.String("notes", "", "Notes about the contact")
	_ = fs.Parse(args)

	t, err := models.ParseTag(*tag)
	if err != nil {
		return err
	}

	created, err := app.Store.CreateContact(ctx, models.Contact{
		Name:  *name,
		Email: *email,
		Phone: *phone,
		Tag:   t,
		Notes: *notes,
	})
	if err != nil {
		return err
	}

	if created.HasID() {
		fmt.Fprintf(stdout, "✓ Contact created: %s (ID: %d)\n", created.Name, created.ID)
	} else {
		fmt.Fprintf(stdout, "✓ Contact created: %s\n", created.Name)
	}
	fmt.Fprintf(stdout, "  Email: %s\n", created.Email)
	fmt.Fprintf(stdout, "  Phone: %s\n", created.Phone)
	fmt.Fprintf(stdout, "  Tag: %s\n", created.Tag)
	return nil
}

// UpdateContactCommand changes the fields given as flags and keeps the rest.
func UpdateContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	name := fs.String("name", "", "Contact name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	tag := fs.String("tag", "", "Tag: Friend, Family, Work or Other")
	notes := fs.String("notes", "", "Notes about the contact")
	_ = fs.Parse(args)

	id, err := contactIDArg(fs)
	if err != nil {
		return err
	}
	if err := app.Store.SelectContact(ctx, id); err != nil {
		return notFound(id, err)
	}
	selected := app.Store.State().Selected
	if selected == nil {
		return fmt.Errorf("contact %d not found", id)
	}
	existing := *selected

	// Only flags that were passed overwrite, so --notes "" clears notes.
	var tagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			existing.Name = *name
		case "email":
			existing.Email = *email
		case "phone":
			existing.Phone = *phone
		case "notes":
			existing.Notes = *notes
		case "tag":
			existing.Tag, tagErr = models.ParseTag(*tag)
		}
	})
	if tagErr != nil {
		return tagErr
	}

	updated, err := app.Store.UpdateContact(ctx, id, existing)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ Contact updated: %s (ID: %d)\n", updated.Name, id)
	return nil
}

// DeleteContactCommand deletes a contact by id.
func DeleteContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	_ = fs.Parse(args)

	id, err := contactIDArg(fs)
	if err != nil {
		return err
	}
	if err := app.Store.DeleteContact(ctx, id); err != nil {
		return notFound(id, err)
	}

	fmt.Fprintf(stdout, "✓ Contact deleted: %d\n", id)
	return nil
}

// SearchContactsCommand runs the search matching the flags given: a single
// flag uses that field's endpoint, several use the advanced search.
func SearchContactsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	name := fs.String("name", "", "Name contains")
	phone := fs.String("phone", "", "Phone contains")
	tag := fs.String("tag", "", "Exact tag")
	notes := fs.String("notes", "", "Notes contain")
	_ = fs.Parse(args)

	criteria := models.SearchCriteria{
		Name:  strings.TrimSpace(*name),
		Phone: strings.TrimSpace(*phone),
		Notes: strings.TrimSpace(*notes),
	}
	if strings.TrimSpace(*tag) != "" {
		t, err := models.ParseTag(*tag)
		if err != nil {
			return err
		}
		criteria.Tag = t
	}
	if criteria.IsEmpty() {
		return fmt.Errorf("at least one of --name, --phone, --tag or --notes is required")
	}

	if err := app.Store.Search(ctx, criteria); err != nil {
		return err
	}
	printList(app.Store.State())
	return nil
}

// SortContactsCommand lists every contact ordered by a field.
func SortContactsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("sort", flag.ExitOnError)
	by := fs.String("by", string(models.SortByName), "Sort field: id or name")
	direction := fs.String("direction", string(models.Ascending), "Sort direction: asc or desc")
	_ = fs.Parse(args)

	field, err := models.ParseSortField(*by)
	if err != nil {
		return err
	}
	dir, err := models.ParseDirection(*direction)
	if err != nil {
		return err
	}

	if err := app.Store.Sort(ctx, models.Sort{Field: field, Direction: dir}); err != nil {
		return err
	}
	printList(app.Store.State())
	return nil
}

// RecentContactsCommand lists contacts created in the last N days.
func RecentContactsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	days := fs.Int("days", app.RecentDays, "Look back this many days")
	_ = fs.Parse(args)

	if *days < 0 {
		return fmt.Errorf("--days must not be negative")
	}
	if err := app.Store.Recent(ctx, *days); err != nil {
		return err
	}
	printList(app.Store.State())
	return nil
}

// ExportContactsCommand saves the CSV export of the last N days. With
// --out - the CSV is written to stdout instead.
func ExportContactsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	days := fs.Int("days", app.ExportDays, "Export contacts from this many days")
	out := fs.String("out", "", "Write to stdout with \"-\" instead of the export directory")
	_ = fs.Parse(args)

	if *days < 0 {
		return fmt.Errorf("--days must not be negative")
	}
	exp, err := app.Store.ExportContacts(ctx, *days)
	if err != nil {
		return err
	}

	if *out == "-" {
		_, err := stdout.Write(exp.Data)
		return err
	}
	if app.Saver == nil {
		return fmt.Errorf("no export directory configured")
	}
	path, err := app.Saver.Save(exp.Filename, exp.Data)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ Exported contacts from the last %d days to %s\n", exp.Days, path)
	return nil
}

// StatsCommand prints the total contact count and paging summary. With
// --dashboard it also fetches every contact and renders a tag breakdown.
func StatsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	dashboard := fs.Bool("dashboard", false, "Show tag breakdown and recent additions")
	_ = fs.Parse(args)

	if err := app.Store.Refresh(ctx); err != nil {
		return err
	}
	s := app.Store.State()

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total contacts:\t%d\n", s.TotalContacts)
	_, _ = fmt.Fprintf(w, "Page size:\t%d\n", s.Pagination.Size)
	_, _ = fmt.Fprintf(w, "Pages:\t%d\n", s.TotalPages)
	if err := w.Flush(); err != nil {
		return err
	}

	if !*dashboard {
		return nil
	}
	if app.Lister == nil {
		return fmt.Errorf("--dashboard is not available")
	}
	contacts, err := app.Lister.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, viz.RenderDashboard(viz.GenerateDashboardStats(contacts, time.Now())))
	return nil
}

func contactIDArg(fs *flag.FlagSet) (int64, error) {
	if fs.NArg() < 1 {
		return 0, fmt.Errorf("contact ID is required")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid contact ID: %q", fs.Arg(0))
	}
	return id, nil
}

func notFound(id int64, err error) error {
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("contact %d not found", id)
	}
	return err
}

func printList(s store.State) {
	printContacts(s.Contacts)
	fmt.Fprintf(stdout, "\n%s: %d contact(s)\n", s.ListLabel(), len(s.Contacts))
}

func printContacts(contacts []models.Contact) {
	if len(contacts) == 0 {
		fmt.Fprintln(stdout, "No contacts found")
		return
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tTAG")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t-----\t---")
	for _, c := range contacts {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, orDash(c.Email), orDash(c.Phone), c.Tag)
	}
	_ = w.Flush()
}

func printContact(c models.Contact) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "ID:\t%d\n", c.ID)
	_, _ = fmt.Fprintf(w, "Name:\t%s\n", c.Name)
	_, _ = fmt.Fprintf(w, "Email:\t%s\n", orDash(c.Email))
	_, _ = fmt.Fprintf(w, "Phone:\t%s\n", orDash(c.Phone))
	_, _ = fmt.Fprintf(w, "Tag:\t%s\n", c.Tag)
	_, _ = fmt.Fprintf(w, "Notes:\t%s\n", orDash(c.Notes))
	if c.CreatedOn != nil {
		_, _ = fmt.Fprintf(w, "Created:\t%s\n", c.CreatedOn.Format("2006-01-02"))
	}
	_ = w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
