package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/stellar/api"
	"github.com/harperreed/stellar/api/apitest"
	"github.com/harperreed/stellar/export"
	"github.com/harperreed/stellar/models"
	"github.com/harperreed/stellar/store"
)

func seedContacts(n int) []models.Contact {
	out := make([]models.Contact, n)
	for i := range out {
		out[i] = models.Contact{
			Name:  fmt.Sprintf("Contact %02d", i+1),
			Email: fmt.Sprintf("c%d@example.com", i+1),
			Phone: fmt.Sprintf("555-01%02d", i+1),
			Tag:   models.Tags[i%len(models.Tags)],
		}
	}
	return out
}

// setupTestCLI wires an App against a fake API and captures output.
func setupTestCLI(t *testing.T, n int) (*App, *apitest.Server, *bytes.Buffer) {
	t.Helper()
	srv := apitest.New(t, seedContacts(n)...)
	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)

	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })

	app := &App{
		Store:      store.New(client),
		Lister:     client,
		Saver:      export.NewFileSaver(t.TempDir()),
		RecentDays: store.DefaultRecentDays,
		ExportDays: store.DefaultExportDays,
	}
	return app, srv, &buf
}

func TestListContactsCommand(t *testing.T) {
	app, _, out := setupTestCLI(t, 7)
	ctx := context.Background()

	require.NoError(t, ListContactsCommand(ctx, app, []string{}))
	text := out.String()
	assert.Contains(t, text, "ID  NAME")
	assert.Contains(t, text, "Contact 05")
	assert.NotContains(t, text, "Contact 06")
	assert.Contains(t, text, "Page 1 of 2 (7 contacts)")

	out.Reset()
	require.NoError(t, ListContactsCommand(ctx, app, []string{"--page", "2"}))
	assert.Contains(t, out.String(), "Contact 07")
	assert.Contains(t, out.String(), "Page 2 of 2")

	out.Reset()
	require.NoError(t, ListContactsCommand(ctx, app, []string{"--size", "10"}))
	assert.Contains(t, out.String(), "Contact 07")
	assert.Contains(t, out.String(), "Page 1 of 1")

	assert.Error(t, ListContactsCommand(ctx, app, []string{"--page", "0"}))
}

func TestListContactsCommandAll(t *testing.T) {
	app, srv, out := setupTestCLI(t, 7)

	require.NoError(t, ListContactsCommand(context.Background(), app, []string{"--all"}))
	assert.Contains(t, out.String(), "Contact 01")
	assert.Contains(t, out.String(), "Contact 07")
	assert.Contains(t, out.String(), "Total: 7 contact(s)")
	assert.Equal(t, []string{"GET /contacts"}, srv.Requests())
}

func TestListContactsCommandEmpty(t *testing.T) {
	app, _, out := setupTestCLI(t, 0)

	require.NoError(t, ListContactsCommand(context.Background(), app, []string{}))
	assert.Contains(t, out.String(), "No contacts found")
}

func TestShowContactCommand(t *testing.T) {
	app, _, out := setupTestCLI(t, 3)
	ctx := context.Background()

	require.NoError(t, ShowContactCommand(ctx, app, []string{"2"}))
	assert.Contains(t, out.String(), "Contact 02")
	assert.Contains(t, out.String(), "c2@example.com")
	assert.Contains(t, out.String(), "Family")

	err := ShowContactCommand(ctx, app, []string{"99"})
	require.Error(t, err)
	assert.Equal(t, "contact 99 not found", err.Error())

	assert.EqualError(t, ShowContactCommand(ctx, app, []string{}), "contact ID is required")
	assert.Error(t, ShowContactCommand(ctx, app, []string{"abc"}))
}

func TestAddContactCommand(t *testing.T) {
	app, srv, out := setupTestCLI(t, 1)
	ctx := context.Background()

	err := AddContactCommand(ctx, app, []string{
		"--name", "Ann Lee", "--email", "ann@example.com", "--phone", "555", "--tag", "work",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Contact created: Ann Lee (ID: 2)")

	stored := srv.Contacts()
	require.Len(t, stored, 2)
	assert.Equal(t, models.TagWork, stored[1].Tag)
}

func TestAddContactCommandDefaultsTag(t *testing.T) {
	app, srv, _ := setupTestCLI(t, 0)

	err := AddContactCommand(context.Background(), app, []string{
		"--name", "Ann", "--email", "ann@example.com", "--phone", "555",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TagOther, srv.Contacts()[0].Tag)
}

func TestAddContactCommandValidation(t *testing.T) {
	app, srv, _ := setupTestCLI(t, 0)
	ctx := context.Background()

	err := AddContactCommand(ctx, app, []string{"--name", "Ann", "--email", "nope"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "phone")

	err = AddContactCommand(ctx, app, []string{
		"--name", "Ann", "--email", "ann@example.com", "--phone", "555", "--tag", "frend",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean Friend?")

	assert.Empty(t, srv.Requests())
}

func TestUpdateContactCommand(t *testing.T) {
	app, srv, out := setupTestCLI(t, 2)

	err := UpdateContactCommand(context.Background(), app, []string{"--name", "Renamed", "--tag", "Family", "1"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Contact updated: Renamed (ID: 1)")

	updated := srv.Contacts()[0]
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.TagFamily, updated.Tag)
	assert.Equal(t, "c1@example.com", updated.Email, "unset flags keep their value")
}

func TestUpdateContactCommandMissing(t *testing.T) {
	app, _, _ := setupTestCLI(t, 1)

	err := UpdateContactCommand(context.Background(), app, []string{"--name", "X", "42"})
	assert.EqualError(t, err, "contact 42 not found")
}

func TestDeleteContactCommand(t *testing.T) {
	app, srv, out := setupTestCLI(t, 2)
	ctx := context.Background()

	require.NoError(t, DeleteContactCommand(ctx, app, []string{"2"}))
	assert.Contains(t, out.String(), "✓ Contact deleted: 2")
	assert.Len(t, srv.Contacts(), 1)

	assert.EqualError(t, DeleteContactCommand(ctx, app, []string{"2"}), "contact 2 not found")
}

func TestSearchContactsCommand(t *testing.T) {
	app, srv, out := setupTestCLI(t, 6)
	ctx := context.Background()

	require.NoError(t, SearchContactsCommand(ctx, app, []string{"--tag", "friend"}))
	assert.Contains(t, out.String(), "Contact 01")
	assert.Contains(t, out.String(), "Contact 05")
	assert.Contains(t, out.String(), "Search results (tag): 2 contact(s)")
	assert.Contains(t, srv.Requests(), "GET /contacts/search/tag")

	out.Reset()
	require.NoError(t, SearchContactsCommand(ctx, app, []string{"--name", "contact", "--notes", "x"}))
	assert.Contains(t, out.String(), "Search results (advanced)")

	assert.Error(t, SearchContactsCommand(ctx, app, []string{}))
	assert.Error(t, SearchContactsCommand(ctx, app, []string{"--tag", "nope"}))
}

func TestSortContactsCommand(t *testing.T) {
	app, _, out := setupTestCLI(t, 3)
	ctx := context.Background()

	require.NoError(t, SortContactsCommand(ctx, app, []string{"--by", "name", "--direction", "desc"}))
	text := out.String()
	assert.Contains(t, text, "Sorted by name desc")
	assert.Less(t, strings.Index(text, "Contact 03"), strings.Index(text, "Contact 01"))

	assert.Error(t, SortContactsCommand(ctx, app, []string{"--by", "email"}))
	assert.Error(t, SortContactsCommand(ctx, app, []string{"--direction", "sideways"}))
}

func TestRecentContactsCommand(t *testing.T) {
	app, _, out := setupTestCLI(t, 2)
	ctx := context.Background()

	require.NoError(t, RecentContactsCommand(ctx, app, []string{}))
	assert.Contains(t, out.String(), "Added in the last 5 days: 2 contact(s)")
	assert.Equal(t, 5, app.Store.State().RecentDays)

	assert.Error(t, RecentContactsCommand(ctx, app, []string{"--days", "-1"}))
}

func TestExportContactsCommand(t *testing.T) {
	app, _, out := setupTestCLI(t, 2)
	ctx := context.Background()

	require.NoError(t, ExportContactsCommand(ctx, app, []string{"--days", "7"}))
	assert.Contains(t, out.String(), "✓ Exported contacts from the last 7 days to ")

	saver := app.Saver.(*export.FileSaver)
	data, err := os.ReadFile(filepath.Join(saver.Dir, "contacts_last_7_days.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ID,Name,Email,Phone,Tags,Notes"))

	out.Reset()
	require.NoError(t, ExportContactsCommand(ctx, app, []string{"--out", "-"}))
	assert.True(t, strings.HasPrefix(out.String(), "ID,Name,Email,Phone,Tags,Notes"))
}

func TestStatsCommand(t *testing.T) {
	app, _, out := setupTestCLI(t, 12)

	require.NoError(t, StatsCommand(context.Background(), app, []string{}))
	assert.Contains(t, out.String(), "Total contacts:  12")
	assert.Contains(t, out.String(), "Pages:           3")
	assert.NotContains(t, out.String(), "DASHBOARD")

	out.Reset()
	require.NoError(t, StatsCommand(context.Background(), app, []string{"--dashboard"}))
	assert.Contains(t, out.String(), "STELLAR CONTACTS DASHBOARD")
	assert.Contains(t, out.String(), "12 added in the last 7 days")
}

func TestCommandsSurfaceServerErrors(t *testing.T) {
	app, srv, _ := setupTestCLI(t, 2)
	srv.FailAll(http.StatusInternalServerError)
	ctx := context.Background()

	assert.ErrorContains(t, ListContactsCommand(ctx, app, []string{}), "failed to fetch")
	assert.EqualError(t, SortContactsCommand(ctx, app, []string{}), "failed to sort contacts")
	assert.EqualError(t, ExportContactsCommand(ctx, app, []string{}), "failed to export contacts")
	assert.Equal(t, "failed to export contacts", app.Store.State().Error)
}
