package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/stellar/api"
	"github.com/harperreed/stellar/api/apitest"
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

type testEnv struct {
	handler http.Handler
	store   *store.Store
	api     *apitest.Server
}

func newTestEnv(t *testing.T, n int) *testEnv {
	t.Helper()
	srv := apitest.New(t, seedContacts(n)...)
	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)

	st := store.New(client)
	server, err := NewServer(st, Options{})
	require.NoError(t, err)
	return &testEnv{handler: server.Handler(), store: st, api: srv}
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (e *testEnv) post(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func assertRedirectHome(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/"), rec.Header().Get("Location"))
}

func TestDashboardLoadsFirstPage(t *testing.T) {
	env := newTestEnv(t, 12)

	rec := env.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "12 contacts")
	assert.Contains(t, body, "Page 1 of 3")
	assert.Contains(t, body, "Contact 05")
	assert.NotContains(t, body, "Contact 06")
	assert.Contains(t, body, `href="/page?n=1"`)
}

func TestDashboardEmpty(t *testing.T) {
	env := newTestEnv(t, 0)
	assert.Contains(t, env.get(t, "/").Body.String(), "No contacts found.")
}

func TestPagingAndSize(t *testing.T) {
	env := newTestEnv(t, 12)

	assertRedirectHome(t, env.get(t, "/page?n=2"))
	body := env.get(t, "/").Body.String()
	assert.Contains(t, body, "Contact 11")
	assert.Contains(t, body, "Contact 12")
	assert.NotContains(t, body, "Contact 10")

	assertRedirectHome(t, env.get(t, "/size?n=10"))
	assert.Equal(t, models.Pagination{Page: 0, Size: 10}, env.store.State().Pagination)

	assert.Equal(t, http.StatusBadRequest, env.get(t, "/page?n=abc").Code)
	assert.Equal(t, http.StatusBadRequest, env.get(t, "/size?n=0").Code)
}

func TestCreateContact(t *testing.T) {
	env := newTestEnv(t, 1)

	rec := env.post(t, "/contacts", url.Values{
		"name":  {"Ann Lee"},
		"email": {"ann@example.com"},
		"phone": {"555"},
		"tags":  {"Work"},
	})
	assertRedirectHome(t, rec)
	assert.Contains(t, rec.Header().Get("Location"), "Saved")

	stored := env.api.Contacts()
	require.Len(t, stored, 2)
	assert.Equal(t, models.TagWork, stored[1].Tag)
	assert.Equal(t, 2, env.store.State().TotalContacts)
}

func TestCreateContactValidation(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.post(t, "/contacts", url.Values{"name": {"Ann"}, "email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Email is invalid")
	assert.Contains(t, body, "Phone is required")
	assert.Contains(t, body, `value="Ann"`, "input is kept")
	assert.Empty(t, env.api.Requests())
}

func TestNewContactFormDefaultsTag(t *testing.T) {
	env := newTestEnv(t, 0)
	body := env.get(t, "/contacts/new").Body.String()
	assert.Contains(t, body, `<option value="Other" selected>`)
	assert.Contains(t, body, `action="/contacts"`)
}

func TestContactDetail(t *testing.T) {
	env := newTestEnv(t, 2)

	rec := env.get(t, "/contacts/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "c2@example.com")

	assert.Equal(t, http.StatusNotFound, env.get(t, "/contacts/99").Code)
	assert.Equal(t, http.StatusBadRequest, env.get(t, "/contacts/abc").Code)
}

func TestEditAndUpdateContact(t *testing.T) {
	env := newTestEnv(t, 2)

	body := env.get(t, "/contacts/1/edit").Body.String()
	assert.Contains(t, body, `value="Contact 01"`)
	assert.Contains(t, body, `action="/contacts/1"`)

	rec := env.post(t, "/contacts/1", url.Values{
		"name":  {"Renamed"},
		"email": {"c1@example.com"},
		"phone": {"555"},
		"tags":  {"Family"},
	})
	assertRedirectHome(t, rec)
	assert.Equal(t, "Renamed", env.api.Contacts()[0].Name)
	assert.Equal(t, "Renamed", env.store.State().Selected.Name)
}

func TestDeleteContact(t *testing.T) {
	env := newTestEnv(t, 3)
	require.Equal(t, http.StatusOK, env.get(t, "/contacts/3").Code)

	assertRedirectHome(t, env.post(t, "/contacts/3/delete", nil))
	assert.Len(t, env.api.Contacts(), 2)
	assert.Nil(t, env.store.State().Selected)
}

func TestSearchSortRecent(t *testing.T) {
	env := newTestEnv(t, 6)

	assertRedirectHome(t, env.get(t, "/search?tag=family"))
	s := env.store.State()
	assert.Equal(t, store.SourceSearch, s.Source)
	assert.Len(t, s.Contacts, 2)
	body := env.get(t, "/").Body.String()
	assert.Contains(t, body, "Back to paged list")
	assert.Contains(t, body, "Search results (tag)")
	assert.NotContains(t, env.api.Requests(), "GET /contacts/page")
	assert.Len(t, env.store.State().Contacts, 2)

	assert.Equal(t, http.StatusBadRequest, env.get(t, "/search?tag=nope").Code)

	assertRedirectHome(t, env.get(t, "/sort?by=name"))
	assertRedirectHome(t, env.get(t, "/sort?by=name"))
	assert.Equal(t, models.Descending, env.store.State().Sort.Direction)
	assert.Equal(t, http.StatusBadRequest, env.get(t, "/sort?by=email").Code)

	assertRedirectHome(t, env.get(t, "/recent?days=3"))
	s = env.store.State()
	assert.Equal(t, store.SourceRecent, s.Source)
	assert.Equal(t, 3, s.RecentDays)

	assertRedirectHome(t, env.get(t, "/reset"))
	assert.Equal(t, store.SourcePage, env.store.State().Source)
}

func TestExportDownload(t *testing.T) {
	env := newTestEnv(t, 2)

	rec := env.get(t, "/export?days=7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="contacts_last_7_days.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Name,Email,Phone,Tags,Notes"))

	rec = env.get(t, "/export")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "contacts_last_30_days.csv")

	assert.Equal(t, http.StatusBadRequest, env.get(t, "/export?days=-2").Code)
}

func TestErrorBanner(t *testing.T) {
	env := newTestEnv(t, 2)
	require.NoError(t, env.store.Refresh(context.Background()))

	env.api.FailAll(http.StatusInternalServerError)
	assertRedirectHome(t, env.get(t, "/sort?by=name"))

	body := env.get(t, "/").Body.String()
	assert.Contains(t, body, "Error: failed to sort contacts")
	assert.Contains(t, body, "Contact 01")

	assertRedirectHome(t, env.post(t, "/error/clear", nil))
	assert.Empty(t, env.store.State().Error)
}
