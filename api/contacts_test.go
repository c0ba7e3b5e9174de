// ABOUTME: Tests for the contacts REST client
// ABOUTME: Runs every operation against the in-memory apitest server
package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/stellar/api"
	"github.com/harperreed/stellar/api/apitest"
	"github.com/harperreed/stellar/models"
)

func seedContacts(n int) []models.Contact {
	names := []string{"Ada", "Grace", "Linus", "Barbara", "Ken", "Dennis", "Margaret", "Edsger", "Donald", "Frances", "Alan", "Radia"}
	out := make([]models.Contact, 0, n)
	for i := 0; i < n; i++ {
		name := names[i%len(names)]
		out = append(out, models.Contact{
			Name:  name,
			Email: strings.ToLower(name) + "@example.com",
			Phone: "555-01" + string(rune('0'+i%10)),
			Tag:   models.Tags[i%len(models.Tags)],
		})
	}
	return out
}

func newClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()
	c, err := api.NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := api.NewClient("localhost:8080")
	assert.Error(t, err)

	c, err := api.NewClient("")
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, c.BaseURL())
}

func TestListPageDerivesTotalPages(t *testing.T) {
	srv := apitest.New(t, seedContacts(12)...)
	client := newClient(t, srv)
	ctx := context.Background()

	page, err := client.ListPage(ctx, models.Pagination{Page: 0, Size: 5})
	require.NoError(t, err)
	assert.Len(t, page.Contacts, 5)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 3, page.TotalPages)

	last, err := client.ListPage(ctx, models.Pagination{Page: 2, Size: 5})
	require.NoError(t, err)
	require.Len(t, last.Contacts, 2)
	assert.Equal(t, int64(11), last.Contacts[0].ID)
	assert.Equal(t, int64(12), last.Contacts[1].ID)
}

func TestListPagePrefersServerTotalPages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts/page", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))
		_, _ = w.Write([]byte(`{"contacts":null,"totalPages":4,"currentPage":1}`))
	}))
	defer ts.Close()

	client, err := api.NewClient(ts.URL)
	require.NoError(t, err)

	page, err := client.ListPage(context.Background(), models.Pagination{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalPages)
	assert.NotNil(t, page.Contacts)
	assert.Empty(t, page.Contacts)
}

func TestCRUD(t *testing.T) {
	srv := apitest.New(t)
	client := newClient(t, srv)
	ctx := context.Background()

	created, err := client.Create(ctx, models.Contact{Name: "Ada", Email: "ada@example.com", Phone: "555", Tag: models.TagWork})
	require.NoError(t, err)
	require.True(t, created.HasID())
	assert.NotNil(t, created.CreatedOn)

	got, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	got.Notes = "first programmer"
	updated, err := client.Update(ctx, created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "first programmer", updated.Notes)

	require.NoError(t, client.Delete(ctx, created.ID))
	assert.ErrorIs(t, client.Delete(ctx, created.ID), api.ErrNotFound)

	_, err = client.Get(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrNotFound))

	var rf *api.RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, api.OpFetchContact, rf.Op)
	assert.Equal(t, http.StatusNotFound, rf.StatusCode)
}

func TestCreateFallsBackWhenServerRepliesWithMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(api.RequestIDHeader))
		_, _ = w.Write([]byte(`{"message":"Contact added successfully!"}`))
	}))
	defer ts.Close()

	client, err := api.NewClient(ts.URL)
	require.NoError(t, err)

	in := models.Contact{Name: "Ada", Email: "ada@example.com", Phone: "555", Tag: models.TagFriend}
	out, err := client.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAcceptHeaderMatchesResponseType(t *testing.T) {
	accepts := map[string]string{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accepts[r.URL.Path] = r.Header.Get("Accept")
		if r.URL.Path == "/contacts/export" {
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("ID,Name,Email,Phone,Tags,Notes\n"))
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"name":"Ada","email":"ada@example.com","phone":"555","tags":"Work"}`))
	}))
	defer ts.Close()

	client, err := api.NewClient(ts.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Get(ctx, 1)
	require.NoError(t, err)
	_, err = client.Export(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, "application/json", accepts["/contacts/1"])
	assert.Equal(t, "text/csv", accepts["/contacts/export"])
}

func TestSearchEndpoints(t *testing.T) {
	srv := apitest.New(t,
		models.Contact{Name: "Ada Lovelace", Email: "a@x.io", Phone: "555-1000", Tag: models.TagWork, Notes: "analytical engine"},
		models.Contact{Name: "Grace Hopper", Email: "g@x.io", Phone: "555-2000", Tag: models.TagWork, Notes: "compilers"},
		models.Contact{Name: "Ada Byron", Email: "b@x.io", Phone: "555-3000", Tag: models.TagFamily},
	)
	client := newClient(t, srv)
	ctx := context.Background()

	byName, err := client.SearchByName(ctx, "ada")
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byPhone, err := client.SearchByPhone(ctx, "2000")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Grace Hopper", byPhone[0].Name)

	byTag, err := client.SearchByTag(ctx, models.TagFamily)
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Ada Byron", byTag[0].Name)

	adv, err := client.AdvancedSearch(ctx, models.SearchCriteria{Name: "ada", Tag: models.TagWork, Notes: "engine"})
	require.NoError(t, err)
	require.Len(t, adv, 1)
	assert.Equal(t, "Ada Lovelace", adv[0].Name)

	none, err := client.SearchByName(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAdvancedSearchOmitsEmptyParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts/search/advanced", r.URL.Path)
		assert.Equal(t, "tag=Work", r.URL.RawQuery)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client, err := api.NewClient(ts.URL)
	require.NoError(t, err)
	_, err = client.AdvancedSearch(context.Background(), models.SearchCriteria{Tag: models.TagWork})
	require.NoError(t, err)
}

func TestSort(t *testing.T) {
	srv := apitest.New(t, seedContacts(4)...)
	client := newClient(t, srv)

	contacts, err := client.Sort(context.Background(), models.Sort{Field: models.SortByName, Direction: models.Descending})
	require.NoError(t, err)
	require.Len(t, contacts, 4)
	assert.Equal(t, "Linus", contacts[0].Name)
	assert.Equal(t, "Ada", contacts[3].Name)
}

func TestTotalCountAcceptsBothShapes(t *testing.T) {
	for _, body := range []string{`7`, `{"total":7}`} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		client, err := api.NewClient(ts.URL)
		require.NoError(t, err)

		n, err := client.TotalCount(context.Background())
		require.NoError(t, err, body)
		assert.Equal(t, 7, n, body)
		ts.Close()
	}
}

func TestTotalCountRejectsGarbage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":7}`))
	}))
	defer ts.Close()
	client, err := api.NewClient(ts.URL)
	require.NoError(t, err)

	_, err = client.TotalCount(context.Background())
	var rf *api.RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, api.OpTotalCount, rf.Op)
}

func TestRecentAndExport(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	old := models.Timestamp{Time: now.AddDate(0, 0, -40)}
	fresh := models.Timestamp{Time: now.AddDate(0, 0, -2)}

	srv := apitest.New(t,
		models.Contact{Name: "Old, Friend", Email: "o@x.io", Phone: "1", Tag: models.TagFriend, CreatedOn: &old},
		models.Contact{Name: "New", Email: "n@x.io", Phone: "2", Tag: models.TagWork, Notes: `said "hi"`, CreatedOn: &fresh},
	)
	srv.Now = func() time.Time { return now }
	client := newClient(t, srv)
	ctx := context.Background()

	recent, err := client.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "New", recent[0].Name)

	csv, err := client.Export(ctx, 60)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Name,Email,Phone,Tags,Notes", lines[0])
	assert.Equal(t, `1,"Old, Friend",o@x.io,1,Friend,`, lines[1])
	assert.Equal(t, `2,New,n@x.io,2,Work,"said ""hi"""`, lines[2])
}

func TestEveryOperationReportsRequestFailed(t *testing.T) {
	srv := apitest.New(t, seedContacts(2)...)
	srv.FailAll(http.StatusInternalServerError)
	client := newClient(t, srv)
	ctx := context.Background()

	calls := map[string]func() error{
		api.OpFetchContacts: func() error { _, err := client.ListPage(ctx, models.DefaultPagination); return err },
		api.OpFetchContact:  func() error { _, err := client.Get(ctx, 1); return err },
		api.OpCreateContact: func() error { _, err := client.Create(ctx, models.Contact{Name: "x"}); return err },
		api.OpUpdateContact: func() error { _, err := client.Update(ctx, 1, models.Contact{Name: "x"}); return err },
		api.OpDeleteContact: func() error { return client.Delete(ctx, 1) },
		api.OpSearch:        func() error { _, err := client.SearchByName(ctx, "a"); return err },
		api.OpSort:          func() error { _, err := client.Sort(ctx, models.DefaultSort); return err },
		api.OpTotalCount:    func() error { _, err := client.TotalCount(ctx); return err },
		api.OpRecent:        func() error { _, err := client.Recent(ctx, 5); return err },
		api.OpExport:        func() error { _, err := client.Export(ctx, 30); return err },
	}

	for op, call := range calls {
		t.Run(op, func(t *testing.T) {
			err := call()
			var rf *api.RequestFailedError
			require.True(t, errors.As(err, &rf))
			assert.Equal(t, op, rf.Op)
			assert.Equal(t, http.StatusInternalServerError, rf.StatusCode)
			assert.Equal(t, "failed to "+op, err.Error())
			assert.Contains(t, rf.Detail(), "status 500")
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client, err := api.NewClient(url)
	require.NoError(t, err)

	_, err = client.List(context.Background())
	var rf *api.RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, 0, rf.StatusCode)
	assert.Error(t, rf.Err)
}
