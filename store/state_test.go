package store

import (
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/stellar/models"
)

func contactsNamed(names ...string) []models.Contact {
	out := make([]models.Contact, len(names))
	for i, n := range names {
		out[i] = models.Contact{ID: int64(i + 1), Name: n, Email: "x@y.z", Phone: "1", Tag: models.TagOther}
	}
	return out
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := NewState(models.DefaultPagination)
	id := ulid.Make()

	next := Reduce(s, RequestStarted{Op: OpRefresh, ID: id, List: true})

	assert.False(t, s.Loading())
	assert.True(t, next.Loading())
	assert.True(t, next.Pending(OpRefresh))
	assert.Empty(t, s.Requests)
}

func TestPageLoadedDerivesTotalPages(t *testing.T) {
	s := NewState(models.DefaultPagination)
	id := ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpRefresh, ID: id, List: true})
	s = Reduce(s, PageLoaded{ID: id, Page: models.ContactsPage{Contacts: contactsNamed("a", "b")}, Total: 12})

	assert.Equal(t, 3, s.TotalPages)
	assert.Equal(t, 12, s.TotalContacts)
	assert.Len(t, s.Contacts, 2)
	assert.False(t, s.Loading())
	assert.Equal(t, StatusSucceeded, s.Requests[OpRefresh].Status)
}

func TestPageLoadedWithNoContactsKeepsOnePage(t *testing.T) {
	s := NewState(models.DefaultPagination)
	id := ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpRefresh, ID: id, List: true})
	s = Reduce(s, PageLoaded{ID: id, Page: models.ContactsPage{Contacts: []models.Contact{}}, Total: 0})

	assert.Equal(t, 1, s.TotalPages)
	assert.Empty(t, s.Contacts)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	s := NewState(models.DefaultPagination)
	older, newer := ulid.Make(), ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpRefresh, ID: older, List: true})
	s = Reduce(s, RequestStarted{Op: OpRefresh, ID: newer, List: true})

	s = Reduce(s, PageLoaded{ID: older, Page: models.ContactsPage{Contacts: contactsNamed("stale")}, Total: 1})
	assert.Empty(t, s.Contacts)
	assert.True(t, s.Pending(OpRefresh))

	s = Reduce(s, RequestFailed{Op: OpRefresh, ID: older, Err: errors.New("failed to fetch contacts")})
	assert.Empty(t, s.Error)
	assert.True(t, s.Pending(OpRefresh))

	s = Reduce(s, PageLoaded{ID: newer, Page: models.ContactsPage{Contacts: contactsNamed("fresh")}, Total: 1})
	require.Len(t, s.Contacts, 1)
	assert.Equal(t, "fresh", s.Contacts[0].Name)
	assert.False(t, s.Loading())
}

func TestLaterListRequestOwnsContacts(t *testing.T) {
	s := NewState(models.DefaultPagination)
	refresh, search := ulid.Make(), ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpRefresh, ID: refresh, List: true})
	s = Reduce(s, RequestStarted{Op: OpSearch, ID: search, List: true})

	s = Reduce(s, ListLoaded{Op: OpSearch, ID: search, Contacts: contactsNamed("Ann"), Source: SourceSearch,
		Criteria: models.SearchCriteria{Name: "Ann"}})
	s = Reduce(s, PageLoaded{ID: refresh, Page: models.ContactsPage{Contacts: contactsNamed("a", "b", "c")}, Total: 7})

	require.Len(t, s.Contacts, 1)
	assert.Equal(t, "Ann", s.Contacts[0].Name)
	assert.Equal(t, SourceSearch, s.Source)
	assert.Equal(t, 7, s.TotalContacts, "totals still apply")
	assert.Equal(t, 2, s.TotalPages)
	assert.False(t, s.Loading())
}

func TestRequestFailedKeepsData(t *testing.T) {
	s := NewState(models.DefaultPagination)
	s.Contacts = contactsNamed("kept")
	id := ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpSort, ID: id, List: true})
	s = Reduce(s, RequestFailed{Op: OpSort, ID: id, Err: errors.New("failed to sort contacts")})

	assert.Equal(t, "failed to sort contacts", s.Error)
	assert.Equal(t, StatusFailed, s.Requests[OpSort].Status)
	require.Len(t, s.Contacts, 1)
	assert.False(t, s.Loading())
}

func TestSortAppliesOnlyWithItsResults(t *testing.T) {
	s := NewState(models.DefaultPagination)
	sortID, refresh := ulid.Make(), ulid.Make()
	byName := models.Sort{Field: models.SortByName, Direction: models.Ascending}
	s = Reduce(s, RequestStarted{Op: OpSort, ID: sortID, List: true})
	assert.Equal(t, models.DefaultSort, s.Sort)

	s = Reduce(s, RequestStarted{Op: OpRefresh, ID: refresh, List: true})
	s = Reduce(s, ListLoaded{Op: OpSort, ID: sortID, Contacts: contactsNamed("b", "a"), Source: SourceSort, Sort: byName})
	assert.Equal(t, models.DefaultSort, s.Sort, "list owned by a later refresh")
	assert.Empty(t, s.Contacts)

	next := ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpSort, ID: next, List: true})
	s = Reduce(s, ListLoaded{Op: OpSort, ID: next, Contacts: contactsNamed("a", "b"), Source: SourceSort, Sort: byName})
	assert.Equal(t, byName, s.Sort)
	assert.Equal(t, SourceSort, s.Source)
}

func TestInitialized(t *testing.T) {
	s := NewState(models.DefaultPagination)
	assert.False(t, s.Initialized())

	assert.False(t, Reduce(s, RequestStarted{Op: OpSelect, ID: ulid.Make()}).Initialized())
	assert.False(t, Reduce(s, RequestStarted{Op: OpExport, ID: ulid.Make()}).Initialized())

	for _, op := range []Op{OpRefresh, OpSearch, OpSort, OpRecent} {
		assert.True(t, Reduce(s, RequestStarted{Op: op, ID: ulid.Make(), List: true}).Initialized(), op)
	}
}

func TestRequestStartedClearsError(t *testing.T) {
	s := NewState(models.DefaultPagination)
	s.Error = "failed to fetch contacts"
	s = Reduce(s, RequestStarted{Op: OpRecent, ID: ulid.Make(), List: true})
	assert.Empty(t, s.Error)
}

func TestContactSavedReplacesSelectionOnUpdate(t *testing.T) {
	s := NewState(models.DefaultPagination)
	sel := contactsNamed("old")[0]
	s.Selected = &sel

	id := ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpUpdate, ID: id})
	s = Reduce(s, ContactSaved{Op: OpUpdate, ID: id, Contact: models.Contact{ID: 1, Name: "new"}})
	require.NotNil(t, s.Selected)
	assert.Equal(t, "new", s.Selected.Name)

	other := ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpUpdate, ID: other})
	s = Reduce(s, ContactSaved{Op: OpUpdate, ID: other, Contact: models.Contact{ID: 2, Name: "someone else"}})
	assert.Equal(t, "new", s.Selected.Name)
}

func TestContactDeletedClearsMatchingSelection(t *testing.T) {
	s := NewState(models.DefaultPagination)
	sel := contactsNamed("a")[0]
	s.Selected = &sel

	id := ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpDelete, ID: id})
	s = Reduce(s, ContactDeleted{ID: id, ContactID: 99})
	assert.NotNil(t, s.Selected)

	id = ulid.Make()
	s = Reduce(s, RequestStarted{Op: OpDelete, ID: id})
	s = Reduce(s, ContactDeleted{ID: id, ContactID: 1})
	assert.Nil(t, s.Selected)
}

func TestListLabel(t *testing.T) {
	s := NewState(models.DefaultPagination)
	s.TotalPages = 3
	assert.Equal(t, "Page 1 of 3", s.ListLabel())

	s.Source = SourceRecent
	s.RecentDays = 5
	assert.Equal(t, "Added in the last 5 days", s.ListLabel())

	s.Source = SourceSort
	s.Sort = models.Sort{Field: models.SortByName, Direction: models.Descending}
	assert.Equal(t, "Sorted by name desc", s.ListLabel())
}

func TestStateCloneIsDeep(t *testing.T) {
	s := NewState(models.DefaultPagination)
	s.Contacts = contactsNamed("a")
	sel := s.Contacts[0]
	s.Selected = &sel
	s.Requests[OpRefresh] = Request{Status: StatusPending}

	c := s.clone()
	c.Contacts[0].Name = "changed"
	c.Selected.Name = "changed"
	c.Requests[OpRefresh] = Request{Status: StatusFailed}

	assert.Equal(t, "a", s.Contacts[0].Name)
	assert.Equal(t, "a", s.Selected.Name)
	assert.Equal(t, StatusPending, s.Requests[OpRefresh].Status)
}
