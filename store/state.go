// ABOUTME: Dashboard state and the reducer that transitions it
// ABOUTME: Typed actions carry request ids so stale responses are discarded
package store

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/stellar/models"
)

// Op names a logical store operation. Each op has its own request lifecycle.
type Op string

const (
	OpRefresh Op = "refresh"
	OpSelect  Op = "select"
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpSearch  Op = "search"
	OpSort    Op = "sort"
	OpRecent  Op = "recent"
	OpExport  Op = "export"
)

// Status is the lifecycle of the latest request issued for an op.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// Request tracks the most recently issued request of one op.
type Request struct {
	ID     ulid.ULID
	Status Status
	Err    string
}

// Source records which operation produced the contact list.
type Source int

const (
	SourcePage Source = iota
	SourceSearch
	SourceSort
	SourceRecent
)

// State is everything the views render. Values returned by Store.State are
// deep copies and may be read freely.
type State struct {
	Contacts      []models.Contact
	Selected      *models.Contact
	TotalContacts int
	TotalPages    int
	Pagination    models.Pagination
	Sort          models.Sort
	Criteria      models.SearchCriteria
	RecentDays    int
	Source        Source
	Requests      map[Op]Request
	Error         string
	LastExport    string

	// listRequest is the id of the latest request allowed to replace Contacts.
	listRequest ulid.ULID
}

// NewState returns the initial state for a page size.
func NewState(p models.Pagination) State {
	if p.Size <= 0 {
		p = models.DefaultPagination
	}
	return State{
		Contacts:   []models.Contact{},
		TotalPages: 1,
		Pagination: p,
		Sort:       models.DefaultSort,
		Requests:   map[Op]Request{},
	}
}

// Loading reports whether any request is in flight.
func (s State) Loading() bool {
	for _, r := range s.Requests {
		if r.Status == StatusPending {
			return true
		}
	}
	return false
}

// Initialized reports whether any request that fills the contact list has
// been issued.
func (s State) Initialized() bool {
	for _, op := range []Op{OpRefresh, OpSearch, OpSort, OpRecent} {
		if s.Requests[op].Status != StatusIdle {
			return true
		}
	}
	return false
}

// Pending reports whether the latest request for op is in flight.
func (s State) Pending(op Op) bool {
	return s.Requests[op].Status == StatusPending
}

// ListLabel describes where the current list came from.
func (s State) ListLabel() string {
	switch s.Source {
	case SourceSearch:
		return fmt.Sprintf("Search results (%s)", s.Criteria.Mode())
	case SourceSort:
		return fmt.Sprintf("Sorted by %s %s", s.Sort.Field, s.Sort.Direction)
	case SourceRecent:
		return fmt.Sprintf("Added in the last %d days", s.RecentDays)
	}
	return fmt.Sprintf("Page %d of %d", s.Pagination.Page+1, max(1, s.TotalPages))
}

func (s State) clone() State {
	out := s
	out.Contacts = models.CloneContacts(s.Contacts)
	if s.Selected != nil {
		sel := s.Selected.Clone()
		out.Selected = &sel
	}
	out.Requests = make(map[Op]Request, len(s.Requests))
	for op, r := range s.Requests {
		out.Requests[op] = r
	}
	return out
}

func (s State) current(op Op, id ulid.ULID) bool {
	return s.Requests[op].ID == id
}

func (s *State) succeed(op Op, id ulid.ULID) {
	s.Requests[op] = Request{ID: id, Status: StatusSucceeded}
}

// Action is a state transition. Actions that answer a request are ignored
// unless their id is still the latest one issued for that op.
type Action interface {
	apply(State) State
}

// Reduce applies a to s and returns the new state; s is not modified.
func Reduce(s State, a Action) State {
	return a.apply(s.clone())
}

// RequestStarted marks a new request as the latest for Op. List requests also
// take ownership of the contact list.
type RequestStarted struct {
	Op   Op
	ID   ulid.ULID
	List bool
}

func (a RequestStarted) apply(s State) State {
	s.Requests[a.Op] = Request{ID: a.ID, Status: StatusPending}
	s.Error = ""
	if a.List {
		s.listRequest = a.ID
	}
	return s
}

// RequestFailed records a failure; prior data stays in place.
type RequestFailed struct {
	Op  Op
	ID  ulid.ULID
	Err error
}

func (a RequestFailed) apply(s State) State {
	if !s.current(a.Op, a.ID) {
		return s
	}
	msg := "request failed"
	if a.Err != nil {
		msg = a.Err.Error()
	}
	s.Requests[a.Op] = Request{ID: a.ID, Status: StatusFailed, Err: msg}
	s.Error = msg
	return s
}

// PageLoaded answers a refresh with the page and the total contact count.
type PageLoaded struct {
	ID    ulid.ULID
	Page  models.ContactsPage
	Total int
}

func (a PageLoaded) apply(s State) State {
	if !s.current(OpRefresh, a.ID) {
		return s
	}
	s.succeed(OpRefresh, a.ID)
	s.TotalContacts = a.Total
	s.TotalPages = a.Page.TotalPages
	if s.TotalPages <= 0 {
		s.TotalPages = models.TotalPages(a.Total, s.Pagination.Size)
	}
	if s.listRequest == a.ID {
		s.Contacts = models.CloneContacts(a.Page.Contacts)
		s.Source = SourcePage
	}
	return s
}

// ListLoaded answers a search, sort or recent request with a full result set.
// Criteria, Sort and RecentDays take effect only with the contacts they produced.
type ListLoaded struct {
	Op         Op
	ID         ulid.ULID
	Contacts   []models.Contact
	Source     Source
	Criteria   models.SearchCriteria
	Sort       models.Sort
	RecentDays int
}

func (a ListLoaded) apply(s State) State {
	if !s.current(a.Op, a.ID) {
		return s
	}
	s.succeed(a.Op, a.ID)
	if s.listRequest != a.ID {
		return s
	}
	s.Contacts = models.CloneContacts(a.Contacts)
	s.Source = a.Source
	switch a.Source {
	case SourceSearch:
		s.Criteria = a.Criteria
	case SourceSort:
		s.Sort = a.Sort
	case SourceRecent:
		s.RecentDays = a.RecentDays
	}
	return s
}

// ContactLoaded answers a selection request.
type ContactLoaded struct {
	ID      ulid.ULID
	Contact models.Contact
}

func (a ContactLoaded) apply(s State) State {
	if !s.current(OpSelect, a.ID) {
		return s
	}
	s.succeed(OpSelect, a.ID)
	c := a.Contact.Clone()
	s.Selected = &c
	return s
}

// ContactSaved answers a create or update. An update of the selected contact
// replaces the selection.
type ContactSaved struct {
	Op      Op
	ID      ulid.ULID
	Contact models.Contact
}

func (a ContactSaved) apply(s State) State {
	if !s.current(a.Op, a.ID) {
		return s
	}
	s.succeed(a.Op, a.ID)
	if a.Op == OpUpdate && s.Selected != nil && s.Selected.ID == a.Contact.ID {
		c := a.Contact.Clone()
		s.Selected = &c
	}
	return s
}

// ContactDeleted answers a delete. Deleting the selected contact clears the selection.
type ContactDeleted struct {
	ID        ulid.ULID
	ContactID int64
}

func (a ContactDeleted) apply(s State) State {
	if !s.current(OpDelete, a.ID) {
		return s
	}
	s.succeed(OpDelete, a.ID)
	if s.Selected != nil && s.Selected.ID == a.ContactID {
		s.Selected = nil
	}
	return s
}

// ExportFetched answers an export request.
type ExportFetched struct {
	ID       ulid.ULID
	Filename string
}

func (a ExportFetched) apply(s State) State {
	if !s.current(OpExport, a.ID) {
		return s
	}
	s.succeed(OpExport, a.ID)
	s.LastExport = a.Filename
	return s
}

// PaginationChanged replaces the pagination.
type PaginationChanged struct {
	Pagination models.Pagination
}

func (a PaginationChanged) apply(s State) State {
	s.Pagination = a.Pagination
	return s
}

// SelectionCleared drops the selected contact.
type SelectionCleared struct{}

func (SelectionCleared) apply(s State) State {
	s.Selected = nil
	return s
}

// ErrorCleared dismisses the error banner.
type ErrorCleared struct{}

func (ErrorCleared) apply(s State) State {
	s.Error = ""
	return s
}
