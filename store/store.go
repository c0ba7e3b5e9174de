// ABOUTME: Contact store that owns dashboard state and talks to the API
// ABOUTME: Every operation runs a tracked request and publishes state snapshots to subscribers
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/stellar/api"
	"github.com/harperreed/stellar/logging"
	"github.com/harperreed/stellar/models"
)

// DefaultRecentDays and DefaultExportDays are the windows used when a caller
// passes a non-positive day count.
const (
	DefaultRecentDays = 5
	DefaultExportDays = 30
)

// API is the subset of the REST client the store depends on.
type API interface {
	ListPage(ctx context.Context, p models.Pagination) (models.ContactsPage, error)
	Get(ctx context.Context, id int64) (models.Contact, error)
	Create(ctx context.Context, c models.Contact) (models.Contact, error)
	Update(ctx context.Context, id int64, c models.Contact) (models.Contact, error)
	Delete(ctx context.Context, id int64) error
	SearchByName(ctx context.Context, name string) ([]models.Contact, error)
	SearchByPhone(ctx context.Context, phone string) ([]models.Contact, error)
	SearchByTag(ctx context.Context, tag models.Tag) ([]models.Contact, error)
	AdvancedSearch(ctx context.Context, criteria models.SearchCriteria) ([]models.Contact, error)
	Sort(ctx context.Context, s models.Sort) ([]models.Contact, error)
	TotalCount(ctx context.Context) (int, error)
	Recent(ctx context.Context, days int) ([]models.Contact, error)
	Export(ctx context.Context, days int) ([]byte, error)
}

var _ API = (*api.Client)(nil)

// Export is a fetched CSV export ready to be saved.
type Export struct {
	Days     int
	Filename string
	Data     []byte
}

// ExportFilename names the CSV export for a day window.
func ExportFilename(days int) string {
	return fmt.Sprintf("contacts_last_%d_days.csv", days)
}

// Store serialises state transitions and fans snapshots out to subscribers.
// Operations block until their request completes and are safe to call from
// multiple goroutines.
type Store struct {
	api    API
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	entropy *ulid.MonotonicEntropy
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for failed operations.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPageSize sets the initial page size.
func WithPageSize(size int) Option {
	return func(s *Store) {
		s.state.Pagination = s.state.Pagination.WithSize(size)
	}
}

// New creates a store over the given API. No request is made until Refresh.
func New(client API, opts ...Option) *Store {
	s := &Store{
		api:     client,
		logger:  logging.Discard(),
		state:   NewState(models.DefaultPagination),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		subs:    map[int]func(State){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every transition and
// returns a function that removes it. fn runs on the goroutine that caused
// the transition.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies an action and notifies subscribers.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.publishLocked()
}

// publishLocked must be called with mu held; it releases it before notifying.
func (s *Store) publishLocked() {
	snapshot := s.state.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// begin issues a request id for op and records it as the latest. The id is
// generated and applied under one lock so later requests always win.
func (s *Store) begin(op Op, list bool) (ulid.ULID, State) {
	s.mu.Lock()
	id := ulid.MustNew(ulid.Now(), s.entropy)
	s.state = Reduce(s.state, RequestStarted{Op: op, ID: id, List: list})
	started := s.state.clone()
	s.publishLocked()
	return id, started
}

func (s *Store) fail(op Op, id ulid.ULID, err error) error {
	detail := err.Error()
	var rf *api.RequestFailedError
	if errors.As(err, &rf) {
		detail = rf.Detail()
	}
	s.logger.Warn("contact operation failed", "op", op, "request_id", id.String(), "error", detail)
	s.Dispatch(RequestFailed{Op: op, ID: id, Err: err})
	return err
}

// Refresh reloads the current page and the total count concurrently.
func (s *Store) Refresh(ctx context.Context) error {
	id, st := s.begin(OpRefresh, true)
	p := st.Pagination

	var (
		page  models.ContactsPage
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.api.ListPage(gctx, p)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.api.TotalCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail(OpRefresh, id, err)
	}

	s.Dispatch(PageLoaded{ID: id, Page: page, Total: total})
	return nil
}

// SelectContact loads a single contact into the selection.
func (s *Store) SelectContact(ctx context.Context, contactID int64) error {
	id, _ := s.begin(OpSelect, false)
	c, err := s.api.Get(ctx, contactID)
	if err != nil {
		return s.fail(OpSelect, id, err)
	}
	s.Dispatch(ContactLoaded{ID: id, Contact: c})
	return nil
}

// ClearSelection drops the selected contact.
func (s *Store) ClearSelection() {
	s.Dispatch(SelectionCleared{})
}

// ClearError dismisses the current error.
func (s *Store) ClearError() {
	s.Dispatch(ErrorCleared{})
}

// CreateContact validates and creates a contact, then refreshes the page.
// Invalid input returns a *models.ValidationError without any request. A
// failed follow-up refresh is recorded in state but not returned.
func (s *Store) CreateContact(ctx context.Context, c models.Contact) (models.Contact, error) {
	c = c.Normalized()
	if err := models.ValidateContact(c); err != nil {
		return models.Contact{}, err
	}

	id, _ := s.begin(OpCreate, false)
	created, err := s.api.Create(ctx, c)
	if err != nil {
		return models.Contact{}, s.fail(OpCreate, id, err)
	}
	s.Dispatch(ContactSaved{Op: OpCreate, ID: id, Contact: created})
	_ = s.Refresh(ctx)
	return created, nil
}

// UpdateContact validates and replaces a contact, then refreshes the page.
func (s *Store) UpdateContact(ctx context.Context, contactID int64, c models.Contact) (models.Contact, error) {
	c = c.Normalized()
	c.ID = contactID
	if err := models.ValidateContact(c); err != nil {
		return models.Contact{}, err
	}

	id, _ := s.begin(OpUpdate, false)
	updated, err := s.api.Update(ctx, contactID, c)
	if err != nil {
		return models.Contact{}, s.fail(OpUpdate, id, err)
	}
	updated.ID = contactID
	s.Dispatch(ContactSaved{Op: OpUpdate, ID: id, Contact: updated})
	_ = s.Refresh(ctx)
	return updated, nil
}

// DeleteContact removes a contact, then refreshes the page.
func (s *Store) DeleteContact(ctx context.Context, contactID int64) error {
	id, _ := s.begin(OpDelete, false)
	if err := s.api.Delete(ctx, contactID); err != nil {
		return s.fail(OpDelete, id, err)
	}
	s.Dispatch(ContactDeleted{ID: id, ContactID: contactID})
	_ = s.Refresh(ctx)
	return nil
}

// Search routes criteria to the matching endpoint: one of name, phone or tag
// alone uses its simple search, anything else the advanced search. Empty
// criteria go back to the paged list.
func (s *Store) Search(ctx context.Context, criteria models.SearchCriteria) error {
	mode := criteria.Mode()
	if mode == models.SearchNone {
		return s.Refresh(ctx)
	}
	return s.search(ctx, criteria, mode)
}

// SearchByName lists contacts whose name contains name.
func (s *Store) SearchByName(ctx context.Context, name string) error {
	return s.search(ctx, models.SearchCriteria{Name: name}, models.SearchName)
}

// SearchByPhone lists contacts whose phone contains phone.
func (s *Store) SearchByPhone(ctx context.Context, phone string) error {
	return s.search(ctx, models.SearchCriteria{Phone: phone}, models.SearchPhone)
}

// SearchByTag lists contacts carrying tag.
func (s *Store) SearchByTag(ctx context.Context, tag models.Tag) error {
	return s.search(ctx, models.SearchCriteria{Tag: tag}, models.SearchTag)
}

// AdvancedSearch lists contacts matching every non-empty name, tag and notes filter.
func (s *Store) AdvancedSearch(ctx context.Context, criteria models.SearchCriteria) error {
	return s.search(ctx, criteria, models.SearchAdvanced)
}

func (s *Store) search(ctx context.Context, criteria models.SearchCriteria, mode models.SearchMode) error {
	id, _ := s.begin(OpSearch, true)

	var (
		contacts []models.Contact
		err      error
	)
	switch mode {
	case models.SearchName:
		contacts, err = s.api.SearchByName(ctx, criteria.Name)
	case models.SearchPhone:
		contacts, err = s.api.SearchByPhone(ctx, criteria.Phone)
	case models.SearchTag:
		contacts, err = s.api.SearchByTag(ctx, criteria.Tag)
	default:
		contacts, err = s.api.AdvancedSearch(ctx, criteria)
	}
	if err != nil {
		return s.fail(OpSearch, id, err)
	}

	s.Dispatch(ListLoaded{Op: OpSearch, ID: id, Contacts: contacts, Source: SourceSearch, Criteria: criteria})
	return nil
}

// Sort lists every contact in the given order. The order becomes the active
// one only once its results are shown.
func (s *Store) Sort(ctx context.Context, order models.Sort) error {
	id, _ := s.begin(OpSort, true)

	contacts, err := s.api.Sort(ctx, order)
	if err != nil {
		return s.fail(OpSort, id, err)
	}
	s.Dispatch(ListLoaded{Op: OpSort, ID: id, Contacts: contacts, Source: SourceSort, Sort: order})
	return nil
}

// ToggleSort sorts by field, flipping the direction when field is already
// sorted ascending.
func (s *Store) ToggleSort(ctx context.Context, field models.SortField) error {
	return s.Sort(ctx, s.State().Sort.Toggle(field))
}

// Recent lists contacts created within the last days days.
func (s *Store) Recent(ctx context.Context, days int) error {
	if days <= 0 {
		days = DefaultRecentDays
	}
	id, _ := s.begin(OpRecent, true)

	contacts, err := s.api.Recent(ctx, days)
	if err != nil {
		return s.fail(OpRecent, id, err)
	}
	s.Dispatch(ListLoaded{Op: OpRecent, ID: id, Contacts: contacts, Source: SourceRecent, RecentDays: days})
	return nil
}

// SetPagination replaces the pagination and reloads the page. The page is
// kept as given even when the size changes; only SetPageSize returns to the
// first page.
func (s *Store) SetPagination(ctx context.Context, p models.Pagination) error {
	if p.Size <= 0 {
		p = p.WithSize(p.Size)
	}
	s.Dispatch(PaginationChanged{Pagination: p.WithPage(p.Page)})
	return s.Refresh(ctx)
}

// SetPage moves to a zero-based page and reloads.
func (s *Store) SetPage(ctx context.Context, page int) error {
	return s.SetPagination(ctx, s.State().Pagination.WithPage(page))
}

// SetPageSize changes the page size, returns to the first page and reloads.
func (s *Store) SetPageSize(ctx context.Context, size int) error {
	return s.SetPagination(ctx, s.State().Pagination.WithSize(size))
}

// ExportContacts fetches the CSV export for the last days days. Saving the
// bytes is left to the caller.
func (s *Store) ExportContacts(ctx context.Context, days int) (Export, error) {
	if days <= 0 {
		days = DefaultExportDays
	}
	id, _ := s.begin(OpExport, false)

	data, err := s.api.Export(ctx, days)
	if err != nil {
		return Export{}, s.fail(OpExport, id, err)
	}
	exp := Export{Days: days, Filename: ExportFilename(days), Data: data}
	s.Dispatch(ExportFetched{ID: id, Filename: exp.Filename})
	return exp, nil
}
