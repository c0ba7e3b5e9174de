// ABOUTME: In-memory contacts REST server for tests
// ABOUTME: Serves every contacts route over httptest with request logging and failure injection
package apitest

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harperreed/stellar/models"
)

// Server is a fake contacts service. It behaves like the real one closely
// enough for client and store tests: ids are assigned on create, /page
// reports only a total count and /stats/total returns a bare number.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	contacts []models.Contact
	nextID   int64
	failures map[string]int
	failAll  int
	requests []string

	// Now stamps createdOn on create and anchors the recent/export windows.
	Now func() time.Time
}

// New starts a server seeded with contacts and closes it when the test ends.
// Seed contacts without an id are numbered in order.
func New(tb testing.TB, seed ...models.Contact) *Server {
	tb.Helper()

	s := &Server{
		nextID:   1,
		failures: map[string]int{},
		Now:      time.Now,
	}
	for _, c := range seed {
		s.insert(c)
	}

	s.Server = httptest.NewServer(s.routes())
	tb.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/page", s.handlePage)
		r.Get("/search", s.handleSearchName)
		r.Get("/search/phone", s.handleSearchPhone)
		r.Get("/search/tag", s.handleSearchTag)
		r.Get("/search/advanced", s.handleAdvanced)
		r.Get("/sort", s.handleSort)
		r.Get("/stats/total", s.handleTotal)
		r.Get("/recent", s.handleRecent)
		r.Get("/export", s.handleExport)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
	return r
}

// Fail makes every request matching method and path answer with status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// FailAll makes every request answer with status until Recover is called.
func (s *Server) FailAll(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = status
}

// Recover clears all injected failures.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = 0
	s.failures = map[string]int{}
}

// Requests returns "METHOD /path" for every request received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Contacts returns a copy of the stored contacts in id order.
func (s *Server) Contacts() []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneContacts(s.contacts)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		key := r.Method + " " + r.URL.Path
		s.requests = append(s.requests, key)
		status := s.failAll
		if st, ok := s.failures[key]; ok {
			status = st
		}
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) insert(c models.Contact) models.Contact {
	if c.ID == 0 {
		c.ID = s.nextID
	}
	if c.ID >= s.nextID {
		s.nextID = c.ID + 1
	}
	if c.CreatedOn == nil {
		ts := models.Timestamp{Time: s.Now().UTC()}
		c.CreatedOn = &ts
	}
	s.contacts = append(s.contacts, c)
	return c
}

func (s *Server) indexOf(id int64) int {
	for i, c := range s.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) filter(keep func(models.Contact) bool) []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Contact{}
	for _, c := range s.contacts {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.filter(func(models.Contact) bool { return true }))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", 0)
	size := intParam(r, "size", 10)

	s.mu.Lock()
	total := len(s.contacts)
	start := page * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	contacts := models.CloneContacts(s.contacts[start:end])
	s.mu.Unlock()

	if contacts == nil {
		contacts = []models.Contact{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts, "total": total})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	i := s.indexOf(id)
	var c models.Contact
	if i >= 0 {
		c = s.contacts[i].Clone()
	}
	s.mu.Unlock()

	if i < 0 {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c = c.Normalized()
	c.ID = 0
	c.CreatedOn = nil

	s.mu.Lock()
	created := s.insert(c)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var c models.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		c = c.Normalized()
		c.ID = id
		c.CreatedOn = s.contacts[i].CreatedOn
		s.contacts[i] = c
	}
	s.mu.Unlock()

	if i < 0 {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	}
	s.mu.Unlock()

	if i < 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("Contact deleted successfully!"))
}

func (s *Server) handleSearchName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	writeJSON(w, http.StatusOK, s.filter(func(c models.Contact) bool { return containsFold(c.Name, name) }))
}

func (s *Server) handleSearchPhone(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	writeJSON(w, http.StatusOK, s.filter(func(c models.Contact) bool { return strings.Contains(c.Phone, phone) }))
}

func (s *Server) handleSearchTag(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	writeJSON(w, http.StatusOK, s.filter(func(c models.Contact) bool { return strings.EqualFold(string(c.Tag), tag) }))
}

func (s *Server) handleAdvanced(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, tag, notes := q.Get("name"), q.Get("tag"), q.Get("notes")
	writeJSON(w, http.StatusOK, s.filter(func(c models.Contact) bool {
		return (name == "" || containsFold(c.Name, name)) &&
			(tag == "" || strings.EqualFold(string(c.Tag), tag)) &&
			(notes == "" || containsFold(c.Notes, notes))
	}))
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	by := q.Get("sortBy")
	desc := strings.EqualFold(q.Get("direction"), "desc")

	out := s.filter(func(models.Contact) bool { return true })
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if desc {
			a, b = b, a
		}
		if by == "name" {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	total := len(s.contacts)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, total)
}

func (s *Server) recentSince(r *http.Request, def int) func(models.Contact) bool {
	days := intParam(r, "days", def)
	since := s.Now().UTC().AddDate(0, 0, -days)
	return func(c models.Contact) bool {
		return c.CreatedOn != nil && !c.CreatedOn.Before(since)
	}
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.filter(s.recentSince(r, 7)))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	contacts := s.filter(s.recentSince(r, 30))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=contacts.csv")
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"ID", "Name", "Email", "Phone", "Tags", "Notes"})
	for _, c := range contacts {
		_ = cw.Write([]string{strconv.FormatInt(c.ID, 10), c.Name, c.Email, c.Phone, string(c.Tag), c.Notes})
	}
	cw.Flush()
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func intParam(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
