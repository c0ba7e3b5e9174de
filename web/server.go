// ABOUTME: Web UI server with embedded templates
// ABOUTME: Server-rendered contacts dashboard where every form posts to a store action
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harperreed/stellar/api"
	"github.com/harperreed/stellar/logging"
	"github.com/harperreed/stellar/models"
	"github.com/harperreed/stellar/store"
)

//go:embed templates/*
var templatesFS embed.FS

// pageWindowSize caps how many page links the pager shows.
const pageWindowSize = 5

// Options configures the dashboard defaults.
type Options struct {
	RecentDays int
	ExportDays int
	Logger     *slog.Logger
}

type Server struct {
	store      *store.Store
	templates  *template.Template
	logger     *slog.Logger
	recentDays int
	exportDays int
}

func NewServer(st *store.Store, opts Options) (*Server, error) {
	// Helper functions for templates
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"date": func(ts *models.Timestamp) string {
			if ts == nil || ts.IsZero() {
				return ""
			}
			return ts.Format("2006-01-02 15:04")
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if opts.RecentDays <= 0 {
		opts.RecentDays = store.DefaultRecentDays
	}
	if opts.ExportDays <= 0 {
		opts.ExportDays = store.DefaultExportDays
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	return &Server{
		store:      st,
		templates:  tmpl,
		logger:     opts.Logger.With("component", "web"),
		recentDays: opts.RecentDays,
		exportDays: opts.ExportDays,
	}, nil
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleDashboard)
	r.Get("/page", s.handlePage)
	r.Get("/size", s.handleSize)
	r.Get("/sort", s.handleSort)
	r.Get("/search", s.handleSearch)
	r.Get("/reset", s.handleReset)
	r.Get("/recent", s.handleRecent)
	r.Get("/export", s.handleExport)
	r.Post("/error/clear", s.handleClearError)

	r.Route("/contacts", func(r chi.Router) {
		r.Get("/new", s.handleNewContact)
		r.Post("/", s.handleCreateContact)
		r.Get("/{id}", s.handleContactDetail)
		r.Get("/{id}/edit", s.handleEditContact)
		r.Post("/{id}", s.handleUpdateContact)
		r.Post("/{id}/delete", s.handleDeleteContact)
	})
	return r
}

// Start serves the dashboard on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) renderTemplate(w http.ResponseWriter, status int, data map[string]interface{}) {
	if _, ok := data["State"]; !ok {
		data["State"] = s.store.State()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		s.logger.Error("template error", "template", data["ContentTemplate"], "error", err)
	}
}

// redirectHome sends the browser back to the dashboard with an optional flash message.
func redirectHome(w http.ResponseWriter, r *http.Request, flash string) {
	target := "/"
	if flash != "" {
		target += "?msg=" + url.QueryEscape(flash)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	state := s.store.State()
	if !state.Initialized() {
		_ = s.store.Refresh(r.Context())
		state = s.store.State()
	}

	paged := state.Source == store.SourcePage
	data := map[string]interface{}{
		"Title":           "Contacts",
		"ContentTemplate": "dashboard-content",
		"State":           state,
		"Flash":           r.URL.Query().Get("msg"),
		"Paged":           paged,
		"Pages":           models.PageWindow(state.Pagination.Page, state.TotalPages, pageWindowSize),
		"HasPrev":         paged && state.Pagination.Page > 0,
		"HasNext":         paged && state.Pagination.Page < state.TotalPages-1,
		"PageSizes":       models.PageSizes,
		"Tags":            models.Tags,
		"RecentDays":      s.recentDays,
		"ExportDays":      s.exportDays,
	}
	s.renderTemplate(w, http.StatusOK, data)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	_ = s.store.SetPage(r.Context(), page)
	redirectHome(w, r, "")
}

func (s *Server) handleSize(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || size <= 0 {
		http.Error(w, "invalid page size", http.StatusBadRequest)
		return
	}
	_ = s.store.SetPageSize(r.Context(), size)
	redirectHome(w, r, "")
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	field, err := models.ParseSortField(r.URL.Query().Get("by"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = s.store.ToggleSort(r.Context(), field)
	redirectHome(w, r, "")
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := models.SearchCriteria{
		Name:  strings.TrimSpace(q.Get("name")),
		Phone: strings.TrimSpace(q.Get("phone")),
		Notes: strings.TrimSpace(q.Get("notes")),
	}
	if raw := strings.TrimSpace(q.Get("tag")); raw != "" {
		tag, err := models.ParseTag(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		criteria.Tag = tag
	}
	_ = s.store.Search(r.Context(), criteria)
	redirectHome(w, r, "")
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	_ = s.store.Refresh(r.Context())
	redirectHome(w, r, "")
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	days, ok := daysParam(w, r, s.recentDays)
	if !ok {
		return
	}
	_ = s.store.Recent(r.Context(), days)
	redirectHome(w, r, "")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	days, ok := daysParam(w, r, s.exportDays)
	if !ok {
		return
	}
	exp, err := s.store.ExportContacts(r.Context(), days)
	if err != nil {
		redirectHome(w, r, "")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}

func (s *Server) handleClearError(w http.ResponseWriter, r *http.Request) {
	s.store.ClearError()
	redirectHome(w, r, "")
}

func (s *Server) handleNewContact(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, http.StatusOK, 0, models.Contact{Tag: models.DefaultTag}, nil)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	contact, fieldErrs := contactFromForm(r)
	if len(fieldErrs) > 0 {
		s.renderForm(w, http.StatusUnprocessableEntity, 0, contact, fieldErrs)
		return
	}

	created, err := s.store.CreateContact(r.Context(), contact)
	if err != nil {
		s.renderFormError(w, 0, contact, err)
		return
	}
	redirectHome(w, r, "Saved "+created.Name)
}

func (s *Server) handleContactDetail(w http.ResponseWriter, r *http.Request) {
	contact, ok := s.loadContact(w, r)
	if !ok {
		return
	}
	data := map[string]interface{}{
		"Title":           contact.Name,
		"ContentTemplate": "detail-content",
		"Contact":         contact,
	}
	s.renderTemplate(w, http.StatusOK, data)
}

func (s *Server) handleEditContact(w http.ResponseWriter, r *http.Request) {
	contact, ok := s.loadContact(w, r)
	if !ok {
		return
	}
	s.renderForm(w, http.StatusOK, contact.ID, contact, nil)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	contact, fieldErrs := contactFromForm(r)
	contact.ID = id
	if len(fieldErrs) > 0 {
		s.renderForm(w, http.StatusUnprocessableEntity, id, contact, fieldErrs)
		return
	}

	updated, err := s.store.UpdateContact(r.Context(), id, contact)
	if err != nil {
		s.renderFormError(w, id, contact, err)
		return
	}
	redirectHome(w, r, "Saved "+updated.Name)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteContact(r.Context(), id); err != nil {
		redirectHome(w, r, "")
		return
	}
	redirectHome(w, r, "Contact deleted")
}

func (s *Server) loadContact(w http.ResponseWriter, r *http.Request) (models.Contact, bool) {
	id, ok := contactID(w, r)
	if !ok {
		return models.Contact{}, false
	}
	if err := s.store.SelectContact(r.Context(), id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			redirectHome(w, r, "")
		}
		return models.Contact{}, false
	}
	sel := s.store.State().Selected
	if sel == nil || sel.ID != id {
		http.NotFound(w, r)
		return models.Contact{}, false
	}
	return *sel, true
}

func (s *Server) renderForm(w http.ResponseWriter, status int, id int64, contact models.Contact, fieldErrs models.FieldErrors) {
	title := "New contact"
	action := "/contacts"
	if id != 0 {
		title = "Edit contact"
		action = fmt.Sprintf("/contacts/%d", id)
	}
	if fieldErrs == nil {
		fieldErrs = models.FieldErrors{}
	}
	data := map[string]interface{}{
		"Title":           title,
		"ContentTemplate": "form-content",
		"Action":          action,
		"Contact":         contact,
		"Errors":          fieldErrs,
		"Tags":            models.Tags,
	}
	s.renderTemplate(w, status, data)
}

// renderFormError shows a failed save on the form so the input is not lost.
func (s *Server) renderFormError(w http.ResponseWriter, id int64, contact models.Contact, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		s.renderForm(w, http.StatusUnprocessableEntity, id, contact, verr.Fields)
		return
	}
	s.renderForm(w, http.StatusBadGateway, id, contact, nil)
}

func contactFromForm(r *http.Request) (models.Contact, models.FieldErrors) {
	contact := models.Contact{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Phone: r.PostFormValue("phone"),
		Notes: r.PostFormValue("notes"),
		Tag:   models.DefaultTag,
	}

	fieldErrs := models.FieldErrors{}
	if raw := strings.TrimSpace(r.PostFormValue("tags")); raw != "" {
		tag, err := models.ParseTag(raw)
		if err != nil {
			fieldErrs["tags"] = err.Error()
		} else {
			contact.Tag = tag
		}
	}

	var verr *models.ValidationError
	if err := models.ValidateContact(contact); errors.As(err, &verr) {
		for k, v := range verr.Fields {
			if _, seen := fieldErrs[k]; !seen {
				fieldErrs[k] = v
			}
		}
	}
	return contact.Normalized(), fieldErrs
}

func contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid contact id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func daysParam(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("days"))
	if raw == "" {
		return def, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		http.Error(w, "invalid number of days", http.StatusBadRequest)
		return 0, false
	}
	return days, true
}
