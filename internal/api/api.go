// Package api serves the designer console: a JSON API over the template,
// editor, export and settings services, plus the approval endpoints that
// answer destructive requests made through the MCP server.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docdesigner/internal/canvas"
	"docdesigner/internal/registry"
	"docdesigner/internal/schema"
	"docdesigner/internal/service"
	"docdesigner/internal/storage"
)

// ApprovalQueue is the part of the approval store the console needs.
type ApprovalQueue interface {
	ListPending() ([]storage.Approval, error)
	Resolve(id string, approved bool) error
}

// Handler holds the services behind the HTTP routes.
type Handler struct {
	templates *service.TemplateService
	editor    *service.EditorService
	exports   *service.ExportService
	settings  *service.SettingsService
	registry  *registry.Registry
	schema    schema.Provider
	approvals ApprovalQueue
	logger    *log.Logger
}

// Deps groups the collaborators of a Handler. Exports and Approvals may be
// nil; their routes then answer 404.
type Deps struct {
	Templates *service.TemplateService
	Editor    *service.EditorService
	Exports   *service.ExportService
	Settings  *service.SettingsService
	Registry  *registry.Registry
	Schema    schema.Provider
	Approvals ApprovalQueue
	Logger    *log.Logger
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		templates: d.Templates,
		editor:    d.Editor,
		exports:   d.Exports,
		settings:  d.Settings,
		registry:  d.Registry,
		schema:    d.Schema,
		approvals: d.Approvals,
		logger:    logger,
	}
}

// Routes builds the router. Everything lives under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/kinds", h.listKinds)
		r.Get("/schema/{documentType}", h.schemaKeys)

		r.Route("/templates", h.mountTemplates)
		r.Route("/editor/{templateID}", h.mountEditor)

		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.putSettings)
		r.Post("/export", h.runExport)

		r.Route("/approvals", func(r chi.Router) {
			r.Get("/", h.listApprovals)
			r.Post("/{approvalID}/approve", h.resolveApproval(true))
			r.Post("/{approvalID}/reject", h.resolveApproval(false))
		})
	})
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "took", time.Since(start))
	})
}

// ── helpers ────────────────────────────────────────────────

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// statusOf maps service and canvas errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, service.ErrTemplateNotOpen),
		errors.Is(err, canvas.ErrComponentNotFound):
		return http.StatusNotFound
	case errors.Is(err, canvas.ErrSessionActive),
		errors.Is(err, canvas.ErrNoSession),
		errors.Is(err, service.ErrExportRunning):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidDocumentType),
		errors.Is(err, service.ErrDuplicateComponent),
		errors.Is(err, service.ErrMalformedTemplate),
		errors.Is(err, registry.ErrUnknownType),
		errors.Is(err, canvas.ErrInvalidHandle),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// decode reads a JSON body into v. Failures are reported as bad requests.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
