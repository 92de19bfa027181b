package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docdesigner/internal/service"
	"docdesigner/internal/storage"
)

type settingsResponse struct {
	service.EditorSettings
	LastExport *time.Time `json:"lastExport,omitempty"`
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	resp := settingsResponse{EditorSettings: h.settings.EditorSettings()}
	if at, ok := h.settings.LastExport(); ok {
		resp.LastExport = &at
	}
	writeJSON(w, http.StatusOK, resp)
}

// putSettings stores the display flags. Canvases opened afterwards use them.
func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var req service.EditorSettings
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.settings.SaveEditorSettings(req); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.settings.EditorSettings())
}

func (h *Handler) runExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		http.NotFound(w, r)
		return
	}
	res, err := h.exports.RunNow(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ── Approvals ──────────────────────────────────────────────
// Destructive MCP tool calls wait in the approval queue until the console
// approves or rejects them here.

func (h *Handler) listApprovals(w http.ResponseWriter, r *http.Request) {
	if h.approvals == nil {
		http.NotFound(w, r)
		return
	}
	pending, err := h.approvals.ListPending()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if pending == nil {
		pending = []storage.Approval{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (h *Handler) resolveApproval(approved bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.approvals == nil {
			http.NotFound(w, r)
			return
		}
		id := chi.URLParam(r, "approvalID")
		if err := h.approvals.Resolve(id, approved); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorBody{Error: "no pending approval " + id})
				return
			}
			h.fail(w, r, err)
			return
		}
		h.logger.Info("approval resolved", "id", id, "approved", approved)
		w.WriteHeader(http.StatusNoContent)
	}
}
