package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docdesigner/internal/domain"
)

func (h *Handler) mountTemplates(r chi.Router) {
	r.Get("/", h.listTemplates)
	r.Post("/", h.createTemplate)
	r.Post("/import", h.importTemplate)
	r.Route("/{templateID}", func(r chi.Router) {
		r.Get("/", h.getTemplate)
		r.Patch("/", h.renameTemplate)
		r.Delete("/", h.deleteTemplate)
		r.Get("/export", h.exportTemplate)
	})
}

type createTemplateRequest struct {
	Name         string              `json:"name"`
	DocumentType domain.DocumentType `json:"documentType"`
}

type renameTemplateRequest struct {
	Name string `json:"name"`
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.templates.List()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]domain.TemplateRecord, 0, len(list))
	for _, t := range list {
		out = append(out, t.Record())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.templates.Create(r.Context(), req.Name, req.DocumentType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t.Record())
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.templates.Get(chi.URLParam(r, "templateID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Record())
}

func (h *Handler) renameTemplate(w http.ResponseWriter, r *http.Request) {
	var req renameTemplateRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.templates.Rename(r.Context(), chi.URLParam(r, "templateID"), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Record())
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	// An open canvas would otherwise outlive its record.
	_ = h.editor.Close(id)
	if err := h.templates.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) importTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.templates.ImportJSON(r.Context(), http.MaxBytesReader(w, r.Body, 8<<20))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t.Record())
}

func (h *Handler) exportTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	if _, err := h.templates.Get(id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".json"))
	if err := h.templates.ExportJSON(id, w); err != nil {
		h.logger.Error("export template", "id", id, "err", err)
	}
}

func (h *Handler) listKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Kinds())
}

func (h *Handler) schemaKeys(w http.ResponseWriter, r *http.Request) {
	dt := domain.DocumentType(chi.URLParam(r, "documentType"))
	if !dt.Valid() {
		writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("unknown document type %q", dt)})
		return
	}
	writeJSON(w, http.StatusOK, h.schema.Keys(dt))
}
