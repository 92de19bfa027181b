package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"docdesigner/internal/align"
	"docdesigner/internal/canvas"
	"docdesigner/internal/domain"
	"docdesigner/internal/render"
)

// ── Editor routes ──────────────────────────────────────────
// One canvas per template id. Pointer coordinates are page pixels; the
// console converts from screen space before posting.

func (h *Handler) mountEditor(r chi.Router) {
	r.Post("/open", h.openEditor)
	r.Post("/close", h.closeEditor)
	r.Get("/frame", h.frame)
	r.Get("/preview.png", h.preview)
	r.Get("/keys", h.dataKeys)
	r.Post("/select", h.selectComponent)
	r.Post("/save", h.saveEditor)

	r.Post("/components", h.dropComponent)
	r.Patch("/components/{componentID}", h.patchComponent)
	r.Delete("/components/{componentID}", h.deleteComponent)

	r.Route("/pointer", func(r chi.Router) {
		r.Post("/down", h.pointerDown)
		r.Post("/move", h.pointerMove)
		r.Post("/up", h.pointerUp)
		r.Post("/cancel", h.pointerCancel)
	})
}

type dropRequest struct {
	Type domain.ComponentType `json:"type"`
}

type pointerRequest struct {
	ComponentID string        `json:"componentId,omitempty"`
	Handle      canvas.Handle `json:"handle,omitempty"`
	X           float64       `json:"x"`
	Y           float64       `json:"y"`
}

type pointerMoveResponse struct {
	Geometry domain.Geometry `json:"geometry"`
	Guides   []align.Guide   `json:"guides"`
}

type patchRequest struct {
	Geometry *domain.Geometry        `json:"geometry,omitempty"`
	DataKey  *string                 `json:"dataKey,omitempty"`
	Config   *domain.ComponentConfig `json:"config,omitempty"`
}

type selectRequest struct {
	ComponentID string `json:"componentId"`
}

func templateID(r *http.Request) string { return chi.URLParam(r, "templateID") }

func (h *Handler) openEditor(w http.ResponseWriter, r *http.Request) {
	f, err := h.editor.Open(r.Context(), templateID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) closeEditor(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.Close(templateID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) frame(w http.ResponseWriter, r *http.Request) {
	f, err := h.editor.Frame(templateID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// preview renders the frame as PNG. Query: scale (default 1), grid=0 to
// leave out grid lines.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	f, err := h.editor.Frame(templateID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	opts := render.Options{HideGrid: r.URL.Query().Get("grid") == "0"}
	if s := r.URL.Query().Get("scale"); s != "" {
		scale, err := strconv.ParseFloat(s, 64)
		if err != nil || scale <= 0 {
			h.fail(w, r, fmt.Errorf("%w: scale %q", errBadRequest, s))
			return
		}
		opts.Scale = scale
	}

	var buf bytes.Buffer
	if err := render.PNG(&buf, f, opts); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// dataKeys lists the schema keys of the template. With ?component=<id> the
// list is narrowed to what that component can be bound to.
func (h *Handler) dataKeys(w http.ResponseWriter, r *http.Request) {
	var (
		keys []domain.DataKey
		err  error
	)
	if compID := r.URL.Query().Get("component"); compID != "" {
		keys, err = h.editor.BindableKeys(templateID(r), compID)
	} else {
		keys, err = h.editor.DataKeys(templateID(r))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *Handler) selectComponent(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ok, err := h.editor.Select(r.Context(), templateID(r), req.ComponentID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: %s", canvas.ErrComponentNotFound, req.ComponentID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveEditor(w http.ResponseWriter, r *http.Request) {
	t, err := h.editor.Save(r.Context(), templateID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Record())
}

func (h *Handler) dropComponent(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.editor.Drop(r.Context(), templateID(r), req.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) patchComponent(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.editor.UpdateComponent(r.Context(), templateID(r), chi.URLParam(r, "componentID"), canvas.Patch{
		Geometry: req.Geometry,
		DataKey:  req.DataKey,
		Config:   req.Config,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// deleteComponent is only called after the console's confirmation dialog.
func (h *Handler) deleteComponent(w http.ResponseWriter, r *http.Request) {
	removed, err := h.editor.DeleteComponent(r.Context(), templateID(r), chi.URLParam(r, "componentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (h *Handler) pointerDown(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p := canvas.Point{X: req.X, Y: req.Y}
	if err := h.editor.PointerDown(r.Context(), templateID(r), req.ComponentID, req.Handle, p); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pointerMove(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	g, guides, err := h.editor.PointerMove(r.Context(), templateID(r), canvas.Point{X: req.X, Y: req.Y})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if guides == nil {
		guides = []align.Guide{}
	}
	writeJSON(w, http.StatusOK, pointerMoveResponse{Geometry: g, Guides: guides})
}

func (h *Handler) pointerUp(w http.ResponseWriter, r *http.Request) {
	c, err := h.editor.PointerUp(r.Context(), templateID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) pointerCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.Cancel(r.Context(), templateID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
