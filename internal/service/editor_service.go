package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"docdesigner/internal/align"
	"docdesigner/internal/canvas"
	"docdesigner/internal/domain"
	"docdesigner/internal/registry"
	"docdesigner/internal/schema"
)

var ErrTemplateNotOpen = errors.New("template is not open in the editor")

// ─────────────────────────────────────────────────────────────
// Editor Service: open canvases and the gestures that edit them
// ─────────────────────────────────────────────────────────────

// EditorService holds one canvas per open template and routes pointer events,
// property edits and saves to it. The canvas is the only place geometry
// changes; this layer adds persistence and events.
type EditorService struct {
	mu        sync.Mutex
	open      map[string]*openTemplate
	templates *TemplateService
	reg       *registry.Registry
	schema    schema.Provider
	settings  *SettingsService
	page      domain.Page
	threshold float64
	emitter   EventEmitter
	logger    *log.Logger

	// gesture is the one pointer session allowed across all open templates.
	gesture *activeGesture
}

type activeGesture struct {
	templateID  string
	componentID string
}

type openTemplate struct {
	tpl    domain.Template
	canvas *canvas.Canvas
	dirty  bool
}

// EditorDeps groups the collaborators of an EditorService.
type EditorDeps struct {
	Templates *TemplateService
	Registry  *registry.Registry
	Schema    schema.Provider
	// Settings, when set, supplies the grid and ruler flags of each canvas
	// as it is opened.
	Settings  *SettingsService
	Page      domain.Page
	Threshold float64
	Emitter   EventEmitter
	Logger    *log.Logger
}

func NewEditorService(deps EditorDeps) *EditorService {
	if deps.Threshold <= 0 {
		deps.Threshold = align.DefaultThreshold
	}
	return &EditorService{
		open:      make(map[string]*openTemplate),
		templates: deps.Templates,
		reg:       deps.Registry,
		schema:    deps.Schema,
		settings:  deps.Settings,
		page:      deps.Page,
		threshold: deps.Threshold,
		emitter:   deps.Emitter,
		logger:    deps.Logger,
	}
}

// ChangedEvent is the payload of editor:changed and editor:saved.
type ChangedEvent struct {
	TemplateID  string `json:"templateId"`
	ComponentID string `json:"componentId,omitempty"`
	Action      string `json:"action"`
}

// GuidesEvent is the payload of editor:guides.
type GuidesEvent struct {
	TemplateID  string          `json:"templateId"`
	ComponentID string          `json:"componentId"`
	Geometry    domain.Geometry `json:"geometry"`
	Guides      []align.Guide   `json:"guides"`
}

// Open loads the template into a canvas, or returns the canvas already open.
func (s *EditorService) Open(ctx context.Context, id string) (canvas.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ot, ok := s.open[id]; ok {
		return ot.canvas.Render(), nil
	}
	t, err := s.templates.Get(id)
	if err != nil {
		return canvas.Frame{}, fmt.Errorf("open template: %w", err)
	}
	page := s.page
	if s.settings != nil {
		page = s.settings.ApplyTo(page)
	}
	c := canvas.New(page, s.reg, t.Components,
		canvas.WithLogger(s.logger.WithPrefix("canvas")),
		canvas.WithThreshold(s.threshold),
	)
	s.open[id] = &openTemplate{tpl: *t, canvas: c}
	s.logger.Info("template opened", "id", id, "components", len(t.Components))
	return c.Render(), nil
}

// Close drops the canvas for id. Unsaved changes are lost.
func (s *EditorService) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ot, ok := s.open[id]
	if !ok {
		return ErrTemplateNotOpen
	}
	if ot.dirty {
		s.logger.Warn("closing template with unsaved changes", "id", id)
	}
	if s.gesture != nil && s.gesture.templateID == id {
		s.gesture = nil
	}
	delete(s.open, id)
	return nil
}

// OpenTemplates returns the ids of open templates, sorted.
func (s *EditorService) OpenTemplates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *EditorService) get(id string) (*openTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ot, ok := s.open[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotOpen, id)
	}
	return ot, nil
}

func (s *EditorService) markDirty(ctx context.Context, id string, ot *openTemplate, componentID, action string) {
	s.mu.Lock()
	ot.dirty = true
	s.mu.Unlock()
	s.emitter.Emit(ctx, EventEditorChanged, ChangedEvent{TemplateID: id, ComponentID: componentID, Action: action})
}

// Dirty reports whether the open template has unsaved changes.
func (s *EditorService) Dirty(id string) (bool, error) {
	ot, err := s.get(id)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ot.dirty, nil
}

// Drop adds a palette item of type t to the open template.
func (s *EditorService) Drop(ctx context.Context, id string, t domain.ComponentType) (domain.Component, error) {
	ot, err := s.get(id)
	if err != nil {
		return domain.Component{}, err
	}
	comp, err := ot.canvas.AddComponent(t)
	if err != nil {
		return domain.Component{}, fmt.Errorf("drop %s: %w", t, err)
	}
	s.markDirty(ctx, id, ot, comp.ID, "add")
	return comp, nil
}

// PointerDown starts a gesture. An empty componentID is a press on empty
// page space and clears the selection. An empty handle starts a move,
// otherwise a resize from that handle. Only one gesture may be active across
// all open templates; a press while another is active returns
// canvas.ErrSessionActive.
func (s *EditorService) PointerDown(ctx context.Context, id, componentID string, h canvas.Handle, p canvas.Point) error {
	ot, err := s.get(id)
	if err != nil {
		return err
	}
	if componentID == "" {
		ot.canvas.ClearSelection()
		s.emitter.Emit(ctx, EventEditorChanged, ChangedEvent{TemplateID: id, Action: "select"})
		return nil
	}

	s.mu.Lock()
	if g := s.gesture; g != nil && g.templateID != id {
		s.mu.Unlock()
		return fmt.Errorf("%w: template %s is being edited", canvas.ErrSessionActive, g.templateID)
	}
	if h == "" {
		err = ot.canvas.BeginMove(componentID, p)
	} else {
		err = ot.canvas.BeginResize(componentID, h, p)
	}
	if err == nil {
		s.gesture = &activeGesture{templateID: id, componentID: componentID}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventEditorChanged, ChangedEvent{TemplateID: id, ComponentID: componentID, Action: "select"})
	return nil
}

// endGesture releases the gesture slot held by template id.
func (s *EditorService) endGesture(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture != nil && s.gesture.templateID == id {
		s.gesture = nil
	}
}

// PointerMove feeds a pointer position to the active gesture.
func (s *EditorService) PointerMove(ctx context.Context, id string, p canvas.Point) (domain.Geometry, []align.Guide, error) {
	ot, err := s.get(id)
	if err != nil {
		return domain.Geometry{}, nil, err
	}
	g, guides, err := ot.canvas.PointerMove(p)
	if err != nil {
		return domain.Geometry{}, nil, err
	}
	compID := ""
	if sess := ot.canvas.Session(); sess != nil {
		compID = sess.ComponentID
	}
	s.emitter.Emit(ctx, EventEditorGuides, GuidesEvent{TemplateID: id, ComponentID: compID, Geometry: g, Guides: guides})
	return g, guides, nil
}

// PointerUp commits the active gesture.
func (s *EditorService) PointerUp(ctx context.Context, id string) (domain.Component, error) {
	ot, err := s.get(id)
	if err != nil {
		return domain.Component{}, err
	}
	sess := ot.canvas.Session()
	comp, err := ot.canvas.PointerUp()
	if err != nil {
		return domain.Component{}, err
	}
	s.endGesture(id)
	if sess != nil && comp.Geometry != sess.AnchorGeometry {
		s.markDirty(ctx, id, ot, comp.ID, string(sess.Kind))
	} else {
		s.emitter.Emit(ctx, EventEditorChanged, ChangedEvent{TemplateID: id, ComponentID: comp.ID, Action: "release"})
	}
	return comp, nil
}

// Cancel abandons the active gesture.
func (s *EditorService) Cancel(ctx context.Context, id string) error {
	ot, err := s.get(id)
	if err != nil {
		return err
	}
	if err := ot.canvas.Cancel(); err != nil {
		return err
	}
	s.endGesture(id)
	s.emitter.Emit(ctx, EventEditorChanged, ChangedEvent{TemplateID: id, Action: "cancel"})
	return nil
}

// UpdateComponent applies a property-panel edit.
func (s *EditorService) UpdateComponent(ctx context.Context, id, componentID string, p canvas.Patch) (domain.Component, error) {
	ot, err := s.get(id)
	if err != nil {
		return domain.Component{}, err
	}
	comp, err := ot.canvas.UpdateComponent(componentID, p)
	if err != nil {
		return domain.Component{}, err
	}
	s.markDirty(ctx, id, ot, componentID, "update")
	return comp, nil
}

// DeleteComponent removes a component. Callers confirm with the user first;
// deleting an unknown component reports false and changes nothing.
func (s *EditorService) DeleteComponent(ctx context.Context, id, componentID string) (bool, error) {
	ot, err := s.get(id)
	if err != nil {
		return false, err
	}
	removed, err := ot.canvas.DeleteComponent(componentID)
	if err != nil || !removed {
		return removed, err
	}
	s.markDirty(ctx, id, ot, componentID, "delete")
	return true, nil
}

func (s *EditorService) Select(ctx context.Context, id, componentID string) (bool, error) {
	ot, err := s.get(id)
	if err != nil {
		return false, err
	}
	ok := ot.canvas.Select(componentID)
	if ok {
		s.emitter.Emit(ctx, EventEditorChanged, ChangedEvent{TemplateID: id, ComponentID: componentID, Action: "select"})
	}
	return ok, nil
}

// Frame renders the current state of the open template.
func (s *EditorService) Frame(id string) (canvas.Frame, error) {
	ot, err := s.get(id)
	if err != nil {
		return canvas.Frame{}, err
	}
	return ot.canvas.Render(), nil
}

// Components returns the components of the open template in draw order.
func (s *EditorService) Components(id string) ([]domain.Component, error) {
	ot, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return ot.canvas.Components(), nil
}

// Save persists the committed component list. It refuses while a gesture is
// in progress so intermediate geometry is never written. On failure the
// canvas is left as it was, so the save can be retried.
func (s *EditorService) Save(ctx context.Context, id string) (*domain.Template, error) {
	ot, err := s.get(id)
	if err != nil {
		return nil, err
	}
	components, err := ot.canvas.Snapshot()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	t := ot.tpl
	s.mu.Unlock()
	t.Components = components
	// Keep a rename made while the template was open.
	if cur, err := s.templates.Get(id); err == nil {
		t.Name = cur.Name
	}

	if err := s.templates.Save(ctx, &t); err != nil {
		return nil, err
	}

	s.mu.Lock()
	ot.tpl = t
	ot.dirty = false
	s.mu.Unlock()
	s.logger.Info("template saved", "id", id, "components", len(t.Components))
	s.emitter.Emit(ctx, EventEditorSaved, ChangedEvent{TemplateID: id, Action: "save"})
	return &t, nil
}

// DataKeys returns the schema keys of the open template's document type.
func (s *EditorService) DataKeys(id string) ([]domain.DataKey, error) {
	ot, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return s.schema.Keys(ot.tpl.DocumentType), nil
}

// BindableKeys narrows DataKeys to those the component's kind accepts.
func (s *EditorService) BindableKeys(id, componentID string) ([]domain.DataKey, error) {
	ot, err := s.get(id)
	if err != nil {
		return nil, err
	}
	comp, ok := ot.canvas.Component(componentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", canvas.ErrComponentNotFound, componentID)
	}
	return s.reg.Bindable(comp.Type, s.schema.Keys(ot.tpl.DocumentType)), nil
}
