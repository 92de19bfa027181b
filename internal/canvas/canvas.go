// Package canvas holds the in-memory model of one template being edited: the
// page, its components, the current selection, and the move/resize
// interaction session that drives geometry changes from pointer input.
//
// A Canvas is safe for concurrent use. Every mutation runs under one mutex,
// so a geometry change is fully applied before any reader can observe it.
package canvas

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"docdesigner/internal/align"
	"docdesigner/internal/domain"
	"docdesigner/internal/geometry"
	"docdesigner/internal/registry"
)

const (
	// Where the first dropped component lands; each later one is staggered
	// further down so new components never stack on the same spot.
	initialMargin = 20.0
	staggerStep   = 20.0
)

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger used for ignored or rejected operations.
func WithLogger(l *log.Logger) Option {
	return func(c *Canvas) { c.logger = l }
}

// WithThreshold sets the alignment guide threshold in page pixels.
func WithThreshold(t float64) Option {
	return func(c *Canvas) { c.threshold = t }
}

// WithIDGenerator replaces the UUID generator used for new components.
func WithIDGenerator(gen func() string) Option {
	return func(c *Canvas) { c.newID = gen }
}

// Canvas is the page model: an ordered component list (later entries draw
// on top), at most one selected component, and at most one active session.
type Canvas struct {
	mu         sync.Mutex
	page       domain.Page
	reg        *registry.Registry
	components []domain.Component
	selected   string
	session    *Session
	guides     []align.Guide

	threshold float64
	logger    *log.Logger
	newID     func() string
}

// New creates a canvas for page. Initial components are fitted to the page
// and their kind's minimum size before they are stored.
func New(page domain.Page, reg *registry.Registry, components []domain.Component, opts ...Option) *Canvas {
	c := &Canvas{
		page:      page,
		reg:       reg,
		threshold: align.DefaultThreshold,
		logger:    log.New(io.Discard),
		newID:     func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(c)
	}
	for _, comp := range components {
		minW, minH := reg.MinSize(comp.Type)
		comp.Geometry = geometry.Fit(comp.Geometry, page, minW, minH)
		c.components = append(c.components, comp)
	}
	return c
}

func (c *Canvas) Page() domain.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// AddComponent creates a component of type t with its kind's defaults,
// places it at the next staggered position and selects it.
func (c *Canvas) AddComponent(t domain.ComponentType) (domain.Component, error) {
	w, h, cfg, err := c.reg.Defaults(t)
	if err != nil {
		return domain.Component{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return domain.Component{}, ErrSessionActive
	}

	minW, minH := c.reg.MinSize(t)
	w, h = geometry.ClampSize(w, h, 0, 0, c.page, minW, minH)
	x := geometry.Snap(initialMargin, c.page.GridSize)
	y := geometry.Snap(initialMargin+staggerStep*float64(len(c.components)), c.page.GridSize)
	x, y = geometry.ClampPosition(x, y, w, h, c.page)

	comp := domain.Component{
		ID:       c.newID(),
		Type:     t,
		Geometry: domain.Geometry{X: x, Y: y, Width: w, Height: h},
		Config:   cfg,
	}
	c.components = append(c.components, comp)
	c.selected = comp.ID
	return comp, nil
}

// Patch is a partial component update. Nil fields are left unchanged.
type Patch struct {
	Geometry *domain.Geometry
	DataKey  *string
	Config   *domain.ComponentConfig
}

// UpdateComponent merges p into the component with id. Geometry is fitted to
// the page and minimum size. An unknown id is logged and reported as
// ErrComponentNotFound, which callers may ignore.
func (c *Canvas) UpdateComponent(id string, p Patch) (domain.Component, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return domain.Component{}, ErrSessionActive
	}

	i := c.indexOf(id)
	if i < 0 {
		c.logger.Debug("update ignored", "component", id, "reason", "not found")
		return domain.Component{}, fmt.Errorf("%w: %s", ErrComponentNotFound, id)
	}
	comp := &c.components[i]
	if p.Geometry != nil {
		minW, minH := c.reg.MinSize(comp.Type)
		comp.Geometry = geometry.Fit(*p.Geometry, c.page, minW, minH)
	}
	if p.DataKey != nil {
		comp.DataKey = *p.DataKey
	}
	if p.Config != nil {
		comp.Config = *p.Config
	}
	return *comp, nil
}

// DeleteComponent removes the component with id and clears the selection if
// it pointed at it. Deleting an unknown id is a no-op and reports false.
func (c *Canvas) DeleteComponent(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return false, ErrSessionActive
	}

	i := c.indexOf(id)
	if i < 0 {
		c.logger.Debug("delete ignored", "component", id, "reason", "not found")
		return false, nil
	}
	c.components = append(c.components[:i], c.components[i+1:]...)
	if c.selected == id {
		c.selected = ""
	}
	return true, nil
}

// Select marks id as the selected component. Unknown ids are ignored.
func (c *Canvas) Select(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(id) < 0 {
		return false
	}
	c.selected = id
	return true
}

// ClearSelection handles a pointer-down on empty page space.
func (c *Canvas) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = ""
}

func (c *Canvas) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Component returns a copy of the component with id.
func (c *Canvas) Component(id string) (domain.Component, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return domain.Component{}, false
	}
	return c.components[i], true
}

// Components returns a copy of the component list in draw order.
func (c *Canvas) Components() []domain.Component {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Snapshot returns the committed component list for persistence, or
// ErrSessionActive while a gesture is in progress.
func (c *Canvas) Snapshot() ([]domain.Component, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return nil, ErrSessionActive
	}
	return c.snapshot(), nil
}

// Guides returns the alignment guides of the active session, if any.
func (c *Canvas) Guides() []align.Guide {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]align.Guide(nil), c.guides...)
}

// Session returns a copy of the active session, or nil when idle.
func (c *Canvas) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Canvas) snapshot() []domain.Component {
	out := make([]domain.Component, len(c.components))
	copy(out, c.components)
	for i := range out {
		if cols := out[i].Config.Columns; cols != nil {
			out[i].Config.Columns = append([]domain.TableColumn(nil), cols...)
		}
	}
	return out
}

func (c *Canvas) indexOf(id string) int {
	for i := range c.components {
		if c.components[i].ID == id {
			return i
		}
	}
	return -1
}
