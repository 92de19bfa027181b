package canvas

import (
	"fmt"

	"docdesigner/internal/align"
	"docdesigner/internal/domain"
	"docdesigner/internal/geometry"
)

// ─────────────────────────────────────────────────────────────
// Interaction Controller: pointer gestures to geometry
// ─────────────────────────────────────────────────────────────
//
//   Idle ──BeginMove──▶ Moving ──PointerUp/Cancel──▶ Idle
//   Idle ──BeginResize─▶ Resizing ──PointerUp/Cancel──▶ Idle
//
// Every pointer move recomputes geometry from the anchor captured at
// pointer-down, never from the previous move, so rounding never accumulates.

// BeginMove starts a move session for id at pointer p and selects it.
func (c *Canvas) BeginMove(id string, p Point) error {
	return c.begin(Moving, id, "", p)
}

// BeginResize starts a resize session for id dragging handle h.
func (c *Canvas) BeginResize(id string, h Handle, p Point) error {
	if !h.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidHandle, h)
	}
	return c.begin(Resizing, id, h, p)
}

func (c *Canvas) begin(kind SessionKind, id string, h Handle, p Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return ErrSessionActive
	}
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrComponentNotFound, id)
	}
	c.session = &Session{
		Kind:           kind,
		ComponentID:    id,
		AnchorPointer:  p,
		AnchorGeometry: c.components[i].Geometry,
		Handle:         h,
	}
	c.selected = id
	c.guides = nil
	return nil
}

// PointerMove applies the pointer position p to the session's component and
// returns its new geometry together with the current alignment guides.
func (c *Canvas) PointerMove(p Point) (domain.Geometry, []align.Guide, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return domain.Geometry{}, nil, ErrNoSession
	}
	i := c.indexOf(s.ComponentID)
	if i < 0 {
		// The component vanished under the session; nothing left to drive.
		c.session, c.guides = nil, nil
		return domain.Geometry{}, nil, fmt.Errorf("%w: %s", ErrComponentNotFound, s.ComponentID)
	}

	dx, dy := p.X-s.AnchorPointer.X, p.Y-s.AnchorPointer.Y
	comp := &c.components[i]
	switch s.Kind {
	case Moving:
		comp.Geometry = c.moved(s.AnchorGeometry, dx, dy)
	case Resizing:
		minW, minH := c.reg.MinSize(comp.Type)
		comp.Geometry = c.resized(s.AnchorGeometry, s.Handle, dx, dy, minW, minH)
	}

	c.guides = align.Guides(comp.Geometry, comp.ID, c.components, c.threshold)
	return comp.Geometry, append([]align.Guide(nil), c.guides...), nil
}

// PointerUp commits the session's last geometry and returns to idle.
func (c *Canvas) PointerUp() (domain.Component, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return domain.Component{}, ErrNoSession
	}
	c.session, c.guides = nil, nil
	i := c.indexOf(s.ComponentID)
	if i < 0 {
		return domain.Component{}, fmt.Errorf("%w: %s", ErrComponentNotFound, s.ComponentID)
	}
	return c.components[i], nil
}

// Cancel abandons the session and restores the anchor geometry.
func (c *Canvas) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return ErrNoSession
	}
	c.session, c.guides = nil, nil
	if i := c.indexOf(s.ComponentID); i >= 0 {
		c.components[i].Geometry = s.AnchorGeometry
	}
	return nil
}

// moved snaps the translated position to the grid, then clamps it to the
// page. The clamp runs last, so a box pushed against an edge may sit off-grid.
func (c *Canvas) moved(g domain.Geometry, dx, dy float64) domain.Geometry {
	x := geometry.Snap(g.X+dx, c.page.GridSize)
	y := geometry.Snap(g.Y+dy, c.page.GridSize)
	g.X, g.Y = geometry.ClampPosition(x, y, g.Width, g.Height, c.page)
	return g
}

// resized applies the snapped pointer delta to the edges named by handle.
// The opposite edge stays where it was at pointer-down: a west or north drag
// moves the origin, an east or south drag only changes the size. The dragged
// edge is capped at the page boundary after the minimum size is applied.
func (c *Canvas) resized(g domain.Geometry, h Handle, dx, dy, minW, minH float64) domain.Geometry {
	sdx := geometry.SnapDelta(dx, c.page.GridSize)
	sdy := geometry.SnapDelta(dy, c.page.GridSize)

	w, h2 := g.Width, g.Height
	// offX/offY is the distance from the page origin to the fixed edge,
	// measured the way ClampSize expects it.
	offX, offY := g.X, g.Y
	switch {
	case h.east():
		w += sdx
	case h.west():
		w -= sdx
		offX = c.page.Width - g.Right()
	}
	switch {
	case h.south():
		h2 += sdy
	case h.north():
		h2 -= sdy
		offY = c.page.Height - g.Bottom()
	}

	w, h2 = geometry.ClampSize(w, h2, offX, offY, c.page, minW, minH)
	out := domain.Geometry{X: g.X, Y: g.Y, Width: w, Height: h2}
	if h.west() {
		out.X = g.Right() - w
	}
	if h.north() {
		out.Y = g.Bottom() - h2
	}
	return out
}
