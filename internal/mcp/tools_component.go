package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"docdesigner/internal/canvas"
	"docdesigner/internal/domain"
)

func (s *Server) registerComponentTools() {
	// ── list_components ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List the components of an open template with their geometry, binding and placeholder text"),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
	), s.handleListComponents)

	// ── add_component ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_component",
		mcp.WithDescription("Drop a component from the palette. Without a position it is placed at the next free stagger offset. Geometry is snapped to the grid and kept on the page."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithString("type",
			mcp.Description("Component kind: label, text, multiline, number, date, image, table, qrcode, barcode, signature, checkbox"),
			mcp.Required(),
		),
		mcp.WithNumber("x", mcp.Description("Left edge in page pixels (optional)")),
		mcp.WithNumber("y", mcp.Description("Top edge in page pixels (optional)")),
		mcp.WithNumber("width", mcp.Description("Width (optional, kind default)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, kind default)")),
		mcp.WithString("dataKey", mcp.Description("Data key to bind (optional)")),
	), s.handleAddComponent)

	// ── move_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Drag a component. Give a target x/y or a dx/dy offset. The result is snapped to the grid and clamped to the page."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Target left edge")),
		mcp.WithNumber("y", mcp.Description("Target top edge")),
		mcp.WithNumber("dx", mcp.Description("Horizontal drag distance")),
		mcp.WithNumber("dy", mcp.Description("Vertical drag distance")),
	), s.handleMoveComponent)

	// ── resize_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_component",
		mcp.WithDescription("Drag a resize handle. Give a target width/height or a dx/dy drag. The opposite edge stays fixed; the kind's minimum size and the page edge are enforced."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("handle", mcp.Description("Handle: n, s, e, w, ne, nw, se, sw (default se)")),
		mcp.WithNumber("width", mcp.Description("Target width")),
		mcp.WithNumber("height", mcp.Description("Target height")),
		mcp.WithNumber("dx", mcp.Description("Horizontal drag distance")),
		mcp.WithNumber("dy", mcp.Description("Vertical drag distance")),
	), s.handleResizeComponent)

	// ── bind_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("bind_component",
		mcp.WithDescription("Bind a component to a data key of the template's document type. An empty dataKey unbinds it."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("dataKey", mcp.Description("Data key, see list_data_keys")),
	), s.handleBindComponent)

	// ── delete_component (destructive) ─────────────────
	s.mcp.AddTool(mcp.NewTool("delete_component",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a component from a template. Requires user approval."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteComponent)
}

// ── Handlers ───────────────────────────────────────────────

// gestureResult reports where a drag ended and whether snapping or the page
// edge moved it away from the request.
type gestureResult struct {
	Component domain.Component `json:"component"`
	Requested domain.Geometry  `json:"requested"`
	Adjusted  bool             `json:"adjusted"`
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.openTemplate(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	frame, err := s.editor.Frame(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(frame.Items)
}

func (s *Server) handleAddComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.openTemplate(ctx, args)
	if err != nil {
		return nil, err
	}
	kind, err := requireString(args, "type")
	if err != nil {
		return nil, err
	}

	// Validate everything before the drop so a rejected call leaves the
	// component list untouched.
	key := getString(args, "dataKey", "")
	if key != "" {
		dataKeys, err := s.editor.DataKeys(id)
		if err != nil {
			return nil, err
		}
		if err := requireBindable(key, s.registry.Bindable(domain.ComponentType(kind), dataKeys)); err != nil {
			return nil, err
		}
	}

	comp, err := s.editor.Drop(ctx, id, domain.ComponentType(kind))
	if err != nil {
		return nil, err
	}

	var patch canvas.Patch
	if hasNumber(args, "x") || hasNumber(args, "y") || hasNumber(args, "width") || hasNumber(args, "height") {
		g := domain.Geometry{
			X:      getFloat(args, "x", comp.X),
			Y:      getFloat(args, "y", comp.Y),
			Width:  getFloat(args, "width", comp.Width),
			Height: getFloat(args, "height", comp.Height),
		}
		patch.Geometry = &g
	}
	if key != "" {
		patch.DataKey = &key
	}
	if patch.Geometry != nil || patch.DataKey != nil {
		updated, err := s.editor.UpdateComponent(ctx, id, comp.ID, patch)
		if err != nil {
			if _, derr := s.editor.DeleteComponent(ctx, id, comp.ID); derr != nil {
				s.logger.Warn("could not undo drop", "template", id, "component", comp.ID, "err", derr)
			}
			return nil, err
		}
		comp = updated
	}
	return jsonResult(comp)
}

func (s *Server) handleMoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, comp, err := s.componentForTool(ctx, args)
	if err != nil {
		return nil, err
	}

	dx, dy := getFloat(args, "dx", 0), getFloat(args, "dy", 0)
	if hasNumber(args, "x") {
		dx = getFloat(args, "x", 0) - comp.X
	}
	if hasNumber(args, "y") {
		dy = getFloat(args, "y", 0) - comp.Y
	}
	requested := comp.Geometry
	requested.X += dx
	requested.Y += dy

	moved, err := s.drag(ctx, id, comp.ID, "", dx, dy)
	if err != nil {
		return nil, err
	}
	return jsonResult(gestureResult{Component: moved, Requested: requested, Adjusted: moved.Geometry != requested})
}

func (s *Server) handleResizeComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, comp, err := s.componentForTool(ctx, args)
	if err != nil {
		return nil, err
	}
	h := canvas.Handle(getString(args, "handle", string(canvas.HandleSE)))
	if !h.Valid() {
		return nil, fmt.Errorf("%w: %q", canvas.ErrInvalidHandle, h)
	}
	east, west := strings.Contains(string(h), "e"), strings.Contains(string(h), "w")
	south, north := strings.Contains(string(h), "s"), strings.Contains(string(h), "n")

	dx, dy := getFloat(args, "dx", 0), getFloat(args, "dy", 0)
	if hasNumber(args, "width") {
		grow := getFloat(args, "width", 0) - comp.Width
		switch {
		case east:
			dx = grow
		case west:
			dx = -grow
		}
	}
	if hasNumber(args, "height") {
		grow := getFloat(args, "height", 0) - comp.Height
		switch {
		case south:
			dy = grow
		case north:
			dy = -grow
		}
	}

	requested := comp.Geometry
	if east {
		requested.Width += dx
	}
	if west {
		requested.X += dx
		requested.Width -= dx
	}
	if south {
		requested.Height += dy
	}
	if north {
		requested.Y += dy
		requested.Height -= dy
	}

	resized, err := s.drag(ctx, id, comp.ID, h, dx, dy)
	if err != nil {
		return nil, err
	}
	return jsonResult(gestureResult{Component: resized, Requested: requested, Adjusted: resized.Geometry != requested})
}

func (s *Server) handleBindComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, comp, err := s.componentForTool(ctx, args)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(getString(args, "dataKey", ""))
	if key != "" {
		if err := s.checkBindable(id, comp.ID, key); err != nil {
			return nil, err
		}
	}
	updated, err := s.editor.UpdateComponent(ctx, id, comp.ID, canvas.Patch{DataKey: &key})
	if err != nil {
		return nil, err
	}
	return jsonResult(updated)
}

func (s *Server) handleDeleteComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.openTemplate(ctx, args)
	if err != nil {
		return nil, err
	}
	compID, err := requireString(args, "componentId")
	if err != nil {
		return nil, err
	}
	comp, ok, err := s.findComponent(id, compID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("Component %s not found; nothing deleted", compID)), nil
	}

	meta := fmt.Sprintf(`{"templateId":%q,"componentIds":[%q]}`, id, comp.ID)
	desc := fmt.Sprintf("Delete %s component %s", comp.Type, comp.ID)
	if err := s.approval.Request(ctx, "delete_component", desc, meta); err != nil {
		if errors.Is(err, ErrRejected) || errors.Is(err, ErrApprovalTimeout) {
			return textResult("Action rejected by user"), nil
		}
		return nil, err
	}

	removed, err := s.editor.DeleteComponent(ctx, id, comp.ID)
	if err != nil {
		return nil, fmt.Errorf("delete component: %w", err)
	}
	if !removed {
		return textResult(fmt.Sprintf("Component %s was already removed", comp.ID)), nil
	}
	return textResult(fmt.Sprintf("Component %s deleted", comp.ID)), nil
}

// ── Shared ─────────────────────────────────────────────────

// drag replays a pointer gesture: press at the origin, move by (dx, dy),
// release. A failed move cancels the gesture so the canvas returns to idle.
func (s *Server) drag(ctx context.Context, id, compID string, h canvas.Handle, dx, dy float64) (domain.Component, error) {
	if err := s.editor.PointerDown(ctx, id, compID, h, canvas.Point{}); err != nil {
		return domain.Component{}, err
	}
	if _, _, err := s.editor.PointerMove(ctx, id, canvas.Point{X: dx, Y: dy}); err != nil {
		_ = s.editor.Cancel(ctx, id)
		return domain.Component{}, err
	}
	return s.editor.PointerUp(ctx, id)
}

func (s *Server) componentForTool(ctx context.Context, args map[string]any) (string, domain.Component, error) {
	id, err := s.openTemplate(ctx, args)
	if err != nil {
		return "", domain.Component{}, err
	}
	compID, err := requireString(args, "componentId")
	if err != nil {
		return "", domain.Component{}, err
	}
	comp, ok, err := s.findComponent(id, compID)
	if err != nil {
		return "", domain.Component{}, err
	}
	if !ok {
		return "", domain.Component{}, fmt.Errorf("%w: %s", canvas.ErrComponentNotFound, compID)
	}
	return id, comp, nil
}

func (s *Server) findComponent(id, compID string) (domain.Component, bool, error) {
	comps, err := s.editor.Components(id)
	if err != nil {
		return domain.Component{}, false, err
	}
	i := slices.IndexFunc(comps, func(c domain.Component) bool { return c.ID == compID })
	if i < 0 {
		return domain.Component{}, false, nil
	}
	return comps[i], true, nil
}

// checkBindable rejects keys the component's kind cannot display.
func (s *Server) checkBindable(id, compID, key string) error {
	keys, err := s.editor.BindableKeys(id, compID)
	if err != nil {
		return err
	}
	return requireBindable(key, keys)
}

func requireBindable(key string, keys []domain.DataKey) error {
	names := make([]string, len(keys))
	for i, k := range keys {
		if k.Key == key {
			return nil
		}
		names[i] = k.Key
	}
	return fmt.Errorf("data key %q cannot be bound to this component (accepted: %s)", key, strings.Join(names, ", "))
}
