package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"docdesigner/internal/domain"
	"docdesigner/internal/registry"
	"docdesigner/internal/schema"
	"docdesigner/internal/service"
	"docdesigner/internal/storage"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "designer.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := log.New(io.Discard)
	reg := registry.Default()
	page := domain.DefaultPage()
	emitter := &service.MockEmitter{}
	templates := service.NewTemplateService(storage.NewTemplateStore(db), reg, page, emitter, logger)
	editor := service.NewEditorService(service.EditorDeps{
		Templates: templates,
		Registry:  reg,
		Schema:    schema.NewCatalog(),
		Page:      page,
		Emitter:   emitter,
		Logger:    logger,
	})
	s := New(Deps{
		Emitter:         emitter,
		Logger:          logger,
		Templates:       templates,
		Editor:          editor,
		Registry:        reg,
		ApprovalTimeout: 2 * time.Second,
	})
	return s, db
}

func call(t *testing.T, h toolHandler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := callErr(h, args)
	if err != nil {
		t.Fatalf("tool call %v: %v", args, err)
	}
	return res
}

func callErr(h toolHandler, args map[string]any) (*mcp.CallToolResult, error) {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return h(context.Background(), req)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatalf("no text content in %+v", res.Content)
	return ""
}

func decodeResult[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(resultText(t, res)), &v); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return v
}

func createTemplate(t *testing.T, s *Server) string {
	t.Helper()
	view := decodeResult[templateView](t, call(t, s.handleCreateTemplate, map[string]any{
		"name": "Invoice", "documentType": "invoice",
	}))
	if view.Page.Width != domain.A4Width || len(view.Components) != 0 {
		t.Fatalf("unexpected new template view %+v", view)
	}
	return view.ID
}

func addText(t *testing.T, s *Server, id string) domain.Component {
	t.Helper()
	return decodeResult[domain.Component](t, call(t, s.handleAddComponent, map[string]any{"templateId": id, "type": "text"}))
}

func TestTools_DragResizeBindSave(t *testing.T) {
	s, _ := newTestServer(t)
	id := createTemplate(t, s)

	comp := addText(t, s, id)
	if comp.Geometry != (domain.Geometry{X: 20, Y: 20, Width: 200, Height: 30}) {
		t.Fatalf("dropped text at %+v", comp.Geometry)
	}

	moved := decodeResult[gestureResult](t, call(t, s.handleMoveComponent, map[string]any{
		"templateId": id, "componentId": comp.ID, "dx": 997.0,
	}))
	if moved.Component.X != 594 || !moved.Adjusted {
		t.Errorf("drag to the right edge = %+v", moved)
	}

	back := decodeResult[gestureResult](t, call(t, s.handleMoveComponent, map[string]any{
		"templateId": id, "componentId": comp.ID, "x": 20.0,
	}))
	if back.Component.X != 20 || back.Adjusted {
		t.Errorf("move to x=20 = %+v", back)
	}

	resized := decodeResult[gestureResult](t, call(t, s.handleResizeComponent, map[string]any{
		"templateId": id, "componentId": comp.ID, "dx": 15.0, "dy": 15.0,
	}))
	if resized.Component.Width != 210 || resized.Component.Height != 40 {
		t.Errorf("se +15/+15 = %vx%v, want 210x40", resized.Component.Width, resized.Component.Height)
	}

	wide := decodeResult[gestureResult](t, call(t, s.handleResizeComponent, map[string]any{
		"templateId": id, "componentId": comp.ID, "handle": "w", "width": 230.0,
	}))
	if wide.Component.X != 0 || wide.Component.Width != 230 || wide.Component.Right() != resized.Component.Right() {
		t.Errorf("w resize to 230 = %+v, right edge should stay at %v", wide.Component.Geometry, resized.Component.Right())
	}

	bound := decodeResult[domain.Component](t, call(t, s.handleBindComponent, map[string]any{
		"templateId": id, "componentId": comp.ID, "dataKey": "customer_name",
	}))
	if bound.DataKey != "customer_name" {
		t.Errorf("dataKey = %q", bound.DataKey)
	}
	if _, err := callErr(s.handleBindComponent, map[string]any{
		"templateId": id, "componentId": comp.ID, "dataKey": "items",
	}); err == nil {
		t.Error("binding a table key to a text component should fail")
	}

	call(t, s.handleSaveTemplate, map[string]any{"templateId": id})
	list := decodeResult[[]templateSummary](t, call(t, s.handleListTemplates, map[string]any{}))
	if len(list) != 1 || list[0].Components != 1 {
		t.Errorf("list_templates = %+v", list)
	}
	none := decodeResult[[]templateSummary](t, call(t, s.handleListTemplates, map[string]any{"documentType": "quotation"}))
	if len(none) != 0 {
		t.Errorf("filter by quotation = %+v", none)
	}
}

func TestTools_ArgumentErrors(t *testing.T) {
	s, _ := newTestServer(t)
	id := createTemplate(t, s)
	comp := addText(t, s, id)

	tests := []struct {
		name string
		h    toolHandler
		args map[string]any
	}{
		{"missing template", s.handleListComponents, map[string]any{}},
		{"unknown template", s.handleListComponents, map[string]any{"templateId": "nope"}},
		{"unknown kind", s.handleAddComponent, map[string]any{"templateId": id, "type": "sticker"}},
		{"unknown component", s.handleMoveComponent, map[string]any{"templateId": id, "componentId": "nope", "dx": 10.0}},
		{"bad handle", s.handleResizeComponent, map[string]any{"templateId": id, "componentId": comp.ID, "handle": "up"}},
		{"bad document type", s.handleCreateTemplate, map[string]any{"name": "x", "documentType": "memo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := callErr(tt.h, tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestTools_AddWithGeometryAndBinding(t *testing.T) {
	s, _ := newTestServer(t)
	id := createTemplate(t, s)

	table := decodeResult[domain.Component](t, call(t, s.handleAddComponent, map[string]any{
		"templateId": id, "type": "table", "x": 20.0, "y": 300.0, "width": 900.0, "dataKey": "items",
	}))
	if table.DataKey != "items" || table.Right() > domain.A4Width || table.Y != 300 {
		t.Errorf("table = %+v", table)
	}

	keys := decodeResult[[]domain.DataKey](t, call(t, s.handleListDataKeys, map[string]any{"templateId": id, "componentId": table.ID}))
	if len(keys) != 1 || keys[0].Key != "items" {
		t.Errorf("bindable keys = %+v", keys)
	}

	items := decodeResult[[]struct {
		ID          string `json:"id"`
		Placeholder string `json:"placeholder"`
	}](t, call(t, s.handleListComponents, map[string]any{"templateId": id}))
	if len(items) != 1 || items[0].Placeholder != "{items}" {
		t.Errorf("list_components = %+v", items)
	}
}

func TestTools_AddRejectedBindingLeavesNoComponent(t *testing.T) {
	s, _ := newTestServer(t)
	id := createTemplate(t, s)
	addText(t, s, id)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"text key on a table", map[string]any{"templateId": id, "type": "table", "dataKey": "customer_name"}},
		{"unknown key", map[string]any{"templateId": id, "type": "text", "dataKey": "nope"}},
		{"bad key with geometry", map[string]any{"templateId": id, "type": "table", "x": 40.0, "dataKey": "customer_name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := callErr(s.handleAddComponent, tt.args); err == nil {
				t.Fatal("expected binding error")
			}
			comps, err := s.editor.Components(id)
			if err != nil {
				t.Fatal(err)
			}
			if len(comps) != 1 {
				t.Errorf("components = %d, want 1", len(comps))
			}
		})
	}
}

func TestDeleteComponent_ApprovedInProcess(t *testing.T) {
	s, _ := newTestServer(t)
	id := createTemplate(t, s)
	comp := addText(t, s, id)

	done := make(chan *mcp.CallToolResult, 1)
	go func() {
		res, _ := callErr(s.handleDeleteComponent, map[string]any{"templateId": id, "componentId": comp.ID})
		done <- res
	}()

	approveNext(t, s.approval, true)
	res := <-done
	if !strings.Contains(resultText(t, res), "deleted") {
		t.Errorf("result = %q", resultText(t, res))
	}
	comps, _ := s.editor.Components(id)
	if len(comps) != 0 {
		t.Errorf("component survived an approved delete: %+v", comps)
	}

	again := call(t, s.handleDeleteComponent, map[string]any{"templateId": id, "componentId": comp.ID})
	if !strings.Contains(resultText(t, again), "nothing deleted") {
		t.Errorf("second delete = %q", resultText(t, again))
	}
}

func TestDeleteComponent_Rejected(t *testing.T) {
	s, _ := newTestServer(t)
	id := createTemplate(t, s)
	comp := addText(t, s, id)

	done := make(chan *mcp.CallToolResult, 1)
	go func() {
		res, _ := callErr(s.handleDeleteComponent, map[string]any{"templateId": id, "componentId": comp.ID})
		done <- res
	}()

	approveNext(t, s.approval, false)
	if text := resultText(t, <-done); text != "Action rejected by user" {
		t.Errorf("result = %q", text)
	}
	if comps, _ := s.editor.Components(id); len(comps) != 1 {
		t.Error("a rejected delete must keep the component")
	}
}

func TestDeleteComponent_ApprovedThroughStore(t *testing.T) {
	s, db := newTestServer(t)
	store := storage.NewApprovalStore(db)
	s.approval = NewApprovalQueue(s.emitter, log.New(io.Discard),
		WithStore(store), WithTimeout(5*time.Second), WithPollInterval(10*time.Millisecond))

	id := createTemplate(t, s)
	comp := addText(t, s, id)

	done := make(chan *mcp.CallToolResult, 1)
	go func() {
		res, _ := callErr(s.handleDeleteComponent, map[string]any{"templateId": id, "componentId": comp.ID})
		done <- res
	}()

	// The console side: find the pending row and approve it.
	deadline := time.After(3 * time.Second)
	for resolved := false; !resolved; {
		select {
		case <-deadline:
			t.Fatal("approval row never appeared")
		case <-time.After(10 * time.Millisecond):
		}
		pending, err := store.ListPending()
		if err != nil {
			t.Fatalf("ListPending: %v", err)
		}
		if len(pending) == 1 {
			if pending[0].Tool != "delete_component" || !strings.Contains(pending[0].Metadata, comp.ID) {
				t.Errorf("unexpected approval row %+v", pending[0])
			}
			if err := store.Resolve(pending[0].ID, true); err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			resolved = true
		}
	}

	if text := resultText(t, <-done); !strings.Contains(text, "deleted") {
		t.Errorf("result = %q", text)
	}
	if pending, _ := store.ListPending(); len(pending) != 0 {
		t.Errorf("approval rows left behind: %+v", pending)
	}
}

// approveNext waits for one in-process request and resolves it.
func approveNext(t *testing.T, q *ApprovalQueue, approve bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if ids := q.Pending(); len(ids) == 1 {
			var ok bool
			if approve {
				ok = q.Approve(ids[0])
			} else {
				ok = q.Reject(ids[0])
			}
			if !ok {
				t.Fatal("resolving the pending request failed")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("no approval request arrived")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestApprovalQueue_Modes(t *testing.T) {
	logger := log.New(io.Discard)
	emitter := &service.MockEmitter{}

	t.Run("auto approve", func(t *testing.T) {
		q := NewApprovalQueue(emitter, logger, WithAutoApprove(true))
		if err := q.Request(context.Background(), "delete_component", "x", ""); err != nil {
			t.Errorf("auto approve: %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		q := NewApprovalQueue(emitter, logger, WithTimeout(20*time.Millisecond))
		err := q.Request(context.Background(), "delete_component", "x", "")
		if !errors.Is(err, ErrApprovalTimeout) {
			t.Errorf("expected ErrApprovalTimeout, got %v", err)
		}
		if emitter.Count("mcp:approval-dismissed") == 0 {
			t.Error("a timed-out request should be dismissed")
		}
		if len(q.Pending()) != 0 {
			t.Error("timed-out request still pending")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		q := NewApprovalQueue(emitter, logger)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := q.Request(ctx, "delete_component", "x", ""); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("resolve unknown", func(t *testing.T) {
		q := NewApprovalQueue(emitter, logger)
		if q.Approve("missing") || q.Reject("missing") {
			t.Error("resolving an unknown id should report false")
		}
	})
}

func TestRenderPreview(t *testing.T) {
	s, _ := newTestServer(t)
	id := createTemplate(t, s)
	addText(t, s, id)

	res := call(t, s.handleRenderPreview, map[string]any{"templateId": id, "scale": 0.5})
	var img *mcp.ImageContent
	for _, c := range res.Content {
		if ic, ok := c.(mcp.ImageContent); ok {
			img = &ic
		}
	}
	if img == nil {
		t.Fatalf("no image content in %+v", res.Content)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q", img.MIMEType)
	}
	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		t.Fatalf("image is not base64: %v", err)
	}
	if !strings.HasPrefix(string(data), "\x89PNG") {
		t.Error("image data is not a PNG")
	}
}

func TestResources(t *testing.T) {
	s, _ := newTestServer(t)
	id := createTemplate(t, s)
	addText(t, s, id)
	call(t, s.handleSaveTemplate, map[string]any{"templateId": id})

	var req mcp.ReadResourceRequest
	req.Params.URI = templateURIPrefix + id + componentsURISuffix
	contents, err := s.handleComponentsResource(context.Background(), req)
	if err != nil {
		t.Fatalf("read components: %v", err)
	}
	var comps []domain.Component
	if err := json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &comps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(comps) != 1 || comps[0].Type != domain.ComponentText {
		t.Errorf("components resource = %+v", comps)
	}

	req.Params.URI = templatesURI
	if contents, err = s.handleTemplatesResource(context.Background(), req); err != nil || len(contents) != 1 {
		t.Errorf("templates resource = %v, %v", contents, err)
	}
}

func TestTemplateIDFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"designer://template/abc-123/components", "abc-123"},
		{"designer://template//components", ""},
		{"designer://template/a/b/components", ""},
		{"designer://templates", ""},
		{"file:///tmp/abc/components", ""},
	}
	for _, tt := range tests {
		if got := templateIDFromURI(tt.uri); got != tt.want {
			t.Errorf("templateIDFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
