package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"docdesigner/internal/render"
)

func (s *Server) registerPreviewTools() {
	// ── render_preview ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("render_preview",
		mcp.WithDescription("Render the open template as a PNG image: component boxes, placeholders, grid and any alignment guides"),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithNumber("scale", mcp.Description("Scale factor (default 0.75)")),
		mcp.WithBoolean("hideGrid", mcp.Description("Leave out grid lines")),
	), s.handleRenderPreview)
}

func (s *Server) handleRenderPreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.openTemplate(ctx, args)
	if err != nil {
		return nil, err
	}
	frame, err := s.editor.Frame(id)
	if err != nil {
		return nil, err
	}
	hideGrid, _ := args["hideGrid"].(bool)

	var buf bytes.Buffer
	opts := render.Options{Scale: getFloat(args, "scale", 0.75), HideGrid: hideGrid}
	if err := render.PNG(&buf, frame, opts); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewImageContent(base64.StdEncoding.EncodeToString(buf.Bytes()), "image/png"),
			mcp.TextContent{Type: "text", Text: fmt.Sprintf("%d components on a %.0fx%.0f page", len(frame.Items), frame.Page.Width, frame.Page.Height)},
		},
	}, nil
}
