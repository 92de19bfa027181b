package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"docdesigner/internal/domain"
)

func (s *Server) registerTemplateTools() {
	// ── list_templates ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List stored document templates with their document type and component count"),
		mcp.WithString("documentType", mcp.Description("Filter by document type (optional)")),
	), s.handleListTemplates)

	// ── create_template ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_template",
		mcp.WithDescription("Create an empty template for a document type and open it in the editor"),
		mcp.WithString("name", mcp.Description("Template name"), mcp.Required()),
		mcp.WithString("documentType",
			mcp.Description("Document type: quotation, invoice, delivery_order, purchase_order"),
			mcp.Required(),
		),
	), s.handleCreateTemplate)

	// ── open_template ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_template",
		mcp.WithDescription("Open a template in the editor. Returns the page size and its components."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
	), s.handleOpenTemplate)

	// ── save_template ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_template",
		mcp.WithDescription("Persist the open template. Edits are lost unless saved."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
	), s.handleSaveTemplate)

	// ── list_data_keys ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_data_keys",
		mcp.WithDescription("List the data keys components of a template can be bound to. With componentId, only keys that component accepts."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithString("componentId", mcp.Description("Narrow to keys this component accepts (optional)")),
	), s.handleListDataKeys)

	// ── list_component_kinds ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_component_kinds",
		mcp.WithDescription("List the component kinds with their default and minimum sizes and the data types they accept"),
	), s.handleListKinds)
}

type templateSummary struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	DocumentType domain.DocumentType `json:"documentType"`
	Components   int                 `json:"components"`
}

func summarizeTemplate(t domain.Template) templateSummary {
	return templateSummary{ID: t.ID, Name: t.Name, DocumentType: t.DocumentType, Components: len(t.Components)}
}

// templateView is what open_template returns: enough to plan a layout.
type templateView struct {
	templateSummary
	Page       domain.Page        `json:"page"`
	Components []domain.Component `json:"components"`
}

func (s *Server) handleListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := domain.DocumentType(getString(req.GetArguments(), "documentType", ""))
	list, err := s.templates.List()
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]templateSummary, 0, len(list))
	for _, t := range list {
		if filter != "" && t.DocumentType != filter {
			continue
		}
		out = append(out, summarizeTemplate(t))
	}
	return jsonResult(out)
}

func (s *Server) handleCreateTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	dt, err := requireString(args, "documentType")
	if err != nil {
		return nil, err
	}
	t, err := s.templates.Create(ctx, name, domain.DocumentType(dt))
	if err != nil {
		return nil, err
	}
	return s.templateView(ctx, t.ID)
}

func (s *Server) handleOpenTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "templateId")
	if err != nil {
		return nil, err
	}
	return s.templateView(ctx, id)
}

func (s *Server) templateView(ctx context.Context, id string) (*mcp.CallToolResult, error) {
	frame, err := s.editor.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.templates.Get(id)
	if err != nil {
		return nil, err
	}
	comps, err := s.editor.Components(id)
	if err != nil {
		return nil, err
	}
	t.Components = comps
	return jsonResult(templateView{
		templateSummary: summarizeTemplate(*t),
		Page:            frame.Page,
		Components:      comps,
	})
}

func (s *Server) handleSaveTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.openTemplate(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	t, err := s.editor.Save(ctx, id)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Template %s saved with %d components", t.ID, len(t.Components))), nil
}

func (s *Server) handleListDataKeys(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := s.openTemplate(ctx, args)
	if err != nil {
		return nil, err
	}
	var keys []domain.DataKey
	if compID := getString(args, "componentId", ""); compID != "" {
		keys, err = s.editor.BindableKeys(id, compID)
	} else {
		keys, err = s.editor.DataKeys(id)
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(keys)
}

func (s *Server) handleListKinds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.registry.Kinds())
}
