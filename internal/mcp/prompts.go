package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("design_document",
		mcp.WithPromptDescription("Guide through laying out a business document template on an A4 page"),
		mcp.WithArgument("documentType",
			mcp.ArgumentDescription("quotation, invoice, delivery_order or purchase_order"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("name",
			mcp.ArgumentDescription("Name for the new template"),
			mcp.RequiredArgument(),
		),
	), s.handleDesignDocumentPrompt)
}

func (s *Server) handleDesignDocumentPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	docType := req.Params.Arguments["documentType"]
	name := req.Params.Arguments["name"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Design a %s template", docType),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Design a %s template named "%s". Follow these steps:

1. Use create_template with documentType "%s" and note the page size it returns
2. Call list_data_keys to see which fields the document provides
3. Add a label for the document title at the top, then the header fields (document number, date, customer)
4. Add a table bound to "items" across the middle of the page
5. Put subtotal, tax and total as right-aligned number components under the table
6. Add a signature component near the bottom
7. Bind every field with bind_component; only keys offered by list_data_keys for that component are accepted
8. Check the layout with render_preview, adjust with move_component and resize_component, then save_template

Positions snap to a 10px grid and components cannot leave the page. Keep a 20px margin from the page edges.`, docType, name, docType),
				},
			},
		},
	}, nil
}
