package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	templatesURI         = "designer://templates"
	templateURIPrefix    = "designer://template/"
	componentsURISuffix  = "/components"
	componentsURIPattern = templateURIPrefix + "{templateId}" + componentsURISuffix
)

func (s *Server) registerResources() {
	// ── designer://templates ───────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		templatesURI,
		"All Templates",
		mcp.WithMIMEType("application/json"),
	), s.handleTemplatesResource)

	// ── designer://template/{templateId}/components ───
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			componentsURIPattern,
			"Components of a Template",
		),
		s.handleComponentsResource,
	)
}

func (s *Server) handleTemplatesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.templates.List()
	if err != nil {
		return nil, err
	}
	summaries := make([]templateSummary, len(list))
	for i, t := range list {
		summaries[i] = summarizeTemplate(t)
	}
	return jsonContents(templatesURI, summaries)
}

// handleComponentsResource serves the stored components; unsaved editor
// changes are only visible through list_components.
func (s *Server) handleComponentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := templateIDFromURI(uri)
	if id == "" {
		return nil, fmt.Errorf("could not extract templateId from URI: %s", uri)
	}
	t, err := s.templates.Get(id)
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, t.Components)
}

// templateIDFromURI extracts the id from "designer://template/{id}/components".
func templateIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, templateURIPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, componentsURISuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
