package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"docdesigner/internal/registry"
	"docdesigner/internal/service"
)

// Server is the MCP server for the template designer. It exposes tools,
// resources and prompts so AI agents can lay out document templates.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	logger   *log.Logger

	templates *service.TemplateService
	editor    *service.EditorService
	registry  *registry.Registry
}

// Deps holds everything the MCP server needs from the app layer.
type Deps struct {
	Emitter   EventEmitter
	Logger    *log.Logger
	Templates *service.TemplateService
	Editor    *service.EditorService
	Registry  *registry.Registry

	// Approvals, when set, routes approvals through the shared table so a
	// console in another process can answer them.
	Approvals       ApprovalStore
	AutoApprove     bool
	ApprovalTimeout time.Duration
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	opts := []ApprovalOption{
		WithAutoApprove(deps.AutoApprove),
		WithTimeout(deps.ApprovalTimeout),
	}
	if deps.Approvals != nil {
		opts = append(opts, WithStore(deps.Approvals))
	}
	s := &Server{
		emitter:   deps.Emitter,
		approval:  NewApprovalQueue(deps.Emitter, logger.WithPrefix("approval"), opts...),
		logger:    logger,
		templates: deps.Templates,
		editor:    deps.Editor,
		registry:  deps.Registry,
	}

	s.mcp = server.NewMCPServer(
		"docdesigner-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerTemplateTools()
	s.registerComponentTools()
	s.registerPreviewTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// MCPServer exposes the underlying server, mainly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) bool {
	return s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) bool {
	return s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// openTemplate makes sure the template named by templateId is open in the
// editor and returns its id.
func (s *Server) openTemplate(ctx context.Context, args map[string]any) (string, error) {
	id, err := requireString(args, "templateId")
	if err != nil {
		return "", err
	}
	if _, err := s.editor.Open(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}
