package app

import (
	mcpserver "docdesigner/internal/mcp"
)

// MCPServer builds the MCP server over the app's services. Approvals go
// through the shared mcp_approvals table so a console running in another
// process (docdesigner serve) can answer them.
func (a *App) MCPServer() *mcpserver.Server {
	return mcpserver.New(mcpserver.Deps{
		Emitter:         a.emitter,
		Logger:          a.logger.WithPrefix("mcp"),
		Templates:       a.Templates,
		Editor:          a.Editor,
		Registry:        a.registry,
		Approvals:       a.approvals,
		AutoApprove:     a.cfg.MCP.AutoApprove,
		ApprovalTimeout: a.cfg.MCP.ApprovalTimeout.Duration,
	})
}

// ServeMCP runs the MCP server on stdin/stdout until the client disconnects.
// Logs must go to stderr: stdout carries the protocol.
func (a *App) ServeMCP() error {
	return a.MCPServer().ServeStdio()
}
