// Package cli implements the docdesigner command-line interface.
//
// # Commands
//
//   - serve: run the HTTP console (editor API, settings, approvals)
//   - mcp: run the MCP server on stdio for AI assistants
//   - templates: list stored templates
//   - kinds: list the component kinds the palette offers
//   - render: write a PNG preview of a template
//   - import / export: move template files in and out of the store
//
// All commands accept --config to point at a TOML file and --verbose (-v)
// for debug logging. Logs always go to stderr so stdout stays usable for
// command output and the MCP protocol.
package cli

import (
	"context"
	"io"
	"os"
)

// Execute runs the CLI with os.Args against ctx.
func Execute(ctx context.Context) error {
	root := newRootCmd(os.Stdout, os.Stderr)
	return root.ExecuteContext(ctx)
}

// executeArgs runs the CLI with explicit args and writers.
func executeArgs(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := newRootCmd(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
