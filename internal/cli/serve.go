package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"docdesigner/internal/app"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOpts) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			a, err := app.New(cfg, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			return runUntilDone(ctx, a, func() error { return a.ServeHTTP(ctx) })
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func newMCPCmd(opts *rootOpts) *cobra.Command {
	var autoApprove bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Run the MCP server on stdin/stdout. Destructive tools wait for approval
through the console started with "docdesigner serve" on the same data
directory, unless --auto-approve is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if autoApprove {
				cfg.MCP.AutoApprove = true
			}
			a, err := app.New(cfg, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			return runUntilDone(ctx, a, a.ServeMCP)
		},
	}
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "skip approval of destructive tools")
	return cmd
}

// runUntilDone starts background work, runs serve, and shuts down when
// serve returns.
func runUntilDone(ctx context.Context, a *app.App, serve func() error) error {
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		a.Shutdown(sctx)
	}()
	if err := a.Startup(ctx); err != nil {
		return err
	}
	err := serve()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
