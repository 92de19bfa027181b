package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"docdesigner/internal/api"
)

// ── HTTP console ───────────────────────────────────────────
// Serves the JSON API the browser console talks to, including the approval
// endpoints that answer destructive MCP requests.

const shutdownGrace = 5 * time.Second

// Handler builds the console's HTTP handler.
func (a *App) Handler() http.Handler {
	return api.NewHandler(api.Deps{
		Templates: a.Templates,
		Editor:    a.Editor,
		Exports:   a.Exports,
		Settings:  a.Settings,
		Registry:  a.registry,
		Schema:    a.catalog,
		Approvals: a.approvals,
		Logger:    a.logger.WithPrefix("http"),
	}).Routes()
}

// ServeHTTP listens on the configured address until ctx is done, then
// drains in-flight requests.
func (a *App) ServeHTTP(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.HTTP.Addr, err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http console listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.logger.Info("http console stopped")
	return nil
}
