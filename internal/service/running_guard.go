package service

import (
	"context"
	"sync"
)

// ExportedRunGuard is an exported alias so _test packages can test the guard.
type ExportedRunGuard = runGuard

// ─────────────────────────────────────────────────────────────
// runGuard: one export run at a time
// ─────────────────────────────────────────────────────────────

// runGuard keeps a scheduled export and a manual export from overlapping,
// and lets Stop wait for the exports in flight.
type runGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock marks name as running. It reports false if a run is in progress.
func (g *runGuard) TryLock(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, busy := g.running[name]; busy {
		return false
	}
	g.running[name] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock ends a run started by a successful TryLock.
func (g *runGuard) Unlock(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[name]; !ok {
		return
	}
	delete(g.running, name)
	g.wg.Done()
}

// Running reports whether name is in progress.
func (g *runGuard) Running(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.running[name]
	return busy
}

// WaitAll blocks until every run finishes or ctx is done.
func (g *runGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
