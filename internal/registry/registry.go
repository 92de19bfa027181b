package registry

import (
	"errors"
	"fmt"
	"sync"

	"docdesigner/internal/domain"
	"docdesigner/internal/geometry"
)

// ─────────────────────────────────────────────────────────────
// Component Type Registry: defaults and bindings per kind
// ─────────────────────────────────────────────────────────────

var ErrUnknownType = errors.New("unknown component type")

// Kind describes one component kind: its palette label, default and minimum
// size, default config, and the data-key types it can be bound to.
type Kind struct {
	Type          domain.ComponentType          `json:"type"`
	Label         string                        `json:"label"`
	DefaultWidth  float64                       `json:"defaultWidth"`
	DefaultHeight float64                       `json:"defaultHeight"`
	MinWidth      float64                       `json:"minWidth"`
	MinHeight     float64                       `json:"minHeight"`
	Accepts       []domain.DataKeyType          `json:"accepts"`
	DefaultConfig func() domain.ComponentConfig `json:"-"`
}

// Registry maps component types to their Kind. Adding a component kind is a
// Register call; nothing else branches on the type string.
type Registry struct {
	mu    sync.RWMutex
	kinds map[domain.ComponentType]Kind
	order []domain.ComponentType
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{kinds: make(map[domain.ComponentType]Kind)}
}

// Register adds a kind. Panics on duplicate registration.
func (r *Registry) Register(k Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[k.Type]; exists {
		panic(fmt.Sprintf("component registry: duplicate registration for type %q", k.Type))
	}
	if k.MinWidth < geometry.MinWidth {
		k.MinWidth = geometry.MinWidth
	}
	if k.MinHeight < geometry.MinHeight {
		k.MinHeight = geometry.MinHeight
	}
	r.kinds[k.Type] = k
	r.order = append(r.order, k.Type)
}

// Lookup returns the kind registered for t.
func (r *Registry) Lookup(t domain.ComponentType) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[t]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return k, nil
}

// Kinds returns all registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.kinds[t])
	}
	return out
}

// MinSize returns the minimum width and height for t, falling back to the
// global minimum for unregistered types.
func (r *Registry) MinSize(t domain.ComponentType) (float64, float64) {
	k, err := r.Lookup(t)
	if err != nil {
		return geometry.MinWidth, geometry.MinHeight
	}
	return k.MinWidth, k.MinHeight
}

// Defaults returns a fresh default size and config for t.
func (r *Registry) Defaults(t domain.ComponentType) (w, h float64, cfg domain.ComponentConfig, err error) {
	k, err := r.Lookup(t)
	if err != nil {
		return 0, 0, domain.ComponentConfig{}, err
	}
	if k.DefaultConfig != nil {
		cfg = k.DefaultConfig()
	}
	return k.DefaultWidth, k.DefaultHeight, cfg, nil
}

// Bindable filters keys down to the ones a component of type t can be bound
// to. This only shapes the choice list; nothing stops another key from being set.
func (r *Registry) Bindable(t domain.ComponentType, keys []domain.DataKey) []domain.DataKey {
	k, err := r.Lookup(t)
	if err != nil {
		return nil
	}
	accepted := make(map[domain.DataKeyType]bool, len(k.Accepts))
	for _, a := range k.Accepts {
		accepted[a] = true
	}
	var out []domain.DataKey
	for _, key := range keys {
		if accepted[key.Type] {
			out = append(out, key)
		}
	}
	return out
}
