package service_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"docdesigner/internal/domain"
	"docdesigner/internal/registry"
	"docdesigner/internal/schema"
	"docdesigner/internal/service"
	"docdesigner/internal/storage"
)

// memStore is an in-memory domain.TemplateStore.
type memStore struct {
	mu         sync.Mutex
	items      map[string]domain.Template
	order      []string
	failUpdate error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]domain.Template)}
}

func cloneTemplate(t domain.Template) domain.Template {
	t.Components = append([]domain.Component{}, t.Components...)
	return t
}

func (m *memStore) CreateTemplate(t *domain.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[t.ID]; ok {
		return fmt.Errorf("create template %s: exists", t.ID)
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.items[t.ID] = cloneTemplate(*t)
	m.order = append(m.order, t.ID)
	return nil
}

func (m *memStore) GetTemplate(id string) (*domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("get template %s: %w", id, storage.ErrNotFound)
	}
	c := cloneTemplate(t)
	return &c, nil
}

func (m *memStore) ListTemplates() ([]domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Template
	for _, id := range m.order {
		out = append(out, cloneTemplate(m.items[id]))
	}
	return out, nil
}

func (m *memStore) UpdateTemplate(t *domain.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return m.failUpdate
	}
	if _, ok := m.items[t.ID]; !ok {
		return fmt.Errorf("update template %s: %w", t.ID, storage.ErrNotFound)
	}
	t.UpdatedAt = time.Now()
	m.items[t.ID] = cloneTemplate(*t)
	return nil
}

func (m *memStore) DeleteTemplate(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("delete template %s: %w", id, storage.ErrNotFound)
	}
	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// memKV is an in-memory service.KeyValueStore.
type memKV struct {
	mu   sync.Mutex
	vals map[string]string
}

func (m *memKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vals == nil {
		m.vals = make(map[string]string)
	}
	m.vals[key] = value
	return nil
}

type fixture struct {
	store     *memStore
	emitter   *service.MockEmitter
	templates *service.TemplateService
	editor    *service.EditorService
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newFixture() *fixture {
	store := newMemStore()
	emitter := &service.MockEmitter{}
	reg := registry.Default()
	page := domain.DefaultPage()
	templates := service.NewTemplateService(store, reg, page, emitter, quietLogger())
	editor := service.NewEditorService(service.EditorDeps{
		Templates: templates,
		Registry:  reg,
		Schema:    schema.NewCatalog(),
		Page:      page,
		Emitter:   emitter,
		Logger:    quietLogger(),
	})
	return &fixture{store: store, emitter: emitter, templates: templates, editor: editor}
}

func (f *fixture) openNew(name string) string {
	t, err := f.templates.Create(context.Background(), name, domain.DocumentInvoice)
	if err != nil {
		panic(err)
	}
	if _, err := f.editor.Open(context.Background(), t.ID); err != nil {
		panic(err)
	}
	return t.ID
}
