package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"docdesigner/internal/domain"
	"docdesigner/internal/geometry"
	"docdesigner/internal/registry"
)

var (
	ErrInvalidName         = errors.New("template name is required")
	ErrInvalidDocumentType = errors.New("unknown document type")
	ErrDuplicateComponent  = errors.New("duplicate component id")
	ErrMalformedTemplate   = errors.New("malformed template file")
)

// ─────────────────────────────────────────────────────────────
// Template Service: template records and their JSON form
// ─────────────────────────────────────────────────────────────

// TemplateService manages stored templates. It checks every template it
// writes: a known document type, registered component kinds, unique
// component ids and geometry that fits the page.
type TemplateService struct {
	store   domain.TemplateStore
	reg     *registry.Registry
	page    domain.Page
	emitter EventEmitter
	logger  *log.Logger
}

func NewTemplateService(store domain.TemplateStore, reg *registry.Registry, page domain.Page, emitter EventEmitter, logger *log.Logger) *TemplateService {
	return &TemplateService{store: store, reg: reg, page: page, emitter: emitter, logger: logger}
}

// Create stores a new, empty template.
func (s *TemplateService) Create(ctx context.Context, name string, dt domain.DocumentType) (*domain.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if !dt.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocumentType, dt)
	}
	t := &domain.Template{
		ID:           uuid.New().String(),
		Name:         name,
		DocumentType: dt,
		Components:   []domain.Component{},
	}
	if err := s.store.CreateTemplate(t); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	s.logger.Info("template created", "id", t.ID, "name", t.Name, "documentType", dt)
	s.emitter.Emit(ctx, EventTemplateCreated, map[string]string{"templateId": t.ID})
	return t, nil
}

func (s *TemplateService) Get(id string) (*domain.Template, error) {
	return s.store.GetTemplate(id)
}

func (s *TemplateService) List() ([]domain.Template, error) {
	return s.store.ListTemplates()
}

func (s *TemplateService) Rename(ctx context.Context, id, name string) (*domain.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	t, err := s.store.GetTemplate(id)
	if err != nil {
		return nil, err
	}
	t.Name = name
	if err := s.store.UpdateTemplate(t); err != nil {
		return nil, fmt.Errorf("rename template: %w", err)
	}
	return t, nil
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTemplate(id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	s.logger.Info("template deleted", "id", id)
	s.emitter.Emit(ctx, EventTemplateDeleted, map[string]string{"templateId": id})
	return nil
}

// Save validates t and writes it over the stored record with the same id.
func (s *TemplateService) Save(ctx context.Context, t *domain.Template) error {
	if err := s.validate(t); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	if err := s.store.UpdateTemplate(t); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	s.logger.Debug("template saved", "id", t.ID, "components", len(t.Components))
	return nil
}

// ImportJSON reads a template record ({id, name, documentType, config}) and
// stores it under a fresh id. Component ids and order are kept.
func (s *TemplateService) ImportJSON(ctx context.Context, r io.Reader) (*domain.Template, error) {
	var rec domain.TemplateRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("import template: %w: %v", ErrMalformedTemplate, err)
	}
	t := rec.Template()
	t.ID = uuid.New().String()
	t.Name = strings.TrimSpace(t.Name)
	if t.Components == nil {
		t.Components = []domain.Component{}
	}
	if err := s.validate(&t); err != nil {
		return nil, fmt.Errorf("import template: %w", err)
	}
	if err := s.store.CreateTemplate(&t); err != nil {
		return nil, fmt.Errorf("import template: %w", err)
	}
	s.logger.Info("template imported", "id", t.ID, "name", t.Name, "components", len(t.Components))
	s.emitter.Emit(ctx, EventTemplateCreated, map[string]string{"templateId": t.ID})
	return &t, nil
}

// ExportJSON writes the stored template with id as an indented record.
func (s *TemplateService) ExportJSON(id string, w io.Writer) error {
	t, err := s.store.GetTemplate(id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Record()); err != nil {
		return fmt.Errorf("export template %s: %w", id, err)
	}
	return nil
}

// validate fits each component to the page in place and rejects what
// cannot be fitted.
func (s *TemplateService) validate(t *domain.Template) error {
	if t.Name == "" {
		return ErrInvalidName
	}
	if !t.DocumentType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDocumentType, t.DocumentType)
	}
	seen := make(map[string]bool, len(t.Components))
	for i := range t.Components {
		c := &t.Components[i]
		if _, err := s.reg.Lookup(c.Type); err != nil {
			return fmt.Errorf("component %q: %w", c.ID, err)
		}
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateComponent, c.ID)
		}
		seen[c.ID] = true
		minW, minH := s.reg.MinSize(c.Type)
		if !geometry.InBounds(c.Geometry, s.page, minW, minH) {
			s.logger.Warn("component refitted to page", "template", t.ID, "component", c.ID)
			c.Geometry = geometry.Fit(c.Geometry, s.page, minW, minH)
		}
	}
	return nil
}
