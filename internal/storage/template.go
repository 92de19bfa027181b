package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docdesigner/internal/domain"
)

// TemplateStore implements domain.TemplateStore using SQLite. Components are
// kept as the JSON body {"components":[...]} in config_json, in order.
type TemplateStore struct {
	db *DB
}

func NewTemplateStore(db *DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `id, name, document_type, config_json, created_at, updated_at`

func (s *TemplateStore) CreateTemplate(t *domain.Template) error {
	cfg, err := encodeConfig(t.Components)
	if err != nil {
		return err
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err = s.db.Conn().Exec(
		`INSERT INTO templates (`+templateColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.DocumentType, cfg, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (s *TemplateStore) GetTemplate(id string) (*domain.Template, error) {
	t, err := scanTemplate(s.db.Conn().QueryRow(
		`SELECT `+templateColumns+` FROM templates WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *TemplateStore) ListTemplates() ([]domain.Template, error) {
	rows, err := s.db.Conn().Query(`SELECT ` + templateColumns + ` FROM templates ORDER BY updated_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *TemplateStore) UpdateTemplate(t *domain.Template) error {
	cfg, err := encodeConfig(t.Components)
	if err != nil {
		return err
	}
	t.UpdatedAt = time.Now()
	res, err := s.db.Conn().Exec(
		`UPDATE templates SET name = ?, document_type = ?, config_json = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.DocumentType, cfg, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return requireRow(res, "update template", t.ID)
}

func (s *TemplateStore) DeleteTemplate(id string) error {
	res, err := s.db.Conn().Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireRow(res, "delete template", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(r rowScanner) (*domain.Template, error) {
	var (
		t   domain.Template
		cfg string
	)
	if err := r.Scan(&t.ID, &t.Name, &t.DocumentType, &cfg, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	var body domain.TemplateConfig
	if err := json.Unmarshal([]byte(cfg), &body); err != nil {
		return nil, fmt.Errorf("decode template %s config: %w", t.ID, err)
	}
	t.Components = body.Components
	if t.Components == nil {
		t.Components = []domain.Component{}
	}
	return &t, nil
}

func encodeConfig(components []domain.Component) (string, error) {
	if components == nil {
		components = []domain.Component{}
	}
	data, err := json.Marshal(domain.TemplateConfig{Components: components})
	if err != nil {
		return "", fmt.Errorf("encode template config: %w", err)
	}
	return string(data), nil
}

func requireRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}
