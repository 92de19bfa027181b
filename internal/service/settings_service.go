package service

import (
	"fmt"
	"strconv"
	"time"

	"docdesigner/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Settings: editor display flags and export bookkeeping
// ─────────────────────────────────────────────────────────────
//
// Stored as key/value rows in app_settings. Values saved here override the
// config file, so a toggle made in the editor survives a restart.

// KeyValueStore is the storage the settings live in.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// EditorSettings are the user-toggleable display flags of the canvas.
type EditorSettings struct {
	ShowGrid  bool `json:"showGrid"`
	ShowRuler bool `json:"showRuler"`
}

const (
	settingShowGrid   = "editor.show_grid"
	settingShowRuler  = "editor.show_ruler"
	settingLastExport = "export.last_run"
)

type SettingsService struct {
	store    KeyValueStore
	defaults EditorSettings
}

// NewSettingsService uses page's flags as the defaults.
func NewSettingsService(store KeyValueStore, page domain.Page) *SettingsService {
	return &SettingsService{
		store:    store,
		defaults: EditorSettings{ShowGrid: page.ShowGrid, ShowRuler: page.ShowRuler},
	}
}

// EditorSettings returns the saved flags, falling back to the defaults for
// anything unset or unreadable.
func (s *SettingsService) EditorSettings() EditorSettings {
	out := s.defaults
	if s.store == nil {
		return out
	}
	out.ShowGrid = s.readBool(settingShowGrid, out.ShowGrid)
	out.ShowRuler = s.readBool(settingShowRuler, out.ShowRuler)
	return out
}

func (s *SettingsService) SaveEditorSettings(v EditorSettings) error {
	if s.store == nil {
		return fmt.Errorf("settings: no store")
	}
	if err := s.store.Set(settingShowGrid, strconv.FormatBool(v.ShowGrid)); err != nil {
		return err
	}
	return s.store.Set(settingShowRuler, strconv.FormatBool(v.ShowRuler))
}

// ApplyTo returns page with the saved display flags.
func (s *SettingsService) ApplyTo(page domain.Page) domain.Page {
	v := s.EditorSettings()
	page.ShowGrid = v.ShowGrid
	page.ShowRuler = v.ShowRuler
	return page
}

func (s *SettingsService) RecordExport(at time.Time) error {
	if s.store == nil {
		return nil
	}
	return s.store.Set(settingLastExport, at.UTC().Format(time.RFC3339))
}

// LastExport returns when the last export ran, if ever.
func (s *SettingsService) LastExport() (time.Time, bool) {
	if s.store == nil {
		return time.Time{}, false
	}
	v, ok, err := s.store.Get(settingLastExport)
	if err != nil || !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (s *SettingsService) readBool(key string, fallback bool) bool {
	v, ok, err := s.store.Get(key)
	if err != nil || !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
