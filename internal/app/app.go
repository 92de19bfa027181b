// Package app wires configuration, storage and services together and runs
// the designer's front ends: the HTTP console and the MCP stdio server.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"docdesigner/internal/config"
	"docdesigner/internal/domain"
	"docdesigner/internal/registry"
	"docdesigner/internal/schema"
	"docdesigner/internal/service"
	"docdesigner/internal/storage"
)

// App owns the long-lived pieces of a running designer.
type App struct {
	cfg    config.Config
	logger *log.Logger

	db        *storage.DB
	approvals *storage.ApprovalStore
	registry  *registry.Registry
	catalog   *schema.Catalog
	watcher   *schema.Watcher
	emitter   service.EventEmitter

	Templates *service.TemplateService
	Editor    *service.EditorService
	Exports   *service.ExportService
	Settings  *service.SettingsService
}

// New opens the database and builds the services. Call Startup to begin
// background work and Shutdown to release everything.
func New(cfg config.Config, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	db, err := storage.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		approvals: storage.NewApprovalStore(db),
		registry:  registry.Default(),
		catalog:   schema.NewCatalog(),
		emitter:   service.LogEmitter{Logger: logger.WithPrefix("event")},
	}
	if err := a.catalog.LoadDir(cfg.SchemaDir()); err != nil {
		logger.Warn("schema files not loaded; using built-in keys", "dir", cfg.SchemaDir(), "err", err)
	}

	page := cfg.PageSpec()
	a.Settings = service.NewSettingsService(storage.NewSettingsStore(db), page)
	a.Templates = service.NewTemplateService(storage.NewTemplateStore(db), a.registry, page, a.emitter, logger.WithPrefix("templates"))
	a.Editor = service.NewEditorService(service.EditorDeps{
		Templates: a.Templates,
		Registry:  a.registry,
		Schema:    a.catalog,
		Settings:  a.Settings,
		Page:      page,
		Threshold: cfg.Editor.AlignThreshold,
		Emitter:   a.emitter,
		Logger:    logger.WithPrefix("editor"),
	})
	a.Exports = service.NewExportService(a.Templates, a.Settings, cfg.ExportDir(), a.emitter, logger.WithPrefix("export"))

	logger.Debug("app ready", "db", db.Path(), "page", fmt.Sprintf("%.0fx%.0f", page.Width, page.Height))
	return a, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config { return a.cfg }

// Registry returns the component kinds known to the app.
func (a *App) Registry() *registry.Registry { return a.registry }

// Startup starts the schema watcher and the export schedule.
func (a *App) Startup(ctx context.Context) error {
	if a.cfg.Schema.Watch {
		dir := a.cfg.SchemaDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create schema dir: %w", err)
		}
		w, err := schema.Watch(a.catalog, dir, a.logger.WithPrefix("schema"), func(dt domain.DocumentType) {
			a.emitter.Emit(ctx, service.EventSchemaReloaded, map[string]string{"documentType": string(dt)})
		})
		if err != nil {
			// Editing still works with whatever was loaded at start.
			a.logger.Warn("schema watcher disabled", "dir", dir, "err", err)
		} else {
			a.watcher = w
		}
	}
	if err := a.Exports.Start(ctx, a.cfg.Export.Schedule); err != nil {
		return fmt.Errorf("start export schedule: %w", err)
	}
	return nil
}

// Shutdown stops background work, waits for a running export, and closes
// the database.
func (a *App) Shutdown(ctx context.Context) {
	a.Exports.Stop()
	a.Exports.WaitRunning(ctx)
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Warn("close schema watcher", "err", err)
		}
		a.watcher = nil
	}
	for _, id := range a.Editor.OpenTemplates() {
		if dirty, _ := a.Editor.Dirty(id); dirty {
			a.logger.Warn("unsaved changes discarded", "template", id)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("close database", "err", err)
		}
		a.db = nil
	}
}
