package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

var ErrExportRunning = errors.New("an export is already running")

const exportJob = "export"

// ─────────────────────────────────────────────────────────────
// Export Service: scheduled JSON snapshots of every template
// ─────────────────────────────────────────────────────────────

// ExportService writes every stored template to <dir>/<id>.json, on demand or
// on a cron schedule. Scheduled and manual runs never overlap.
type ExportService struct {
	templates *TemplateService
	settings  *SettingsService
	dir       string
	emitter   EventEmitter
	logger    *log.Logger
	guard     runGuard

	mu        sync.Mutex
	cronSched *cron.Cron
}

func NewExportService(templates *TemplateService, settings *SettingsService, dir string, emitter EventEmitter, logger *log.Logger) *ExportService {
	return &ExportService{
		templates: templates,
		settings:  settings,
		dir:       dir,
		emitter:   emitter,
		logger:    logger,
	}
}

// ExportResult summarises one export run.
type ExportResult struct {
	Dir      string        `json:"dir"`
	Files    []string      `json:"files"`
	Duration time.Duration `json:"duration"`
}

// Start schedules exports with a standard five-field cron expression or a
// descriptor such as "@every 1h". An empty schedule disables scheduling.
func (s *ExportService) Start(ctx context.Context, schedule string) error {
	s.Stop()
	if schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		res, err := s.RunNow(ctx)
		switch {
		case errors.Is(err, ErrExportRunning):
			s.logger.Debug("scheduled export skipped", "reason", err)
		case err != nil:
			s.logger.Error("scheduled export failed", "err", err)
		default:
			s.logger.Info("scheduled export done", "files", len(res.Files), "dir", res.Dir)
		}
	})
	if err != nil {
		return fmt.Errorf("export schedule %q: %w", schedule, err)
	}
	c.Start()

	s.mu.Lock()
	s.cronSched = c
	s.mu.Unlock()
	s.logger.Info("export scheduled", "schedule", schedule, "dir", s.dir)
	return nil
}

// RunNow exports every template into the export directory.
func (s *ExportService) RunNow(ctx context.Context) (*ExportResult, error) {
	return s.ExportTo(ctx, s.dir)
}

// ExportTo exports every template into dir.
func (s *ExportService) ExportTo(ctx context.Context, dir string) (*ExportResult, error) {
	if !s.guard.TryLock(exportJob) {
		return nil, ErrExportRunning
	}
	defer s.guard.Unlock(exportJob)

	start := time.Now()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	templates, err := s.templates.List()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	res := &ExportResult{Dir: dir}
	for _, t := range templates {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path := filepath.Join(dir, t.ID+".json")
		if err := s.writeFile(t.ID, path); err != nil {
			return res, err
		}
		res.Files = append(res.Files, path)
	}
	res.Duration = time.Since(start)

	if s.settings != nil {
		if err := s.settings.RecordExport(start); err != nil {
			s.logger.Warn("could not record export time", "err", err)
		}
	}
	s.emitter.Emit(ctx, EventExportCompleted, res)
	return res, nil
}

// writeFile writes through a temp file so a reader never sees half a template.
func (s *ExportService) writeFile(id, path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("export %s: %w", id, err)
	}
	if err := s.templates.ExportJSON(id, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("export %s: %w", id, err)
	}
	return os.Rename(tmp, path)
}

// Running reports whether an export is in progress.
func (s *ExportService) Running() bool {
	return s.guard.Running(exportJob)
}

// WaitRunning blocks until a running export finishes or ctx is done.
func (s *ExportService) WaitRunning(ctx context.Context) {
	s.guard.WaitAll(ctx)
}

// Stop removes the schedule. It is safe to call more than once.
func (s *ExportService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
