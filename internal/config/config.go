// Package config loads the designer configuration from a TOML file. Every
// field has a default, so a missing file or a partial file is valid.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"docdesigner/internal/align"
	"docdesigner/internal/domain"
)

type Config struct {
	DataDir string       `toml:"data_dir"`
	Page    PageConfig   `toml:"page"`
	Editor  EditorConfig `toml:"editor"`
	Schema  SchemaConfig `toml:"schema"`
	Export  ExportConfig `toml:"export"`
	HTTP    HTTPConfig   `toml:"http"`
	MCP     MCPConfig    `toml:"mcp"`
}

type PageConfig struct {
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	GridSize  float64 `toml:"grid_size"`
	ShowGrid  bool    `toml:"show_grid"`
	ShowRuler bool    `toml:"show_ruler"`
}

type EditorConfig struct {
	AlignThreshold float64 `toml:"align_threshold"`
}

type SchemaConfig struct {
	// Dir holds <documentType>.toml overrides. Empty means <data_dir>/schemas.
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type ExportConfig struct {
	// Schedule is a cron expression; empty disables scheduled exports.
	Schedule string `toml:"schedule"`
	// Dir is the export target. Empty means <data_dir>/exports.
	Dir string `toml:"dir"`
}

type HTTPConfig struct {
	Addr string `toml:"addr"`
}

type MCPConfig struct {
	// AutoApprove skips the confirmation step for destructive tools.
	AutoApprove     bool     `toml:"auto_approve"`
	ApprovalTimeout Duration `toml:"approval_timeout"`
}

// Duration is a time.Duration written as a string ("90s", "2m") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		Page: PageConfig{
			Width:     domain.A4Width,
			Height:    domain.A4Height,
			GridSize:  domain.DefaultGridSize,
			ShowGrid:  true,
			ShowRuler: true,
		},
		Editor: EditorConfig{AlignThreshold: align.DefaultThreshold},
		Schema: SchemaConfig{Watch: true},
		HTTP:   HTTPConfig{Addr: ":8420"},
		MCP:    MCPConfig{ApprovalTimeout: Duration{120 * time.Second}},
	}
}

// DefaultPath is ~/.config/docdesigner/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "docdesigner", "config.toml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docdesigner"
	}
	return filepath.Join(home, ".local", "share", "docdesigner")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the canvas cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Page.Width < 20 || c.Page.Height < 10:
		return fmt.Errorf("page size %.0fx%.0f is smaller than one component", c.Page.Width, c.Page.Height)
	case c.Page.GridSize < 0:
		return fmt.Errorf("grid_size must not be negative")
	case c.Editor.AlignThreshold < 0:
		return fmt.Errorf("align_threshold must not be negative")
	case c.DataDir == "":
		return fmt.Errorf("data_dir is required")
	}
	return nil
}

// PageSpec returns the page every canvas is created with.
func (c Config) PageSpec() domain.Page {
	return domain.Page{
		Width:     c.Page.Width,
		Height:    c.Page.Height,
		GridSize:  c.Page.GridSize,
		ShowGrid:  c.Page.ShowGrid,
		ShowRuler: c.Page.ShowRuler,
	}
}

func (c Config) DBPath() string { return filepath.Join(c.DataDir, "designer.db") }

func (c Config) SchemaDir() string {
	if c.Schema.Dir != "" {
		return c.Schema.Dir
	}
	return filepath.Join(c.DataDir, "schemas")
}

func (c Config) ExportDir() string {
	if c.Export.Dir != "" {
		return c.Export.Dir
	}
	return filepath.Join(c.DataDir, "exports")
}
