package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	page := cfg.PageSpec()
	if page.Width != 794 || page.Height != 1123 || page.GridSize != 10 || !page.ShowGrid || !page.ShowRuler {
		t.Errorf("unexpected default page %+v", page)
	}
	if cfg.Editor.AlignThreshold != 5 {
		t.Errorf("threshold = %v, want 5", cfg.Editor.AlignThreshold)
	}
	if cfg.Export.Schedule != "" {
		t.Errorf("scheduled export should be disabled by default, got %q", cfg.Export.Schedule)
	}
	if cfg.HTTP.Addr != ":8420" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
data_dir = "` + filepath.ToSlash(dir) + `"

[page]
grid_size = 8
show_ruler = false

[export]
schedule = "@every 1h"

[mcp]
approval_timeout = "30s"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Page.GridSize != 8 || cfg.Page.ShowRuler || cfg.Page.Width != 794 {
		t.Errorf("page not merged over defaults: %+v", cfg.Page)
	}
	if cfg.Export.Schedule != "@every 1h" {
		t.Errorf("schedule = %q", cfg.Export.Schedule)
	}
	if cfg.MCP.ApprovalTimeout.Duration != 30*time.Second {
		t.Errorf("approval timeout = %v", cfg.MCP.ApprovalTimeout)
	}
	if cfg.ExportDir() != filepath.Join(cfg.DataDir, "exports") {
		t.Errorf("export dir = %q", cfg.ExportDir())
	}
	if cfg.DBPath() != filepath.Join(cfg.DataDir, "designer.db") {
		t.Errorf("db path = %q", cfg.DBPath())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad toml", "[page\n"},
		{"tiny page", "[page]\nwidth = 5\n"},
		{"negative grid", "[page]\ngrid_size = -1\n"},
		{"bad duration", "[mcp]\napproval_timeout = \"soon\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
