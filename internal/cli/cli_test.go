package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"docdesigner/internal/domain"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("x") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("x") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("x") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("expected default logger")
	}
	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext should return the attached logger")
	}
}

// run executes the CLI against a fresh data directory and a config path
// that does not exist, so defaults apply.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	base := []string{"--config", filepath.Join(dataDir, "missing.toml"), "--data-dir", dataDir}
	err := executeArgs(context.Background(), append(base, args...), &out, &errOut)
	return out.String(), err
}

func writeTemplateFile(t *testing.T, dir, name string) string {
	t.Helper()
	rec := domain.TemplateRecord{
		ID:           "ignored",
		Name:         name,
		DocumentType: domain.DocumentInvoice,
		Config: domain.TemplateConfig{Components: []domain.Component{{
			ID:       "c1",
			Type:     domain.ComponentText,
			Geometry: domain.Geometry{X: 20, Y: 20, Width: 200, Height: 30},
		}}},
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportListRenderExport(t *testing.T) {
	dataDir := t.TempDir()
	src := writeTemplateFile(t, t.TempDir(), "Invoice Basic")

	out, err := run(t, dataDir, "import", src)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Invoice Basic") {
		t.Errorf("import output = %q", out)
	}

	out, err = run(t, dataDir, "templates")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	if !strings.Contains(out, "Invoice Basic") || !strings.Contains(out, "invoice") {
		t.Errorf("templates output = %q", out)
	}

	out, err = run(t, dataDir, "templates", "--type", "quotation")
	if err != nil {
		t.Fatalf("templates --type: %v", err)
	}
	if !strings.Contains(out, "no templates") {
		t.Errorf("filtered output = %q", out)
	}

	// The imported template has a fresh id; read it back from an export.
	exportDir := t.TempDir()
	if _, err := run(t, dataDir, "export", exportDir); err != nil {
		t.Fatalf("export: %v", err)
	}
	files, err := filepath.Glob(filepath.Join(exportDir, "*.json"))
	if err != nil || len(files) != 1 {
		t.Fatalf("exported files = %v, %v", files, err)
	}
	id := strings.TrimSuffix(filepath.Base(files[0]), ".json")

	png := filepath.Join(t.TempDir(), "preview.png")
	if _, err := run(t, dataDir, "render", id, "-o", png, "--scale", "0.5"); err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := os.ReadFile(png)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("render did not write a PNG")
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown document type", []string{"templates", "--type", "receipt"}},
		{"render unknown template", []string{"render", "nope"}},
		{"render bad scale", []string{"render", "nope", "--scale", "0"}},
		{"import missing file", []string{"import", "/does/not/exist.json"}},
		{"import needs a file", []string{"import"}},
		{"serve takes no args", []string{"serve", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, t.TempDir(), tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestKinds(t *testing.T) {
	out, err := run(t, t.TempDir(), "kinds")
	if err != nil {
		t.Fatalf("kinds: %v", err)
	}
	for _, want := range []string{"text", "table", "signature"} {
		if !strings.Contains(out, want) {
			t.Errorf("kinds output missing %q", want)
		}
	}
}
