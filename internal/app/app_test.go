package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"docdesigner/internal/config"
	"docdesigner/internal/domain"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.HTTP.Addr = "127.0.0.1:0"
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Shutdown(context.Background()) })
	return a
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = ""
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected error for empty data dir")
	}
}

func TestStartup_CreatesSchemaDirAndRejectsBadSchedule(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)
	if err := a.Startup(context.Background()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if _, err := os.Stat(cfg.SchemaDir()); err != nil {
		t.Errorf("schema dir not created: %v", err)
	}
	if a.watcher == nil {
		t.Error("watcher not started")
	}

	bad := testConfig(t)
	bad.Export.Schedule = "not a schedule"
	b := newTestApp(t, bad)
	if err := b.Startup(context.Background()); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestHandler_ServesStoredTemplatesAndSchemaFiles(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.SchemaDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	override := "[[keys]]\nkey = \"po_ref\"\nlabel = \"PO Ref\"\ntype = \"text\"\n"
	if err := os.WriteFile(filepath.Join(cfg.SchemaDir(), "invoice.toml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, cfg)
	if _, err := a.Templates.Create(context.Background(), "Invoice A", domain.DocumentInvoice); err != nil {
		t.Fatalf("Create: %v", err)
	}

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	var records []domain.TemplateRecord
	getJSON(t, srv.URL+"/api/templates", &records)
	if len(records) != 1 || records[0].Name != "Invoice A" {
		t.Errorf("templates = %+v", records)
	}

	var keys []domain.DataKey
	getJSON(t, srv.URL+"/api/schema/invoice", &keys)
	if len(keys) != 1 || keys[0].Key != "po_ref" {
		t.Errorf("invoice keys = %+v, want the file override", keys)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/kinds"
	var kinds []json.RawMessage
	getJSON(t, url, &kinds)
	if len(kinds) == 0 {
		t.Error("no component kinds served")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
