package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Server.BaseURL != DefaultBaseURL || cfg.UI.Mode != "auto" || cfg.Research.Tone != "Objective" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadParsesFile(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	path := writeConfig(t, t.TempDir(), `server:
  base_url: "https://research.example.com/"
  timeout: 10s
research:
  tone: analytical
ui:
  mode: PLAIN
  collapse_delay: 500ms
export:
  dir: reports
  formats: [MD, html, md]
journal:
  path: journal.duckdb
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		Server:   ServerConfig{BaseURL: "https://research.example.com", Timeout: 10 * time.Second},
		Research: ResearchConfig{Tone: "analytical"},
		UI: UIConfig{
			Mode:                   "plain",
			CollapseDelay:          500 * time.Millisecond,
			BriefingsCollapseDelay: DefaultBriefingsCollapseDelay,
		},
		Export:  ExportConfig{Dir: "reports", Formats: []string{"md", "html"}},
		Journal: JournalConfig{Path: "journal.duckdb"},
		Log:     LogConfig{Level: "debug", Format: "json"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverridesBaseURL(t *testing.T) {
	t.Setenv(BaseURLEnv, "http://override:9000/")
	path := writeConfig(t, t.TempDir(), "server:\n  base_url: http://file:8000\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.BaseURL != "http://override:9000" {
		t.Fatalf("expected env override, got %q", cfg.Server.BaseURL)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse([]byte("server:\n  host: x\n")); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := Parse([]byte("log:\n  level: info\n---\nlog:\n  level: debug\n")); err == nil {
		t.Fatalf("expected multiple document error")
	}
}

func TestValidateCollectsIssues(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = "ftp://example.com"
	cfg.Research.Tone = "sarcastic"
	cfg.UI.Mode = "fancy"
	cfg.Export.Formats = []string{"docx"}
	cfg.Log.Level = "trace"

	err := Validate(&cfg)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	var fields []string
	for _, issue := range validationErr.Issues {
		fields = append(fields, issue.Field)
	}
	want := []string{"server.base_url", "research.tone", "ui.mode", "export.formats[0]", "log.level"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("issue fields mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "ui.mode: unsupported mode \"fancy\"") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLocateSearchesParents(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := Locate(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != path {
		t.Fatalf("expected %s, got %s", path, found)
	}
}

func TestLocateMissing(t *testing.T) {
	found, err := Locate(t.TempDir())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != "" {
		t.Fatalf("expected no config, got %s", found)
	}
}

func TestLocatePrefersNearest(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	nested := filepath.Join(root, "team")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := writeConfig(t, nested, "")
	found, err := Locate(nested)
	if err != nil || found != path {
		t.Fatalf("expected %s, got %s (%v)", path, found, err)
	}
}

func TestLocateRejectsDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, FileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := Locate(root); err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
}

func TestScaffoldWritesLoadableConfig(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	path := filepath.Join(t.TempDir(), FileName)
	if err := Scaffold(path, "http://research.local:8000"); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load scaffold: %v", err)
	}
	if cfg.Server.BaseURL != "http://research.local:8000" {
		t.Fatalf("unexpected base url %q", cfg.Server.BaseURL)
	}
	if err := Scaffold(path, ""); err == nil {
		t.Fatalf("expected existing file error")
	}
}

func TestScaffoldConfigDocumentsDefaults(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	content, err := ScaffoldConfig("https://research.example.com/")
	if err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	text := string(content)
	for _, want := range []string{
		"# dossier research client.",
		"research.example.com",
		"timeout: 30s",
		"# Objective, Formal, Analytical, Persuasive, Informal or Critical\n  tone: Objective",
		"formats: []",
		"# Set to a DuckDB file",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in scaffold:\n%s", want, text)
		}
	}
	parsed, err := Parse(content)
	if err != nil {
		t.Fatalf("parse scaffold: %v", err)
	}
	Normalize(&parsed)
	want := Default()
	want.Server.BaseURL = "https://research.example.com"
	if diff := cmp.Diff(want, parsed, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("scaffold does not round trip to defaults (-want +got):\n%s", diff)
	}
}
