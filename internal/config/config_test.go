package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Skip.Mode != "auto" {
		t.Fatalf("default skip mode = %q", cfg.Skip.Mode)
	}
	if cfg.Skip.TickIntervalMs != 10 {
		t.Fatalf("default tick interval = %d", cfg.Skip.TickIntervalMs)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if path == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.AniSkip.URL != defaultAniSkipURL {
		t.Fatalf("unexpected aniskip url %q", cfg.AniSkip.URL)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[skip]
mode = "Button"
tick_interval_ms = 50

[introdb]
url = "https://example.com/introdb/"
api_key = "  idb_test  "

[cache]
enabled = false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Skip.Mode != "button" {
		t.Fatalf("mode = %q, want button", cfg.Skip.Mode)
	}
	if cfg.IntroDB.URL != "https://example.com/introdb" {
		t.Fatalf("introdb url not trimmed: %q", cfg.IntroDB.URL)
	}
	if cfg.IntroDB.APIKey != "idb_test" {
		t.Fatalf("introdb key not trimmed: %q", cfg.IntroDB.APIKey)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := Default()
	cfg.Skip.Mode = "always"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "skip.mode") {
		t.Fatalf("expected skip.mode error, got %v", err)
	}
}

func TestValidateTraktRequiresCredentials(t *testing.T) {
	cfg := Default()
	cfg.Trakt.Enabled = true
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "trakt.client_id") {
		t.Fatalf("expected trakt.client_id error, got %v", err)
	}
	cfg.Trakt.ClientID = "cid"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "trakt.access_token") {
		t.Fatalf("expected trakt.access_token error, got %v", err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/x")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := os.WriteFile(path, []byte(SampleConfig()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
}
