package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"segue/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp cache directory
// per test so commands and stores never touch the user's home.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(base, "cache")
	cfg.Logging.Level = "error"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithCacheDisabled turns the persistent cache off.
func WithCacheDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cache.Enabled = false
	}
}

// WithIntroDBKey sets the IntroDB submission key.
func WithIntroDBKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.IntroDB.APIKey = key
	}
}

// WithSkipMode selects the correlation mode ("auto" or "button").
func WithSkipMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Skip.Mode = mode
	}
}

// WriteConfig marshals the config to a TOML file in a temp directory
// and returns its path, suitable for a CLI --config flag.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
