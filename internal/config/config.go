package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Cache contains configuration for the on-disk identity/segment cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	TTL     int    `toml:"ttl_hours"`
}

// Skip contains configuration for skip correlation behavior.
type Skip struct {
	Enabled bool `toml:"enabled"`
	// Mode selects what happens when playback enters a segment:
	// "auto" seeks immediately, "button" surfaces the skip affordance.
	Mode           string `toml:"mode"`
	TickIntervalMs int    `toml:"tick_interval_ms"`
	// TimeShiftSec moves all provider segments by a fixed offset, for
	// sources whose runtimes include leading bumpers.
	TimeShiftSec int `toml:"time_shift_sec"`
}

// Cinemeta contains configuration for the Stremio Cinemeta catalog used
// to resolve IMDB IDs. No credential is required.
type Cinemeta struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Jikan contains configuration for the Jikan (MyAnimeList) search API.
type Jikan struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AnimeSkip contains configuration for the Anime Skip community
// timestamp service. ClientID is the shared application ID; AuthToken is
// the per-user token obtained from account login.
type AnimeSkip struct {
	URL            string `toml:"url"`
	ClientID       string `toml:"client_id"`
	AuthToken      string `toml:"auth_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SkipDB contains configuration for the community skip database dump.
type SkipDB struct {
	URL             string `toml:"url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
}

// IntroHater contains configuration for the IntroHater service, which
// authenticates with a debrid-service API key.
type IntroHater struct {
	URL            string `toml:"url"`
	DebridAPIKey   string `toml:"debrid_api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AniSkip contains configuration for the AniSkip API keyed by MAL IDs.
type AniSkip struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// IntroDB contains configuration for IntroDB, the final fallback tier
// and the write-back target for community submissions.
type IntroDB struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Trakt contains configuration for watch-progress scrobbling.
type Trakt struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	ClientID       string `toml:"client_id"`
	AccessToken    string `toml:"access_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for segue.
//
// Configuration sections by subsystem:
//   - Skip: correlation mode and timing
//   - Cache: persistent identity/segment cache
//   - Cinemeta/Jikan: external identity search
//   - AnimeSkip/SkipDB/IntroHater/AniSkip/IntroDB: skip providers, in
//     fallback order
//   - Trakt: watch-progress scrobbling
//   - Logging: log format and level
type Config struct {
	Skip       Skip       `toml:"skip"`
	Cache      Cache      `toml:"cache"`
	Cinemeta   Cinemeta   `toml:"cinemeta"`
	Jikan      Jikan      `toml:"jikan"`
	AnimeSkip  AnimeSkip  `toml:"animeskip"`
	SkipDB     SkipDB     `toml:"skipdb"`
	IntroHater IntroHater `toml:"introhater"`
	AniSkip    AniSkip    `toml:"aniskip"`
	IntroDB    IntroDB    `toml:"introdb"`
	Trakt      Trakt      `toml:"trakt"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/segue/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return
// is the resolved path, the third indicates whether a file was found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("segue.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the engine writes to.
func (c *Config) EnsureDirectories() error {
	if c.Cache.Enabled && c.Cache.Dir != "" {
		if err := os.MkdirAll(c.Cache.Dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory %q: %w", c.Cache.Dir, err)
		}
	}
	if c.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Logging.File), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	return nil
}
