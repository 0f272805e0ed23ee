package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEndpoints()
	c.normalizeCredentials()
	c.normalizeSkip()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir
	}
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeEndpoints() {
	c.Cinemeta.URL = trimEndpoint(c.Cinemeta.URL, defaultCinemetaURL)
	c.Jikan.BaseURL = trimEndpoint(c.Jikan.BaseURL, defaultJikanBaseURL)
	c.AnimeSkip.URL = trimEndpoint(c.AnimeSkip.URL, defaultAnimeSkipURL)
	c.SkipDB.URL = trimEndpoint(c.SkipDB.URL, defaultSkipDBURL)
	c.IntroHater.URL = trimEndpoint(c.IntroHater.URL, defaultIntroHaterURL)
	c.AniSkip.URL = trimEndpoint(c.AniSkip.URL, defaultAniSkipURL)
	c.IntroDB.URL = trimEndpoint(c.IntroDB.URL, defaultIntroDBURL)
	c.Trakt.URL = trimEndpoint(c.Trakt.URL, defaultTraktURL)
}

func (c *Config) normalizeCredentials() {
	c.AnimeSkip.ClientID = strings.TrimSpace(c.AnimeSkip.ClientID)
	c.AnimeSkip.AuthToken = strings.TrimSpace(c.AnimeSkip.AuthToken)
	c.IntroHater.DebridAPIKey = strings.TrimSpace(c.IntroHater.DebridAPIKey)
	c.IntroDB.APIKey = strings.TrimSpace(c.IntroDB.APIKey)
	c.Trakt.ClientID = strings.TrimSpace(c.Trakt.ClientID)
	c.Trakt.AccessToken = strings.TrimSpace(c.Trakt.AccessToken)

	if c.IntroDB.APIKey == "" {
		if value, ok := os.LookupEnv("INTRODB_API_KEY"); ok {
			c.IntroDB.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Trakt.AccessToken == "" {
		if value, ok := os.LookupEnv("TRAKT_ACCESS_TOKEN"); ok {
			c.Trakt.AccessToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeSkip() {
	c.Skip.Mode = strings.ToLower(strings.TrimSpace(c.Skip.Mode))
	if c.Skip.Mode == "" {
		c.Skip.Mode = defaultSkipMode
	}
	if c.Skip.TickIntervalMs <= 0 {
		c.Skip.TickIntervalMs = defaultTickIntervalMs
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimEndpoint(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	return strings.TrimRight(value, "/")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
