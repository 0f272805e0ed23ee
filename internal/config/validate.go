package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSkip(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateTrakt(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSkip() error {
	switch c.Skip.Mode {
	case "auto", "button":
	default:
		return fmt.Errorf("skip.mode: must be \"auto\" or \"button\", got %q", c.Skip.Mode)
	}
	if c.Skip.TickIntervalMs < 1 || c.Skip.TickIntervalMs > 1000 {
		return fmt.Errorf("skip.tick_interval_ms: must be between 1 and 1000, got %d", c.Skip.TickIntervalMs)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir: required when cache is enabled")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl_hours: must not be negative, got %d", c.Cache.TTL)
	}
	return nil
}

func (c *Config) validateTrakt() error {
	if !c.Trakt.Enabled {
		return nil
	}
	if c.Trakt.ClientID == "" {
		return fmt.Errorf("trakt.client_id: required when trakt is enabled")
	}
	if c.Trakt.AccessToken == "" {
		return fmt.Errorf("trakt.access_token: required when trakt is enabled")
	}
	return nil
}
