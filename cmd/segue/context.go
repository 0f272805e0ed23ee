package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"segue/internal/config"
	"segue/internal/identity"
	"segue/internal/logging"
	"segue/internal/providers"
	"segue/internal/skip"
	"segue/internal/skipcache"
	"segue/internal/title"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if c.verboseFlag != nil && *c.verboseFlag {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:    level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.File,
	})
}

// identityResolver builds the Cinemeta+Jikan resolver from config.
func (c *commandContext) identityResolver(cfg *config.Config, logger *slog.Logger) (*identity.Resolver, error) {
	cinemeta, err := identity.NewCinemeta(cfg.Cinemeta.URL, seconds(cfg.Cinemeta.TimeoutSeconds))
	if err != nil {
		return nil, fmt.Errorf("create cinemeta client: %w", err)
	}
	jikan, err := identity.NewJikan(cfg.Jikan.BaseURL, seconds(cfg.Jikan.TimeoutSeconds))
	if err != nil {
		return nil, fmt.Errorf("create jikan client: %w", err)
	}
	return identity.NewResolver(cinemeta, jikan, logger), nil
}

// skipResolver builds the tiered provider chain in fallback order. The
// IntroDB client doubles as the write-back target.
func (c *commandContext) skipResolver(cfg *config.Config, logger *slog.Logger) (*skip.Resolver, error) {
	animeSkip, err := providers.NewAnimeSkip(
		cfg.AnimeSkip.URL, cfg.AnimeSkip.ClientID, cfg.AnimeSkip.AuthToken,
		seconds(cfg.AnimeSkip.TimeoutSeconds))
	if err != nil {
		return nil, fmt.Errorf("create animeskip client: %w", err)
	}
	skipDB, err := providers.NewSkipDB(
		cfg.SkipDB.URL, seconds(cfg.SkipDB.TimeoutSeconds),
		time.Duration(cfg.SkipDB.CacheTTLMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("create skipdb client: %w", err)
	}
	introHater, err := providers.NewIntroHater(
		cfg.IntroHater.URL, cfg.IntroHater.DebridAPIKey,
		seconds(cfg.IntroHater.TimeoutSeconds))
	if err != nil {
		return nil, fmt.Errorf("create introhater client: %w", err)
	}
	aniSkip, err := providers.NewAniSkip(cfg.AniSkip.URL, seconds(cfg.AniSkip.TimeoutSeconds))
	if err != nil {
		return nil, fmt.Errorf("create aniskip client: %w", err)
	}
	introDB, err := providers.NewIntroDB(cfg.IntroDB.URL, cfg.IntroDB.APIKey, seconds(cfg.IntroDB.TimeoutSeconds))
	if err != nil {
		return nil, fmt.Errorf("create introdb client: %w", err)
	}

	clients := []providers.Client{animeSkip, skipDB, introHater, aniSkip, introDB}
	return skip.NewResolver(clients, introDB, logger), nil
}

// openCache opens the persistent cache, or returns nil when disabled.
func (c *commandContext) openCache(cfg *config.Config) (*skipcache.Store, error) {
	if !cfg.Cache.Enabled || cfg.Cache.Dir == "" {
		return nil, nil
	}
	store, err := skipcache.Open(cfg.Cache.Dir, time.Duration(cfg.Cache.TTL)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("open skip cache: %w", err)
	}
	return store, nil
}

// resolveIdentity consults the cache first, then the network resolvers,
// storing fresh results back. The second return reports a cache hit.
// The store may be nil.
func (c *commandContext) resolveIdentity(ctx context.Context, cfg *config.Config, logger *slog.Logger, store *skipcache.Store, raw string, parsed title.Result) (identity.Identity, bool, error) {
	if store != nil {
		if id, ok, err := store.GetIdentity(ctx, raw); err != nil {
			logger.Warn("identity cache read failed", logging.Error(err))
		} else if ok {
			return id, true, nil
		}
	}

	resolver, err := c.identityResolver(cfg, logger)
	if err != nil {
		return identity.Identity{}, false, err
	}
	id := resolver.Resolve(ctx, parsed)
	id.RawTitle = raw

	if store != nil {
		if err := store.PutIdentity(ctx, id); err != nil {
			logger.Warn("identity cache write failed", logging.Error(err))
		}
	}
	return id, false, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
