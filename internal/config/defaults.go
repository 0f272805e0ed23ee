package config

const (
	defaultCacheDir        = "~/.cache/segue"
	defaultCacheTTLHours   = 24 * 7
	defaultSkipMode        = "auto"
	defaultTickIntervalMs  = 10
	defaultCinemetaURL     = "https://v3-cinemeta.strem.io"
	defaultJikanBaseURL    = "https://api.jikan.moe/v4"
	defaultAnimeSkipURL    = "https://api.anime-skip.com/graphql"
	defaultSkipDBURL       = "https://busy-jacinta-shugi-c2885b2e.koyeb.app/download-db"
	defaultIntroHaterURL   = "https://introhater.com/api"
	defaultAniSkipURL      = "https://api.aniskip.com/v2"
	defaultIntroDBURL      = "https://api.introdb.app"
	defaultTraktURL        = "https://api.trakt.tv"
	defaultTimeoutSeconds  = 15
	defaultSearchTimeout   = 10
	defaultSkipDBTimeout   = 30
	defaultSkipDBCacheTTL  = 5
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Skip: Skip{
			Enabled:        true,
			Mode:           defaultSkipMode,
			TickIntervalMs: defaultTickIntervalMs,
		},
		Cache: Cache{
			Enabled: true,
			Dir:     defaultCacheDir,
			TTL:     defaultCacheTTLHours,
		},
		Cinemeta: Cinemeta{
			URL:            defaultCinemetaURL,
			TimeoutSeconds: defaultSearchTimeout,
		},
		Jikan: Jikan{
			BaseURL:        defaultJikanBaseURL,
			TimeoutSeconds: defaultSearchTimeout,
		},
		AnimeSkip: AnimeSkip{
			URL:            defaultAnimeSkipURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		SkipDB: SkipDB{
			URL:             defaultSkipDBURL,
			TimeoutSeconds:  defaultSkipDBTimeout,
			CacheTTLMinutes: defaultSkipDBCacheTTL,
		},
		IntroHater: IntroHater{
			URL:            defaultIntroHaterURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		AniSkip: AniSkip{
			URL:            defaultAniSkipURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		IntroDB: IntroDB{
			URL:            defaultIntroDBURL,
			TimeoutSeconds: defaultSearchTimeout,
		},
		Trakt: Trakt{
			URL:            defaultTraktURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
