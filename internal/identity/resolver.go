package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/webtor-io/lazymap"

	"segue/internal/logging"
	"segue/internal/title"
)

// ImdbSearcher resolves a title to an IMDB identifier.
type ImdbSearcher interface {
	SearchImdbID(ctx context.Context, contentType, query string, year int) (string, error)
}

// MalSearcher resolves a title to a MyAnimeList identifier.
type MalSearcher interface {
	SearchMalID(ctx context.Context, query string, year int) (int, error)
}

var (
	_ ImdbSearcher = (*CinemetaClient)(nil)
	_ MalSearcher  = (*JikanClient)(nil)
)

// Resolver turns a normalized title into an external Identity. Each
// external lookup is attempted at most once per show/year pair;
// lazymap deduplicates concurrent requests and caches both hits and
// misses so repeat playback of the same show never re-queries.
type Resolver struct {
	cinemeta ImdbSearcher
	jikan    MalSearcher
	logger   *slog.Logger

	imdb *lazymap.LazyMap[string]
	mal  *lazymap.LazyMap[int]
}

// NewResolver creates a Resolver. Either searcher may be nil, in which
// case the corresponding identifier is never resolved.
func NewResolver(cinemeta ImdbSearcher, jikan MalSearcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		cinemeta: cinemeta,
		jikan:    jikan,
		logger:   logging.WithComponent(logger, "identity"),
		imdb: lazymap.New[string](&lazymap.Config{
			Expire:      6 * time.Hour,
			ErrorExpire: 30 * time.Second,
		}),
		mal: lazymap.New[int](&lazymap.Config{
			Expire:      6 * time.Hour,
			ErrorExpire: 30 * time.Second,
		}),
	}
}

// Resolve performs best-effort identity resolution for a parsed title.
// Lookup failures are logged and degrade to zero identifiers; Resolve
// itself never fails. The MAL lookup only runs for titles the
// normalizer flagged as anime.
func (r *Resolver) Resolve(ctx context.Context, parsed title.Result) Identity {
	id := Identity{
		ShowName: parsed.ShowName,
		Season:   parsed.Season,
		Episode:  parsed.Episode,
		Year:     parsed.Year,
	}
	if id.ShowName == "" {
		return id
	}
	key := lookupKey(parsed.ShowName, parsed.Year)

	if r.cinemeta != nil {
		imdbID, err := r.imdb.Get(key, func() (string, error) {
			return r.cinemeta.SearchImdbID(ctx, "series", parsed.ShowName, parsed.Year)
		})
		if err != nil {
			r.logger.Warn("imdb lookup failed",
				logging.String(logging.FieldShow, parsed.ShowName),
				logging.Error(err))
		} else {
			id.ImdbID = imdbID
		}
	}

	if r.jikan != nil && parsed.Anime {
		malID, err := r.mal.Get(key, func() (int, error) {
			return r.jikan.SearchMalID(ctx, parsed.ShowName, parsed.Year)
		})
		if err != nil {
			r.logger.Warn("mal lookup failed",
				logging.String(logging.FieldShow, parsed.ShowName),
				logging.Error(err))
		} else {
			id.MalID = malID
		}
	}

	if id.HasImdb() || id.HasMal() {
		r.logger.Info("identity resolved",
			logging.String(logging.FieldShow, parsed.ShowName),
			logging.String(logging.FieldImdbID, id.ImdbID),
			logging.Int(logging.FieldMalID, id.MalID))
	}
	return id
}

func lookupKey(show string, year int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(show), year)
}
