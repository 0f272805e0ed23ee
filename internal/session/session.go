package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"segue/internal/correlate"
	"segue/internal/identity"
	"segue/internal/logging"
	"segue/internal/scrobble"
	"segue/internal/segments"
	"segue/internal/title"
)

// IdentityResolver turns a parsed title into a full identity with
// external IDs attached.
type IdentityResolver interface {
	Resolve(ctx context.Context, parsed title.Result) identity.Identity
}

// SegmentResolver produces the effective segment set for an identity.
type SegmentResolver interface {
	Resolve(ctx context.Context, id identity.Identity) segments.Set
}

// Cache persists identities and segment sets between sessions. All
// methods tolerate misses; errors are logged and treated as misses.
type Cache interface {
	GetIdentity(ctx context.Context, rawTitle string) (identity.Identity, bool, error)
	PutIdentity(ctx context.Context, id identity.Identity) error
	GetSegments(ctx context.Context, cacheKey string) (segments.Set, bool, error)
	PutSegments(ctx context.Context, cacheKey string, set segments.Set) error
}

// Deps carries the collaborators a session wires together. Any field
// may be nil; the corresponding feature degrades to a no-op.
type Deps struct {
	Identities IdentityResolver
	Segments   SegmentResolver
	Cache      Cache
	Tracker    scrobble.Tracker
	Correlator *correlate.Correlator
	Logger     *slog.Logger
}

// Session is the single owner of per-media-item state. Each loaded item
// gets a generation number; background resolution results carry the
// generation they were started for and are dropped once it has moved on.
type Session struct {
	deps   Deps
	logger *slog.Logger

	mu            sync.Mutex
	generation    int
	sessionID     string
	id            identity.Identity
	scrob         *scrobble.Session
	chapterLocked bool

	wg sync.WaitGroup
}

// New builds a session around the provided collaborators.
func New(deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		deps:   deps,
		logger: logging.WithComponent(logger, "session"),
	}
}

// MediaLoaded starts a new item. The previous generation is superseded
// immediately; any in-flight resolution for it completes in the
// background and its result is dropped on delivery. Resolution for the
// new item begins on a fresh goroutine.
func (s *Session) MediaLoaded(rawTitle string) {
	parsed := title.Normalize(rawTitle)
	provisional := identity.Identity{
		RawTitle: rawTitle,
		ShowName: parsed.ShowName,
		Season:   parsed.Season,
		Episode:  parsed.Episode,
		Year:     parsed.Year,
	}

	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.sessionID = uuid.NewString()
	s.id = provisional
	s.chapterLocked = false
	if s.deps.Correlator != nil {
		s.deps.Correlator.Load(segments.Set{})
	}
	if s.deps.Tracker != nil {
		s.scrob = scrobble.NewSession(s.deps.Tracker, provisional, s.logger)
	} else {
		s.scrob = nil
	}
	logger := s.itemLogger()
	s.mu.Unlock()

	logger.Info("media loaded",
		logging.String(logging.FieldShow, parsed.ShowName),
		logging.Int(logging.FieldSeason, parsed.Season),
		logging.Int(logging.FieldEpisode, parsed.Episode))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.resolve(generation, parsed, provisional, logger)
	}()
}

// resolve runs off the host thread. It consults the cache first, falls
// back to the network resolvers, and delivers results tagged with the
// generation they belong to.
func (s *Session) resolve(generation int, parsed title.Result, provisional identity.Identity, logger *slog.Logger) {
	ctx := context.Background()

	id, cached := s.cachedIdentity(ctx, provisional.RawTitle, logger)
	if !cached {
		if s.deps.Identities != nil {
			id = s.deps.Identities.Resolve(ctx, parsed)
			id.RawTitle = provisional.RawTitle
		} else {
			id = provisional
		}
		s.storeIdentity(ctx, id, logger)
	}
	if !s.deliverIdentity(ctx, generation, id, logger) {
		return
	}

	if s.deps.Segments == nil {
		return
	}
	set, hit := s.cachedSegments(ctx, id, logger)
	if !hit {
		set = s.deps.Segments.Resolve(ctx, id)
		if !set.Empty() {
			s.storeSegments(ctx, id, set, logger)
		}
	}
	s.deliverSegments(generation, set, logger)
}

func (s *Session) cachedIdentity(ctx context.Context, rawTitle string, logger *slog.Logger) (identity.Identity, bool) {
	if s.deps.Cache == nil {
		return identity.Identity{}, false
	}
	id, ok, err := s.deps.Cache.GetIdentity(ctx, rawTitle)
	if err != nil {
		logger.Warn("identity cache read failed", logging.Error(err))
		return identity.Identity{}, false
	}
	return id, ok
}

func (s *Session) storeIdentity(ctx context.Context, id identity.Identity, logger *slog.Logger) {
	if s.deps.Cache == nil || id.RawTitle == "" {
		return
	}
	if err := s.deps.Cache.PutIdentity(ctx, id); err != nil {
		logger.Warn("identity cache write failed", logging.Error(err))
	}
}

func (s *Session) cachedSegments(ctx context.Context, id identity.Identity, logger *slog.Logger) (segments.Set, bool) {
	if s.deps.Cache == nil {
		return segments.Set{}, false
	}
	set, ok, err := s.deps.Cache.GetSegments(ctx, id.CacheKey())
	if err != nil {
		logger.Warn("segment cache read failed", logging.Error(err))
		return segments.Set{}, false
	}
	return set, ok
}

func (s *Session) storeSegments(ctx context.Context, id identity.Identity, set segments.Set, logger *slog.Logger) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.PutSegments(ctx, id.CacheKey(), set); err != nil {
		logger.Warn("segment cache write failed", logging.Error(err))
	}
}

// deliverIdentity installs a resolved identity unless the item has
// changed. Returns false when the generation is stale so the caller can
// abandon the rest of the resolution.
func (s *Session) deliverIdentity(ctx context.Context, generation int, id identity.Identity, logger *slog.Logger) bool {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		logger.Debug("dropping stale identity resolution")
		return false
	}
	s.id = id
	scrob := s.scrob
	s.mu.Unlock()

	// UpdateIdentity may emit a deferred scrobble start, so it runs
	// outside the session mutex. The scrobble session has its own
	// guard and ignores backfill once released.
	if scrob != nil {
		scrob.UpdateIdentity(ctx, id)
	}
	logger.Info("identity resolved",
		logging.String(logging.FieldImdbID, id.ImdbID),
		logging.Int(logging.FieldMalID, id.MalID))
	return true
}

// deliverSegments installs provider segments unless the item changed or
// chapter metadata already claimed the item.
func (s *Session) deliverSegments(generation int, set segments.Set, logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		logger.Debug("dropping stale segment resolution")
		return
	}
	if s.chapterLocked {
		logger.Debug("dropping provider segments, chapter override active")
		return
	}
	if s.deps.Correlator != nil {
		s.deps.Correlator.UpdateSegments(set)
	}
	logger.Info("segments installed",
		logging.Int("segments", len(set.Segments)),
		logging.String("source", set.Source))
}

// ChapterMetadata feeds embedded chapter markers into the session. When
// any marker matches an intro keyword the derived set permanently
// replaces provider data for this item.
func (s *Session) ChapterMetadata(chapters []segments.Chapter) {
	set := segments.FromChapters(chapters)
	if !set.ChapterOverride {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chapterLocked {
		return
	}
	s.chapterLocked = true
	if s.deps.Correlator != nil {
		s.deps.Correlator.UpdateSegments(set)
	}
	s.itemLogger().Info("chapter override active",
		logging.Int("segments", len(set.Segments)))
}

// SetPlaying reacts to the playback clock's play/pause edges. The
// correlation loop runs only while playing; scrobble transitions are
// forwarded as-is.
func (s *Session) SetPlaying(ctx context.Context, playing bool, positionMs, durationMs int64) {
	s.mu.Lock()
	scrob := s.scrob
	corr := s.deps.Correlator
	s.mu.Unlock()

	if corr != nil {
		if playing {
			corr.Start(context.Background())
		} else {
			corr.Stop()
		}
	}
	if scrob != nil {
		scrob.SetPlaying(ctx, playing, positionMs, durationMs)
	}
}

// SkipNow handles an explicit press of the skip affordance.
func (s *Session) SkipNow() bool {
	if s.deps.Correlator == nil {
		return false
	}
	return s.deps.Correlator.SkipNow()
}

// Upcoming reports a segment starting within windowMs of the current
// position, letting hosts pre-surface the affordance.
func (s *Session) Upcoming(windowMs int64) (segments.Segment, bool) {
	if s.deps.Correlator == nil {
		return segments.Segment{}, false
	}
	return s.deps.Correlator.Upcoming(windowMs)
}

// Identity returns the current item's identity snapshot.
func (s *Session) Identity() identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Release tears down the current item: the correlation loop stops, the
// scrobble session emits its stop event, and any in-flight resolution
// is superseded. The returned action is the remote tracker's verdict
// ("scrobble" when the item counts as watched), empty when no event was
// sent.
func (s *Session) Release(ctx context.Context, positionMs, durationMs int64) string {
	s.mu.Lock()
	s.generation++
	scrob := s.scrob
	s.scrob = nil
	s.chapterLocked = false
	corr := s.deps.Correlator
	s.mu.Unlock()

	if corr != nil {
		corr.Stop()
	}
	if scrob == nil {
		return ""
	}
	return scrob.Release(ctx, positionMs, durationMs)
}

// Wait blocks until background resolution goroutines finish. Intended
// for shutdown and tests.
func (s *Session) Wait() {
	s.wg.Wait()
}

// itemLogger must be called with the mutex held.
func (s *Session) itemLogger() *slog.Logger {
	return s.logger.With(logging.String(logging.FieldSessionID, s.sessionID))
}
