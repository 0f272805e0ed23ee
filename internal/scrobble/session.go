package scrobble

import (
	"context"
	"log/slog"
	"sync"

	"segue/internal/identity"
	"segue/internal/logging"
)

// MinProgress is the smallest progress value the remote service
// accepts; zero-progress events are rejected upstream.
const MinProgress = 0.1

// WatchedThreshold is the progress at which a stop event marks the
// item watched instead of paused.
const WatchedThreshold = 80.0

// State is the lifecycle of one tracked media item.
type State int

const (
	Idle State = iota
	Watching
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Watching:
		return "watching"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Tracker is the remote watch-progress service. *TraktClient
// implements it.
type Tracker interface {
	Start(ctx context.Context, id identity.Identity, progress float64) (action string, err error)
	Pause(ctx context.Context, id identity.Identity, progress float64) (action string, err error)
	Stop(ctx context.Context, id identity.Identity, progress float64) (action string, err error)
}

// Progress converts a playback position to the tracker's percentage
// scale, clamped to the service minimum.
func Progress(positionMs, durationMs int64) float64 {
	if durationMs <= 0 {
		return MinProgress
	}
	progress := float64(positionMs) * 100 / float64(durationMs)
	if progress < MinProgress {
		return MinProgress
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}

// Session tracks one media item. Tracker failures are logged and
// swallowed; the machine advances regardless so playback state stays
// consistent even when the remote service is down.
type Session struct {
	tracker Tracker
	logger  *slog.Logger

	mu           sync.Mutex
	state        State
	id           identity.Identity
	lastProgress float64
	// True when Watching was entered before an external ID resolved;
	// the start event is held back until backfill.
	startPending bool
}

// NewSession creates a session for one media item.
func NewSession(tracker Tracker, id identity.Identity, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		tracker: tracker,
		logger:  logging.WithComponent(logger, "scrobble"),
		state:   Idle,
		id:      id,
	}
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetPlaying drives the Watching/Paused edges. Events fire only on
// transitions; repeated samples with the same playing value are
// no-ops. A start without a resolved external ID is suppressed and
// deferred to UpdateIdentity.
func (s *Session) SetPlaying(ctx context.Context, playing bool, positionMs, durationMs int64) {
	progress := Progress(positionMs, durationMs)

	s.mu.Lock()
	switch {
	case playing && (s.state == Idle || s.state == Paused):
		s.state = Watching
		s.lastProgress = progress
		if !s.id.HasImdb() {
			s.startPending = true
			s.mu.Unlock()
			s.logger.Info("start suppressed until identity resolves",
				logging.String(logging.FieldShow, s.id.ShowName))
			return
		}
		s.startPending = false
		id := s.id
		s.mu.Unlock()
		s.emit(ctx, "start", id, progress, s.tracker.Start)

	case !playing && s.state == Watching:
		s.state = Paused
		s.lastProgress = progress
		id := s.id
		pending := s.startPending
		s.mu.Unlock()
		if pending {
			return
		}
		s.emit(ctx, "pause", id, progress, s.tracker.Pause)

	default:
		s.mu.Unlock()
	}
}

// UpdateIdentity backfills external identifiers resolved after the
// session began, without resetting state. If a start event was
// suppressed it is sent now.
func (s *Session) UpdateIdentity(ctx context.Context, id identity.Identity) {
	s.mu.Lock()
	s.id = id
	resend := false
	if s.startPending && id.HasImdb() {
		// Pending clears even when Paused; the next play edge sends
		// the start with the resolved identity.
		s.startPending = false
		resend = s.state == Watching
	}
	progress := s.lastProgress
	if progress < MinProgress {
		progress = MinProgress
	}
	s.mu.Unlock()

	if resend {
		s.logger.Info("identity backfilled, sending deferred start",
			logging.String(logging.FieldImdbID, id.ImdbID))
		s.emit(ctx, "start", id, progress, s.tracker.Start)
	}
}

// Release drives the Stopped edge and returns the remote action
// ("scrobble" when the service marked the item watched, "pause" when
// it saved progress, empty when no event was sent).
func (s *Session) Release(ctx context.Context, positionMs, durationMs int64) string {
	progress := Progress(positionMs, durationMs)

	s.mu.Lock()
	if s.state != Watching && s.state != Paused {
		s.mu.Unlock()
		return ""
	}
	s.state = Stopped
	if progress < s.lastProgress {
		progress = s.lastProgress
	}
	id := s.id
	pending := s.startPending
	s.mu.Unlock()

	if pending || !id.HasImdb() {
		return ""
	}
	action, err := s.tracker.Stop(ctx, id, progress)
	if err != nil {
		s.logger.Warn("scrobble stop failed", logging.Error(err))
		return ""
	}
	s.logger.Info("scrobble stop",
		logging.String(logging.FieldImdbID, id.ImdbID),
		logging.String("action", action),
		logging.Float64("progress", progress))
	return action
}

func (s *Session) emit(ctx context.Context, name string, id identity.Identity, progress float64, send func(context.Context, identity.Identity, float64) (string, error)) {
	action, err := send(ctx, id, progress)
	if err != nil {
		s.logger.Warn("scrobble "+name+" failed", logging.Error(err))
		return
	}
	s.logger.Info("scrobble "+name,
		logging.String(logging.FieldImdbID, id.ImdbID),
		logging.String("action", action),
		logging.Float64("progress", progress))
}
