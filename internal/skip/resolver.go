package skip

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"segue/internal/identity"
	"segue/internal/logging"
	"segue/internal/providers"
	"segue/internal/segments"
)

// Write-back submissions run detached from the resolution call and
// must not hang forever.
const autoSubmitTimeout = 30 * time.Second

// BackWriter accepts segment write-backs to the community database.
// *providers.IntroDBClient implements it.
type BackWriter interface {
	CanSubmit() bool
	Submit(ctx context.Context, apiKey, imdbID string, season, episode int, startSec, endSec float64) (providers.SubmitResult, error)
}

// Resolver walks an ordered list of provider tiers.
type Resolver struct {
	clients []providers.Client
	writer  BackWriter
	logger  *slog.Logger

	onAutoSubmit func(providers.SubmitResult)
	submitWG     sync.WaitGroup
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAutoSubmitCallback registers a callback invoked after each
// background write-back attempt, successful or not.
func WithAutoSubmitCallback(fn func(providers.SubmitResult)) Option {
	return func(r *Resolver) {
		r.onAutoSubmit = fn
	}
}

// NewResolver creates a Resolver. The clients slice is the tier order;
// writer may be nil to disable write-back.
func NewResolver(clients []providers.Client, writer BackWriter, logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Resolver{
		clients: clients,
		writer:  writer,
		logger:  logging.WithComponent(logger, "skip"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve queries each tier in order and returns the first non-empty
// segment set. Provider errors and unavailable tiers advance to the
// next tier. An empty set means no provider had data; Resolve never
// fails.
func (r *Resolver) Resolve(ctx context.Context, id identity.Identity) segments.Set {
	req := providers.Request{Identity: id}
	for tier, client := range r.clients {
		tierLogger := r.logger.With(
			logging.String(logging.FieldProvider, client.Name()),
			logging.Int(logging.FieldTier, tier+1))
		if !client.Available(req) {
			tierLogger.Debug("tier unavailable")
			continue
		}
		set, err := client.Fetch(ctx, req)
		if err != nil {
			tierLogger.Warn("tier failed", logging.Error(err))
			continue
		}
		if set.Empty() {
			tierLogger.Debug("tier empty")
			continue
		}
		tierLogger.Info("segments resolved",
			logging.Int("segments", len(set.Segments)))
		r.maybeWriteBack(client, id, set)
		return set
	}
	r.logger.Info("no skip data from any tier",
		logging.String(logging.FieldShow, id.ShowName),
		logging.Int(logging.FieldSeason, id.Season),
		logging.Int(logging.FieldEpisode, id.Episode))
	return segments.Set{}
}

// maybeWriteBack shares a discovery from a non-terminal tier with the
// community database, detached from the caller. The terminal tier is
// the database itself, so its results are never echoed back.
func (r *Resolver) maybeWriteBack(winner providers.Client, id identity.Identity, set segments.Set) {
	if r.writer == nil || !r.writer.CanSubmit() {
		return
	}
	if winner.Name() == "introdb" || !id.HasImdb() || len(set.Segments) == 0 {
		return
	}
	seg := set.Segments[0]
	r.submitWG.Add(1)
	go func() {
		defer r.submitWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), autoSubmitTimeout)
		defer cancel()
		result, err := r.writer.Submit(ctx, "", id.ImdbID, id.Season, id.Episode, seg.StartSec, seg.EndSec)
		if err != nil {
			r.logger.Warn("write-back failed",
				logging.String(logging.FieldImdbID, id.ImdbID),
				logging.Error(err))
			result = providers.SubmitResult{Message: err.Error()}
		} else if result.Success {
			r.logger.Info("write-back submitted",
				logging.String(logging.FieldImdbID, id.ImdbID),
				logging.Int(logging.FieldSeason, id.Season),
				logging.Int(logging.FieldEpisode, id.Episode))
		}
		if r.onAutoSubmit != nil {
			r.onAutoSubmit(result)
		}
	}()
}

// Wait blocks until all in-flight write-backs finish. Hosts call it
// during shutdown; tests use it for determinism.
func (r *Resolver) Wait() {
	r.submitWG.Wait()
}
