package submit

import (
	"context"
	"log/slog"

	"segue/internal/identity"
	"segue/internal/logging"
	"segue/internal/providers"
)

// Marker is a pair of user-set positions delimiting a segment.
type Marker struct {
	StartMs int64
	EndMs   int64
}

// Valid reports whether the marker delimits a usable interval.
func (m Marker) Valid() bool {
	return m.StartMs >= 0 && m.EndMs > m.StartMs
}

// StartSec and EndSec convert to the submission API's second scale.
func (m Marker) StartSec() float64 { return float64(m.StartMs) / 1000 }

func (m Marker) EndSec() float64 { return float64(m.EndMs) / 1000 }

// Result reports a submission outcome in user-facing terms.
type Result struct {
	Success bool
	Message string
}

// Client accepts segment submissions. *providers.IntroDBClient
// implements it.
type Client interface {
	Submit(ctx context.Context, apiKey, imdbID string, season, episode int, startSec, endSec float64) (providers.SubmitResult, error)
}

// Submitter validates markers and forwards them to the community
// database. It never returns an error; every outcome is a Result.
type Submitter struct {
	client Client
	logger *slog.Logger
}

// NewSubmitter creates a Submitter.
func NewSubmitter(client Client, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Submitter{
		client: client,
		logger: logging.WithComponent(logger, "submit"),
	}
}

// Submit sends a marked segment for the identified episode. On
// success the caller is expected to reset its marker pair.
func (s *Submitter) Submit(ctx context.Context, marker Marker, id identity.Identity, apiKey string) Result {
	switch {
	case marker.StartMs < 0:
		return Result{Message: "start marker must not be negative"}
	case marker.EndMs <= marker.StartMs:
		return Result{Message: "end marker must be after start marker"}
	case !id.HasImdb():
		return Result{Message: "no external id resolved for this item"}
	}

	outcome, err := s.client.Submit(ctx, apiKey, id.ImdbID, id.Season, id.Episode, marker.StartSec(), marker.EndSec())
	if err != nil {
		s.logger.Warn("submission failed",
			logging.String(logging.FieldImdbID, id.ImdbID),
			logging.Error(err))
		return Result{Message: "network error: " + err.Error()}
	}
	if outcome.Success {
		s.logger.Info("segment submitted",
			logging.String(logging.FieldImdbID, id.ImdbID),
			logging.Int(logging.FieldSeason, id.Season),
			logging.Int(logging.FieldEpisode, id.Episode))
	}
	return Result{Success: outcome.Success, Message: outcome.Message}
}
