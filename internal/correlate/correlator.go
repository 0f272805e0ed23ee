package correlate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"segue/internal/logging"
	"segue/internal/segments"
)

// Mode selects what happens when the position enters a segment.
type Mode string

const (
	// ModeAuto seeks past the segment without user interaction.
	ModeAuto Mode = "auto"
	// ModeButton surfaces a skip affordance and waits for SkipNow.
	ModeButton Mode = "button"
)

const defaultTickInterval = 10 * time.Millisecond

// Clock is the host's playback clock. Implementations must be safe to
// call from the correlator's polling goroutine.
type Clock interface {
	PositionMs() int64
	IsPlaying() bool
	SeekTo(positionMs int64)
}

// Sink receives UI-visible effects. The implementation owns marshaling
// onto whatever thread renders them; the correlator only guarantees it
// never emits redundant calls.
type Sink interface {
	ShowSkipAffordance(seg segments.Segment)
	HideSkipAffordance()
	NotifySkipped(seg segments.Segment)
}

// Config holds the correlator's tunables.
type Config struct {
	Mode         Mode
	TickInterval time.Duration
	TimeShiftSec int
}

// Correlator polls the clock and reacts to segment containment. One
// correlator serves one host session; Load rebinds it to each new
// media item.
type Correlator struct {
	clock  Clock
	sink   Sink
	cfg    Config
	logger *slog.Logger

	mu              sync.Mutex
	set             segments.Set
	hasAutoSkipped  bool
	affordanceShown bool
	cancel          context.CancelFunc
	done            chan struct{}
}

// New creates a Correlator.
func New(clock Clock, sink Sink, cfg Config, logger *slog.Logger) *Correlator {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Correlator{
		clock:  clock,
		sink:   sink,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "correlate"),
	}
}

// Load binds the correlator to a new media item: the auto-skip guard
// resets and any visible affordance is withdrawn.
func (c *Correlator) Load(set segments.Set) {
	c.mu.Lock()
	c.set = set
	c.hasAutoSkipped = false
	shown := c.affordanceShown
	c.affordanceShown = false
	c.mu.Unlock()
	if shown {
		c.sink.HideSkipAffordance()
	}
}

// UpdateSegments replaces the segment set for the current item without
// resetting the auto-skip guard. Used when provider results arrive
// after playback started.
func (c *Correlator) UpdateSegments(set segments.Set) {
	c.mu.Lock()
	c.set = set
	c.mu.Unlock()
}

// Start launches the polling loop. A previous loop, if any, is stopped
// first. The loop ends when ctx is cancelled or Stop is called.
func (c *Correlator) Start(ctx context.Context) {
	c.Stop()
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if !c.clock.IsPlaying() {
					continue
				}
				c.Tick(c.clock.PositionMs())
			}
		}
	}()
}

// Stop cancels the polling loop and waits for it to exit.
func (c *Correlator) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Tick evaluates one playback sample. Exposed so hosts with their own
// scheduling can drive the correlator directly; the internal loop
// calls it every tick interval.
func (c *Correlator) Tick(positionMs int64) {
	shiftMs := int64(c.cfg.TimeShiftSec) * 1000

	c.mu.Lock()
	seg, inSegment := c.set.Containing(positionMs, shiftMs)
	switch {
	case inSegment && c.cfg.Mode == ModeAuto:
		if c.hasAutoSkipped {
			c.mu.Unlock()
			return
		}
		c.hasAutoSkipped = true
		shown := c.affordanceShown
		c.affordanceShown = false
		c.mu.Unlock()

		target := seg.EndMs() + shiftMs
		c.logger.Info("auto skip",
			logging.Int64(logging.FieldPositionMs, positionMs),
			logging.Int64("target_ms", target))
		c.clock.SeekTo(target)
		c.sink.NotifySkipped(seg)
		if shown {
			c.sink.HideSkipAffordance()
		}

	case inSegment:
		if c.affordanceShown {
			c.mu.Unlock()
			return
		}
		c.affordanceShown = true
		c.mu.Unlock()
		c.sink.ShowSkipAffordance(seg)

	default:
		if !c.affordanceShown {
			c.mu.Unlock()
			return
		}
		c.affordanceShown = false
		c.mu.Unlock()
		c.sink.HideSkipAffordance()
	}
}

// SkipNow serves the affordance's click path. It re-checks containment
// with truncated millisecond boundaries, which is how the original
// click handler computed them; at a segment edge this can disagree
// with the tick path by one millisecond. Returns false when the
// position is no longer inside a segment.
func (c *Correlator) SkipNow() bool {
	positionMs := c.clock.PositionMs()
	shiftMs := int64(c.cfg.TimeShiftSec) * 1000

	c.mu.Lock()
	seg, ok := c.set.ContainingTrunc(positionMs, shiftMs)
	if !ok {
		shown := c.affordanceShown
		c.affordanceShown = false
		c.mu.Unlock()
		if shown {
			c.sink.HideSkipAffordance()
		}
		return false
	}
	shown := c.affordanceShown
	c.affordanceShown = false
	c.mu.Unlock()

	c.clock.SeekTo(seg.EndMsTrunc() + shiftMs)
	if shown {
		c.sink.HideSkipAffordance()
	}
	return true
}

// Upcoming reports a segment starting within windowMs of the current
// position, for hosts that pre-surface the affordance.
func (c *Correlator) Upcoming(windowMs int64) (segments.Segment, bool) {
	positionMs := c.clock.PositionMs()
	shiftMs := int64(c.cfg.TimeShiftSec) * 1000
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set.Upcoming(positionMs, shiftMs, windowMs)
}
