package scrobble

import (
	"context"
	"errors"
	"sync"
	"testing"

	"segue/internal/identity"
)

type event struct {
	kind     string
	imdbID   string
	progress float64
}

type fakeTracker struct {
	mu         sync.Mutex
	events     []event
	stopAction string
	err        error
}

func (f *fakeTracker) record(kind string, id identity.Identity, progress float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{kind, id.ImdbID, progress})
}

func (f *fakeTracker) Start(ctx context.Context, id identity.Identity, progress float64) (string, error) {
	f.record("start", id, progress)
	return ActionStart, f.err
}

func (f *fakeTracker) Pause(ctx context.Context, id identity.Identity, progress float64) (string, error) {
	f.record("pause", id, progress)
	return ActionPause, f.err
}

func (f *fakeTracker) Stop(ctx context.Context, id identity.Identity, progress float64) (string, error) {
	f.record("stop", id, progress)
	if f.err != nil {
		return "", f.err
	}
	if f.stopAction != "" {
		return f.stopAction, nil
	}
	return ActionPause, nil
}

func (f *fakeTracker) log() []event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]event(nil), f.events...)
}

func resolvedIdentity() identity.Identity {
	return identity.Identity{ShowName: "Dark", ImdbID: "tt5753856", Season: 1, Episode: 1}
}

func TestSessionTransitions(t *testing.T) {
	tracker := &fakeTracker{stopAction: ActionPause}
	session := NewSession(tracker, resolvedIdentity(), nil)
	ctx := context.Background()

	// 10 min into a 60 min episode.
	session.SetPlaying(ctx, true, 600000, 3600000)
	if session.State() != Watching {
		t.Fatalf("state = %v", session.State())
	}
	session.SetPlaying(ctx, false, 1200000, 3600000)
	if session.State() != Paused {
		t.Fatalf("state = %v", session.State())
	}
	session.SetPlaying(ctx, true, 1200000, 3600000)
	action := session.Release(ctx, 1800000, 3600000)
	if action != ActionPause {
		t.Fatalf("release action = %q", action)
	}

	events := tracker.log()
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.kind
	}
	want := []string{"start", "pause", "start", "stop"}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
}

func TestSessionEventsOnlyOnTransitions(t *testing.T) {
	tracker := &fakeTracker{}
	session := NewSession(tracker, resolvedIdentity(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		session.SetPlaying(ctx, true, int64(600000+i), 3600000)
	}
	if got := len(tracker.log()); got != 1 {
		t.Fatalf("repeated playing samples emitted %d events", got)
	}
}

func TestSessionProgressClampedToMinimum(t *testing.T) {
	tracker := &fakeTracker{}
	session := NewSession(tracker, resolvedIdentity(), nil)

	session.SetPlaying(context.Background(), true, 0, 3600000)
	events := tracker.log()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].progress != MinProgress {
		t.Fatalf("progress = %v, want %v", events[0].progress, MinProgress)
	}
}

func TestSessionProgressMonotonicWhileWatching(t *testing.T) {
	tracker := &fakeTracker{}
	session := NewSession(tracker, resolvedIdentity(), nil)
	ctx := context.Background()

	session.SetPlaying(ctx, true, 600000, 3600000)
	session.SetPlaying(ctx, false, 1800000, 3600000)
	// Release reports at least the last progress seen even if the
	// final sample went backwards.
	session.SetPlaying(ctx, true, 1800000, 3600000)
	session.Release(ctx, 0, 3600000)

	events := tracker.log()
	last := 0.0
	for _, e := range events {
		if e.progress < last {
			t.Fatalf("progress went backwards: %v after %v", e.progress, last)
		}
		if e.progress < MinProgress {
			t.Fatalf("progress %v below minimum", e.progress)
		}
		last = e.progress
	}
}

func TestSessionSuppressesStartWithoutIdentity(t *testing.T) {
	tracker := &fakeTracker{}
	unresolved := identity.Identity{ShowName: "Unknown Show", Season: 1, Episode: 1}
	session := NewSession(tracker, unresolved, nil)
	ctx := context.Background()

	session.SetPlaying(ctx, true, 600000, 3600000)
	if session.State() != Watching {
		t.Fatalf("state = %v, machine should advance without an id", session.State())
	}
	session.SetPlaying(ctx, false, 700000, 3600000)
	if got := len(tracker.log()); got != 0 {
		t.Fatalf("no events should be sent without an id, got %d", got)
	}
}

func TestSessionIdentityBackfillSendsDeferredStart(t *testing.T) {
	tracker := &fakeTracker{}
	unresolved := identity.Identity{ShowName: "Dark", Season: 1, Episode: 1}
	session := NewSession(tracker, unresolved, nil)
	ctx := context.Background()

	session.SetPlaying(ctx, true, 600000, 3600000)
	session.UpdateIdentity(ctx, resolvedIdentity())

	events := tracker.log()
	if len(events) != 1 || events[0].kind != "start" {
		t.Fatalf("events = %v, want one deferred start", events)
	}
	if events[0].imdbID != "tt5753856" {
		t.Fatalf("deferred start imdb = %q", events[0].imdbID)
	}
	if session.State() != Watching {
		t.Fatalf("backfill must not reset state, got %v", session.State())
	}
}

func TestSessionBackfillWhilePausedDoesNotSwallowLaterEvents(t *testing.T) {
	tracker := &fakeTracker{stopAction: ActionScrobble}
	unresolved := identity.Identity{ShowName: "Dark", Season: 1, Episode: 1}
	session := NewSession(tracker, unresolved, nil)
	ctx := context.Background()

	// Identity resolves while the item sits paused; the deferred start
	// fires on the next play edge, and the pause and stop edges after
	// it must still reach the tracker.
	session.SetPlaying(ctx, true, 600000, 3600000)
	session.SetPlaying(ctx, false, 700000, 3600000)
	session.UpdateIdentity(ctx, resolvedIdentity())
	session.SetPlaying(ctx, true, 700000, 3600000)
	session.SetPlaying(ctx, false, 3240000, 3600000)
	action := session.Release(ctx, 3240000, 3600000)

	if action != ActionScrobble {
		t.Fatalf("release action = %q, want %q", action, ActionScrobble)
	}
	events := tracker.log()
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.kind
	}
	want := []string{"start", "pause", "stop"}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
	for _, e := range events {
		if e.imdbID != "tt5753856" {
			t.Fatalf("event %q carried imdb %q", e.kind, e.imdbID)
		}
	}
}

func TestSessionReleaseReportsWatched(t *testing.T) {
	tracker := &fakeTracker{stopAction: ActionScrobble}
	session := NewSession(tracker, resolvedIdentity(), nil)
	ctx := context.Background()

	session.SetPlaying(ctx, true, 0, 3600000)
	// 90% watched.
	action := session.Release(ctx, 3240000, 3600000)
	if action != ActionScrobble {
		t.Fatalf("action = %q, want %q", action, ActionScrobble)
	}
	if session.State() != Stopped {
		t.Fatalf("state = %v", session.State())
	}
}

func TestSessionTrackerFailureDoesNotBlockMachine(t *testing.T) {
	tracker := &fakeTracker{err: errors.New("trakt down")}
	session := NewSession(tracker, resolvedIdentity(), nil)
	ctx := context.Background()

	session.SetPlaying(ctx, true, 600000, 3600000)
	if session.State() != Watching {
		t.Fatalf("state = %v despite tracker failure", session.State())
	}
	if action := session.Release(ctx, 1200000, 3600000); action != "" {
		t.Fatalf("failed stop should report empty action, got %q", action)
	}
	if session.State() != Stopped {
		t.Fatalf("state = %v", session.State())
	}
}

func TestSessionReleaseIdempotent(t *testing.T) {
	tracker := &fakeTracker{}
	session := NewSession(tracker, resolvedIdentity(), nil)
	ctx := context.Background()

	session.SetPlaying(ctx, true, 600000, 3600000)
	session.Release(ctx, 1200000, 3600000)
	session.Release(ctx, 1200000, 3600000)

	stops := 0
	for _, e := range tracker.log() {
		if e.kind == "stop" {
			stops++
		}
	}
	if stops != 1 {
		t.Fatalf("stop sent %d times", stops)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name       string
		positionMs int64
		durationMs int64
		want       float64
	}{
		{"halfway", 1800000, 3600000, 50},
		{"zero position", 0, 3600000, MinProgress},
		{"zero duration", 1000, 0, MinProgress},
		{"past end", 4000000, 3600000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.positionMs, tt.durationMs); got != tt.want {
				t.Fatalf("Progress(%d, %d) = %v, want %v", tt.positionMs, tt.durationMs, got, tt.want)
			}
		})
	}
}
