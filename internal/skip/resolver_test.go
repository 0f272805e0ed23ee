package skip

import (
	"context"
	"errors"
	"sync"
	"testing"

	"segue/internal/identity"
	"segue/internal/providers"
	"segue/internal/segments"
)

type fakeClient struct {
	name      string
	available bool
	set       segments.Set
	err       error
	calls     int
}

func (f *fakeClient) Name() string                  { return f.name }
func (f *fakeClient) Available(providers.Request) bool { return f.available }
func (f *fakeClient) Fetch(ctx context.Context, req providers.Request) (segments.Set, error) {
	f.calls++
	return f.set, f.err
}

type fakeWriter struct {
	mu      sync.Mutex
	can     bool
	calls   []string
	result  providers.SubmitResult
	err     error
}

func (f *fakeWriter) CanSubmit() bool { return f.can }
func (f *fakeWriter) Submit(ctx context.Context, apiKey, imdbID string, season, episode int, startSec, endSec float64) (providers.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, imdbID)
	return f.result, f.err
}

func (f *fakeWriter) submissions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testIdentity() identity.Identity {
	return identity.Identity{
		ShowName: "Some Show",
		ImdbID:   "tt0903747",
		Season:   1,
		Episode:  3,
	}
}

func oneSegment(source string) segments.Set {
	return segments.Set{
		Segments: []segments.Segment{{StartSec: 30, EndSec: 90}},
		Source:   source,
	}
}

func TestResolveFirstNonEmptyWins(t *testing.T) {
	tier1 := &fakeClient{name: "animeskip", available: true}
	tier2 := &fakeClient{name: "skipdb", available: true, set: oneSegment("skipdb")}
	tier3 := &fakeClient{name: "introhater", available: true, set: oneSegment("introhater")}
	tier4 := &fakeClient{name: "aniskip", available: true}
	tier5 := &fakeClient{name: "introdb", available: true}

	resolver := NewResolver([]providers.Client{tier1, tier2, tier3, tier4, tier5}, nil, nil)
	set := resolver.Resolve(context.Background(), testIdentity())

	if set.Source != "skipdb" {
		t.Fatalf("winner = %q", set.Source)
	}
	if tier3.calls != 0 || tier4.calls != 0 || tier5.calls != 0 {
		t.Fatalf("later tiers were called: %d %d %d", tier3.calls, tier4.calls, tier5.calls)
	}
}

func TestResolveErrorAdvancesTier(t *testing.T) {
	tier1 := &fakeClient{name: "animeskip", available: true, err: errors.New("timeout")}
	tier2 := &fakeClient{name: "skipdb", available: true, set: oneSegment("skipdb")}

	resolver := NewResolver([]providers.Client{tier1, tier2}, nil, nil)
	set := resolver.Resolve(context.Background(), testIdentity())

	if set.Empty() || set.Source != "skipdb" {
		t.Fatalf("expected tier 2 result, got %+v", set)
	}
}

func TestResolveUnavailableTierSkipped(t *testing.T) {
	tier1 := &fakeClient{name: "introhater", available: false, set: oneSegment("introhater")}
	tier2 := &fakeClient{name: "introdb", available: true, set: oneSegment("introdb")}

	resolver := NewResolver([]providers.Client{tier1, tier2}, nil, nil)
	set := resolver.Resolve(context.Background(), testIdentity())

	if tier1.calls != 0 {
		t.Fatal("unavailable tier must not be fetched")
	}
	if set.Source != "introdb" {
		t.Fatalf("winner = %q", set.Source)
	}
}

func TestResolveAllEmpty(t *testing.T) {
	tier1 := &fakeClient{name: "animeskip", available: true}
	tier2 := &fakeClient{name: "introdb", available: true}

	resolver := NewResolver([]providers.Client{tier1, tier2}, nil, nil)
	set := resolver.Resolve(context.Background(), testIdentity())
	if !set.Empty() {
		t.Fatalf("expected empty set, got %+v", set)
	}
}

func TestResolveWriteBackOnNonTerminalWin(t *testing.T) {
	winner := &fakeClient{name: "skipdb", available: true, set: oneSegment("skipdb")}
	writer := &fakeWriter{can: true, result: providers.SubmitResult{Success: true}}

	var cbResult providers.SubmitResult
	var cbMu sync.Mutex
	resolver := NewResolver([]providers.Client{winner}, writer, nil,
		WithAutoSubmitCallback(func(result providers.SubmitResult) {
			cbMu.Lock()
			cbResult = result
			cbMu.Unlock()
		}))

	resolver.Resolve(context.Background(), testIdentity())
	resolver.Wait()

	if writer.submissions() != 1 {
		t.Fatalf("expected one write-back, got %d", writer.submissions())
	}
	cbMu.Lock()
	defer cbMu.Unlock()
	if !cbResult.Success {
		t.Fatalf("callback result = %+v", cbResult)
	}
}

func TestResolveNoWriteBackForTerminalTier(t *testing.T) {
	terminal := &fakeClient{name: "introdb", available: true, set: oneSegment("introdb")}
	writer := &fakeWriter{can: true, result: providers.SubmitResult{Success: true}}

	resolver := NewResolver([]providers.Client{terminal}, writer, nil)
	resolver.Resolve(context.Background(), testIdentity())
	resolver.Wait()

	if writer.submissions() != 0 {
		t.Fatalf("terminal tier result must not be echoed back, got %d submissions", writer.submissions())
	}
}

func TestResolveNoWriteBackWithoutKey(t *testing.T) {
	winner := &fakeClient{name: "skipdb", available: true, set: oneSegment("skipdb")}
	writer := &fakeWriter{can: false}

	resolver := NewResolver([]providers.Client{winner}, writer, nil)
	resolver.Resolve(context.Background(), testIdentity())
	resolver.Wait()

	if writer.submissions() != 0 {
		t.Fatal("write-back requires a configured key")
	}
}

func TestResolveNoWriteBackWithoutImdb(t *testing.T) {
	winner := &fakeClient{name: "animeskip", available: true, set: oneSegment("animeskip")}
	writer := &fakeWriter{can: true}

	resolver := NewResolver([]providers.Client{winner}, writer, nil)
	id := testIdentity()
	id.ImdbID = ""
	resolver.Resolve(context.Background(), id)
	resolver.Wait()

	if writer.submissions() != 0 {
		t.Fatal("write-back requires an imdb id")
	}
}
