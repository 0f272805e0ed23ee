package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/webtor-io/lazymap"

	"segue/internal/segments"
	"segue/internal/services"
)

// SkipDBClient serves the community skip database. The provider
// publishes its whole dataset as one JSON document; lookups download
// it once, cache it for a short TTL, and match locally. Concurrent
// lookups share a single in-flight download.
type SkipDBClient struct {
	url        string
	httpClient *http.Client

	db *lazymap.LazyMap[[]skipDBEntry]

	// Last successful download, reused when a refresh fails so a
	// flaky upstream degrades to slightly stale data instead of none.
	mu    sync.Mutex
	stale []skipDBEntry
}

type skipDBEntry struct {
	EpisodeID string  `json:"episodeId"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Title     string  `json:"title"`
}

// SkipDBOption configures a SkipDBClient.
type SkipDBOption func(*SkipDBClient)

// WithSkipDBHTTPClient overrides the default HTTP client.
func WithSkipDBHTTPClient(client *http.Client) SkipDBOption {
	return func(c *SkipDBClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewSkipDB creates a SkipDB client. cacheTTL bounds how long a
// downloaded database is reused; zero or negative selects the
// 5-minute default.
func NewSkipDB(url string, timeout, cacheTTL time.Duration, opts ...SkipDBOption) (*SkipDBClient, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("skipdb url required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	client := &SkipDBClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		db: lazymap.New[[]skipDBEntry](&lazymap.Config{
			Expire:      cacheTTL,
			ErrorExpire: 15 * time.Second,
		}),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements Client.
func (c *SkipDBClient) Name() string { return "skipdb" }

// Available implements Client. Entries are keyed on IMDB IDs.
func (c *SkipDBClient) Available(req Request) bool {
	return req.Identity.HasImdb()
}

// Fetch implements Client. The database is matched in three passes:
// exact "imdb:episode" key (absolute numbering), then a title scan for
// the SxxExx pattern under the same show, matching the upstream
// lookup order.
func (c *SkipDBClient) Fetch(ctx context.Context, req Request) (segments.Set, error) {
	entries, err := c.database(ctx)
	if err != nil {
		return segments.Set{}, err
	}
	if len(entries) == 0 {
		return segments.Set{}, nil
	}

	imdbID := req.Identity.ImdbID
	if !strings.HasPrefix(imdbID, "tt") {
		imdbID = "tt" + imdbID
	}

	entry := findSkipDBEntry(entries, imdbID, req.Identity.Season, req.Identity.Episode)
	if entry == nil {
		return segments.Set{}, nil
	}
	return segments.Set{
		Segments: []segments.Segment{{StartSec: entry.Start, EndSec: entry.End}},
		Source:   c.Name(),
	}, nil
}

func findSkipDBEntry(entries []skipDBEntry, imdbID string, season, episode int) *skipDBEntry {
	exactKey := fmt.Sprintf("%s:%d", imdbID, episode)
	for i := range entries {
		if entries[i].EpisodeID == exactKey {
			return &entries[i]
		}
	}
	pattern := fmt.Sprintf("S%02dE%02d", season, episode)
	for i := range entries {
		entry := &entries[i]
		if strings.HasPrefix(entry.EpisodeID, imdbID) &&
			strings.Contains(strings.ToUpper(entry.Title), pattern) {
			return entry
		}
	}
	return nil
}

// database returns the cached dataset, downloading when the TTL has
// lapsed. A failed refresh falls back to the last good download.
func (c *SkipDBClient) database(ctx context.Context) ([]skipDBEntry, error) {
	entries, err := c.db.Get("db", func() ([]skipDBEntry, error) {
		return c.download(ctx)
	})
	if err != nil {
		c.mu.Lock()
		stale := c.stale
		c.mu.Unlock()
		if stale != nil {
			return stale, nil
		}
		return nil, err
	}
	c.mu.Lock()
	c.stale = entries
	c.mu.Unlock()
	return entries, nil
}

func (c *SkipDBClient) download(ctx context.Context) ([]skipDBEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "skipdb", "download", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var entries []skipDBEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode skipdb database: %w", err)
	}
	return entries, nil
}
