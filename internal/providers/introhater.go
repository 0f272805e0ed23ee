package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"segue/internal/segments"
	"segue/internal/services"
)

// IntroHaterClient queries introhater.com. The service has no keys of
// its own; it authenticates with the user's debrid service API key
// (TorBox, Real-Debrid, AllDebrid, Premiumize) in the X-API-Key
// header.
type IntroHaterClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// IntroHaterOption configures an IntroHaterClient.
type IntroHaterOption func(*IntroHaterClient)

// WithIntroHaterHTTPClient overrides the default HTTP client.
func WithIntroHaterHTTPClient(client *http.Client) IntroHaterOption {
	return func(c *IntroHaterClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewIntroHater creates an IntroHater client. An empty apiKey is
// allowed; the provider just reports itself unavailable.
func NewIntroHater(baseURL, apiKey string, timeout time.Duration, opts ...IntroHaterOption) (*IntroHaterClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("introhater base url required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &IntroHaterClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements Client.
func (c *IntroHaterClient) Name() string { return "introhater" }

// Available implements Client.
func (c *IntroHaterClient) Available(req Request) bool {
	return c.apiKey != "" && req.Identity.HasImdb()
}

type introHaterSegment struct {
	Start     *float64 `json:"start"`
	End       *float64 `json:"end"`
	StartTime *float64 `json:"startTime"`
	EndTime   *float64 `json:"endTime"`
	Label     string   `json:"label"`
	Category  string   `json:"category"`
}

func (s introHaterSegment) bounds() (float64, float64, bool) {
	start, end := s.Start, s.End
	if start == nil {
		start = s.StartTime
	}
	if end == nil {
		end = s.EndTime
	}
	if start == nil || end == nil {
		return 0, 0, false
	}
	return *start, *end, true
}

// Fetch implements Client. Video IDs are "imdb:season:episode"; a 404
// means no data and is not an error.
func (c *IntroHaterClient) Fetch(ctx context.Context, req Request) (segments.Set, error) {
	videoID := fmt.Sprintf("%s:%d:%d", req.Identity.ImdbID, req.Identity.Season, req.Identity.Episode)
	endpoint := fmt.Sprintf("%s/segments/%s", c.baseURL, videoID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return segments.Set{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return segments.Set{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return segments.Set{}, nil
	case http.StatusUnauthorized:
		return segments.Set{}, services.Wrap(services.ErrConfiguration, c.Name(), "fetch", "rejected api key", nil)
	case http.StatusTooManyRequests:
		return segments.Set{}, services.Wrap(services.ErrTransient, c.Name(), "fetch", "rate limited", nil)
	default:
		return segments.Set{}, services.Wrap(services.ErrTransient, c.Name(), "fetch", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	// The documented shape is a bare array; some deployments wrap it
	// in {"segments": [...]}.
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return segments.Set{}, fmt.Errorf("decode introhater response: %w", err)
	}
	var entries []introHaterSegment
	if err := json.Unmarshal(raw, &entries); err != nil {
		var wrapped struct {
			Segments []introHaterSegment `json:"segments"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return segments.Set{}, fmt.Errorf("decode introhater segments: %w", err)
		}
		entries = wrapped.Segments
	}

	var segs []segments.Segment
	for _, entry := range entries {
		start, end, ok := entry.bounds()
		if !ok {
			continue
		}
		segs = append(segs, segments.Segment{StartSec: start, EndSec: end})
	}
	if len(segs) == 0 {
		return segments.Set{}, nil
	}
	return segments.Set{Segments: segs, Source: c.Name()}, nil
}
