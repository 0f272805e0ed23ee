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

// AniSkipClient queries the AniSkip v2 API, keyed on MyAnimeList IDs
// and absolute episode numbers.
type AniSkipClient struct {
	baseURL    string
	httpClient *http.Client
}

// AniSkipOption configures an AniSkipClient.
type AniSkipOption func(*AniSkipClient)

// WithAniSkipHTTPClient overrides the default HTTP client.
func WithAniSkipHTTPClient(client *http.Client) AniSkipOption {
	return func(c *AniSkipClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewAniSkip creates an AniSkip client.
func NewAniSkip(baseURL string, timeout time.Duration, opts ...AniSkipOption) (*AniSkipClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("aniskip base url required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &AniSkipClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements Client.
func (c *AniSkipClient) Name() string { return "aniskip" }

// Available implements Client.
func (c *AniSkipClient) Available(req Request) bool {
	return req.Identity.HasMal()
}

type aniSkipResponse struct {
	Results []struct {
		SkipType string `json:"skipType"`
		Interval struct {
			StartTime float64 `json:"startTime"`
			EndTime   float64 `json:"endTime"`
		} `json:"interval"`
	} `json:"results"`
}

// Fetch implements Client. Both openings and endings are requested;
// the API requires an episodeLength hint, which is pinned rather than
// derived from the file. A 404 means no data for the episode.
func (c *AniSkipClient) Fetch(ctx context.Context, req Request) (segments.Set, error) {
	endpoint := fmt.Sprintf("%s/skip-times/%d/%d?types[]=op&types[]=ed&episodeLength=1440",
		c.baseURL, req.Identity.MalID, req.Identity.Episode)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return segments.Set{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return segments.Set{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return segments.Set{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return segments.Set{}, services.Wrap(services.ErrTransient, c.Name(), "fetch", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var payload aniSkipResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return segments.Set{}, fmt.Errorf("decode aniskip response: %w", err)
	}

	var segs []segments.Segment
	for _, result := range payload.Results {
		if result.SkipType != "op" && result.SkipType != "ed" {
			continue
		}
		segs = append(segs, segments.Segment{
			StartSec: result.Interval.StartTime,
			EndSec:   result.Interval.EndTime,
		})
	}
	if len(segs) == 0 {
		return segments.Set{}, nil
	}
	return segments.Set{Segments: segs, Source: c.Name()}, nil
}
