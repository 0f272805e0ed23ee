package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"segue/internal/segments"
	"segue/internal/services"
)

// IntroDB submissions must describe a plausible intro.
const (
	introDBMinDurationSec = 5.0
	introDBMaxDurationSec = 180.0
)

// IntroDBClient talks to the IntroDB community database: the final
// read tier of the fallback chain and the only write-back target.
// Reads are unauthenticated; writes require an API key ("idb_..."
// format) in the X-API-Key header.
type IntroDBClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// SubmitResult reports the outcome of a segment submission in terms a
// host can show to a user.
type SubmitResult struct {
	Success bool
	Message string
}

// IntroDBOption configures an IntroDBClient.
type IntroDBOption func(*IntroDBClient)

// WithIntroDBHTTPClient overrides the default HTTP client.
func WithIntroDBHTTPClient(client *http.Client) IntroDBOption {
	return func(c *IntroDBClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewIntroDB creates an IntroDB client. The apiKey is only needed for
// submissions and may be empty.
func NewIntroDB(baseURL, apiKey string, timeout time.Duration, opts ...IntroDBOption) (*IntroDBClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("introdb base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &IntroDBClient{
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
func (c *IntroDBClient) Name() string { return "introdb" }

// Available implements Client. Reads need no credential.
func (c *IntroDBClient) Available(req Request) bool {
	return req.Identity.HasImdb()
}

// CanSubmit reports whether a write-back key is configured.
func (c *IntroDBClient) CanSubmit() bool {
	return c.apiKey != ""
}

// Fetch implements Client.
func (c *IntroDBClient) Fetch(ctx context.Context, req Request) (segments.Set, error) {
	endpoint := fmt.Sprintf("%s/intro?imdb_id=%s&season=%d&episode=%d",
		c.baseURL, req.Identity.ImdbID, req.Identity.Season, req.Identity.Episode)

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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return segments.Set{}, fmt.Errorf("read introdb response: %w", err)
	}
	segs := parseFlexibleSegments(body)
	if len(segs) == 0 {
		return segments.Set{}, nil
	}
	return segments.Set{Segments: segs, Source: c.Name()}, nil
}

// Submit sends a segment to the community database. apiKey overrides
// the configured key when non-empty. Validation and HTTP status
// problems come back as an unsuccessful SubmitResult; only transport
// failures are errors.
func (c *IntroDBClient) Submit(ctx context.Context, apiKey, imdbID string, season, episode int, startSec, endSec float64) (SubmitResult, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = c.apiKey
	}
	if key == "" {
		return SubmitResult{Message: "api key is empty"}, nil
	}

	duration := endSec - startSec
	if duration < introDBMinDurationSec || duration > introDBMaxDurationSec {
		return SubmitResult{
			Message: fmt.Sprintf("duration must be 5-180 seconds (got %.1fs)", duration),
		}, nil
	}

	payload, err := json.Marshal(map[string]any{
		"imdb_id":   imdbID,
		"season":    season,
		"episode":   episode,
		"start_sec": startSec,
		"end_sec":   endSec,
	})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("encode submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", bytes.NewReader(payload))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", key)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var ack struct {
			OK bool `json:"ok"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil || !ack.OK {
			return SubmitResult{Message: "unexpected response"}, nil
		}
		return SubmitResult{Success: true, Message: "submission successful"}, nil
	case http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return SubmitResult{Message: "invalid request: " + strings.TrimSpace(string(body))}, nil
	case http.StatusUnauthorized:
		return SubmitResult{Message: "invalid api key"}, nil
	case http.StatusTooManyRequests:
		return SubmitResult{Message: "rate limited (1/episode/10min)"}, nil
	default:
		return SubmitResult{Message: fmt.Sprintf("error %d", resp.StatusCode)}, nil
	}
}

// parseFlexibleSegments tolerates the historic response shapes: one
// segment object, a map of named segment objects, or an array, with
// start/end under any of three key spellings.
func parseFlexibleSegments(body []byte) []segments.Segment {
	extract := func(raw json.RawMessage) (segments.Segment, bool) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return segments.Segment{}, false
		}
		start, okStart := flexibleNumber(obj, "start", "start_sec", "startTime")
		end, okEnd := flexibleNumber(obj, "end", "end_sec", "endTime")
		if !okStart || !okEnd {
			return segments.Segment{}, false
		}
		return segments.Segment{StartSec: start, EndSec: end}, true
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(body, &arr); err == nil {
		var segs []segments.Segment
		for _, raw := range arr {
			if seg, ok := extract(raw); ok {
				segs = append(segs, seg)
			}
		}
		return segs
	}

	if seg, ok := extract(body); ok {
		return []segments.Segment{seg}
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(body, &nested); err == nil {
		var segs []segments.Segment
		for _, raw := range nested {
			if seg, ok := extract(raw); ok {
				segs = append(segs, seg)
			}
		}
		return segs
	}
	return nil
}

func flexibleNumber(obj map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var value float64
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, true
		}
	}
	return 0, false
}
