package scrobble

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"segue/internal/identity"
	"segue/internal/services"
)

// Action values Trakt reports back on scrobble events.
const (
	// ActionScrobble means the item was marked watched (progress at
	// or past the service's 80% threshold on stop).
	ActionScrobble = "scrobble"
	// ActionPause means progress was saved for resuming.
	ActionPause = "pause"
	// ActionStart means the item is now tracked as watching.
	ActionStart = "start"
)

// TraktClient implements Tracker against the Trakt v2 API.
type TraktClient struct {
	baseURL     string
	clientID    string
	accessToken string
	httpClient  *http.Client
}

// TraktOption configures a TraktClient.
type TraktOption func(*TraktClient)

// WithTraktHTTPClient overrides the default HTTP client.
func WithTraktHTTPClient(client *http.Client) TraktOption {
	return func(c *TraktClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewTrakt creates a Trakt client.
func NewTrakt(baseURL, clientID, accessToken string, timeout time.Duration, opts ...TraktOption) (*TraktClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("trakt base url required")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errors.New("trakt client id required")
	}
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, errors.New("trakt access token required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &TraktClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		clientID:    clientID,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Start implements Tracker.
func (c *TraktClient) Start(ctx context.Context, id identity.Identity, progress float64) (string, error) {
	return c.scrobble(ctx, "/scrobble/start", id, progress)
}

// Pause implements Tracker.
func (c *TraktClient) Pause(ctx context.Context, id identity.Identity, progress float64) (string, error) {
	return c.scrobble(ctx, "/scrobble/pause", id, progress)
}

// Stop implements Tracker. Trakt decides watched-versus-paused from
// the progress: at 80% or more the returned action is "scrobble".
func (c *TraktClient) Stop(ctx context.Context, id identity.Identity, progress float64) (string, error) {
	return c.scrobble(ctx, "/scrobble/stop", id, progress)
}

func (c *TraktClient) scrobble(ctx context.Context, path string, id identity.Identity, progress float64) (string, error) {
	if !id.HasImdb() {
		return "", services.Wrap(services.ErrValidation, "trakt", "scrobble", "no external id", nil)
	}

	// Items without a season/episode structure scrobble as movies.
	var body map[string]any
	if id.Season > 0 && id.Episode > 0 {
		body = map[string]any{
			"show": map[string]any{
				"ids": map[string]any{"imdb": id.ImdbID},
			},
			"episode": map[string]any{
				"season": id.Season,
				"number": id.Episode,
			},
			"progress": progress,
		}
	} else {
		body = map[string]any{
			"movie": map[string]any{
				"ids": map[string]any{"imdb": id.ImdbID},
			},
			"progress": progress,
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode scrobble body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("trakt-api-version", "2")
	req.Header.Set("trakt-api-key", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", services.Wrap(services.ErrConfiguration, "trakt", path, "rejected access token", nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", services.Wrap(services.ErrTransient, "trakt", path, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var ack struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return "", fmt.Errorf("decode trakt response: %w", err)
	}
	return ack.Action, nil
}
