package providers

import (
	"bytes"
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

// AnimeSkip timestamp type UUIDs. Only intro-flavored timestamps
// become skip segments.
const (
	animeSkipTypeIntros      = "14550023-2589-46f0-bfb4-152976506b4c"
	animeSkipTypeNewIntros   = "679fb610-ff3c-4cf4-83c0-75bcc7fe8778"
	animeSkipTypeMixedIntros = "cbb42238-d285-4c88-9e91-feab4bb8ae0a"
)

// Timestamps carry no end point. When the following timestamp is
// unknown the segment is closed this many seconds after its start.
const animeSkipDefaultSegmentSec = 90.0

// AnimeSkipClient queries the anime-skip.com GraphQL API for community
// episode timestamps. Requests authenticate with a shared client ID;
// an account auth token is optional and sent as a bearer token when
// present.
type AnimeSkipClient struct {
	endpoint   string
	clientID   string
	authToken  string
	httpClient *http.Client
}

// AnimeSkipOption configures an AnimeSkipClient.
type AnimeSkipOption func(*AnimeSkipClient)

// WithAnimeSkipHTTPClient overrides the default HTTP client.
func WithAnimeSkipHTTPClient(client *http.Client) AnimeSkipOption {
	return func(c *AnimeSkipClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewAnimeSkip creates an AnimeSkip client.
func NewAnimeSkip(endpoint, clientID, authToken string, timeout time.Duration, opts ...AnimeSkipOption) (*AnimeSkipClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("animeskip endpoint required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &AnimeSkipClient{
		endpoint:   endpoint,
		clientID:   strings.TrimSpace(clientID),
		authToken:  strings.TrimSpace(authToken),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name implements Client.
func (c *AnimeSkipClient) Name() string { return "animeskip" }

// Available implements Client. The API is keyed on show and episode
// names, not external IDs, so a show name and the shared client ID are
// all that is required.
func (c *AnimeSkipClient) Available(req Request) bool {
	return c.clientID != "" && req.Identity.ShowName != ""
}

type animeSkipTimestamp struct {
	At     float64 `json:"at"`
	TypeID string  `json:"typeId"`
}

// Fetch implements Client: search shows by name, take the first match,
// then look up the episode by its synthetic name and turn intro-typed
// timestamps into segments.
func (c *AnimeSkipClient) Fetch(ctx context.Context, req Request) (segments.Set, error) {
	showID, err := c.searchShow(ctx, req.Identity.ShowName)
	if err != nil {
		return segments.Set{}, err
	}
	if showID == "" {
		return segments.Set{}, nil
	}
	timestamps, err := c.findEpisodeTimestamps(ctx, showID, req.Identity.EpisodeName())
	if err != nil {
		return segments.Set{}, err
	}

	var segs []segments.Segment
	for _, ts := range timestamps {
		if !animeSkipIsIntroType(ts.TypeID) {
			continue
		}
		segs = append(segs, segments.Segment{
			StartSec: ts.At,
			EndSec:   ts.At + animeSkipDefaultSegmentSec,
		})
	}
	if len(segs) == 0 {
		return segments.Set{}, nil
	}
	return segments.Set{Segments: segs, Source: c.Name()}, nil
}

func animeSkipIsIntroType(typeID string) bool {
	switch typeID {
	case animeSkipTypeIntros, animeSkipTypeNewIntros, animeSkipTypeMixedIntros:
		return true
	}
	return false
}

func (c *AnimeSkipClient) searchShow(ctx context.Context, showName string) (string, error) {
	query := fmt.Sprintf(`query { searchShows(search: %s, limit: 5) { id name originalName } }`,
		graphqlString(showName))
	data, err := c.execute(ctx, query)
	if err != nil {
		return "", err
	}
	var payload struct {
		SearchShows []struct {
			ID string `json:"id"`
		} `json:"searchShows"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode searchShows: %w", err)
	}
	if len(payload.SearchShows) == 0 {
		return "", nil
	}
	return payload.SearchShows[0].ID, nil
}

func (c *AnimeSkipClient) findEpisodeTimestamps(ctx context.Context, showID, episodeName string) ([]animeSkipTimestamp, error) {
	query := fmt.Sprintf(`query { findEpisodeByName(showId: %s, name: %s) { id timestamps { at typeId } } }`,
		graphqlString(showID), graphqlString(episodeName))
	data, err := c.execute(ctx, query)
	if err != nil {
		return nil, err
	}
	var payload struct {
		FindEpisodeByName *struct {
			Timestamps []animeSkipTimestamp `json:"timestamps"`
		} `json:"findEpisodeByName"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode findEpisodeByName: %w", err)
	}
	if payload.FindEpisodeByName == nil {
		return nil, nil
	}
	return payload.FindEpisodeByName.Timestamps, nil
}

// execute posts a GraphQL query and returns the raw data object.
// GraphQL-level errors are surfaced as Go errors since the caller
// treats any failure as an empty tier.
func (c *AnimeSkipClient) execute(ctx context.Context, query string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", c.clientID)
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, services.Wrap(services.ErrConfiguration, "animeskip", "execute", "rejected credentials", nil)
	default:
		return nil, services.Wrap(services.ErrTransient, "animeskip", "execute", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var payload struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode animeskip response: %w", err)
	}
	if len(payload.Errors) > 0 {
		return nil, fmt.Errorf("animeskip graphql error: %s", payload.Errors[0].Message)
	}
	return payload.Data, nil
}

// graphqlString quotes a value for inline inclusion in a query.
func graphqlString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}
