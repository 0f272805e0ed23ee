package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// JikanAnime represents a single Jikan search match.
type JikanAnime struct {
	MalID int    `json:"mal_id"`
	Title string `json:"title"`
	Year  int    `json:"year"`
	Aired struct {
		From string `json:"from"`
	} `json:"aired"`
}

// JikanResponse models the Jikan paginated search payload.
type JikanResponse struct {
	Data []JikanAnime `json:"data"`
}

// JikanClient queries the Jikan (MyAnimeList) API for anime identifiers.
type JikanClient struct {
	baseURL    string
	httpClient *http.Client
}

// JikanOption configures a JikanClient.
type JikanOption func(*JikanClient)

// WithJikanHTTPClient overrides the default HTTP client.
func WithJikanHTTPClient(client *http.Client) JikanOption {
	return func(c *JikanClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewJikan creates a Jikan client.
func NewJikan(baseURL string, timeout time.Duration, opts ...JikanOption) (*JikanClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("jikan base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &JikanClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchMalID searches MyAnimeList for the supplied title and returns
// the MAL ID of the best-scoring match. When nothing scores above zero
// the first result is used as a fallback; an empty result set yields
// zero without error.
func (c *JikanClient) SearchMalID(ctx context.Context, query string, year int) (int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/anime")
	if err != nil {
		return 0, fmt.Errorf("parse jikan url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "5")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return 0, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("jikan search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload JikanResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode jikan response: %w", err)
	}
	if len(payload.Data) == 0 {
		return 0, nil
	}

	var (
		best      *JikanAnime
		bestScore int
	)
	for i := range payload.Data {
		anime := &payload.Data[i]
		score := scoreCandidate(anime.Title, animeYear(anime), query, year)
		if score > bestScore {
			best = anime
			bestScore = score
		}
	}
	if best == nil {
		// Jikan search is fuzzy enough that the top result is usually
		// right even when year and title comparisons both miss.
		best = &payload.Data[0]
	}
	return best.MalID, nil
}

// animeYear prefers the explicit year field and falls back to the year
// component of the aired-from timestamp.
func animeYear(anime *JikanAnime) int {
	if anime.Year > 0 {
		return anime.Year
	}
	from := strings.TrimSpace(anime.Aired.From)
	if len(from) < 4 {
		return 0
	}
	year, err := strconv.Atoi(from[:4])
	if err != nil {
		return 0
	}
	return year
}
