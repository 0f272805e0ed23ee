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

	"golang.org/x/text/cases"
)

// CinemetaMeta represents a single Cinemeta catalog match.
type CinemetaMeta struct {
	ID          string `json:"id"`
	ImdbID      string `json:"imdb_id"`
	Name        string `json:"name"`
	ReleaseInfo string `json:"releaseInfo"`
	Type        string `json:"type"`
}

// CinemetaResponse models the Cinemeta catalog search payload.
type CinemetaResponse struct {
	Metas []CinemetaMeta `json:"metas"`
}

// CinemetaClient queries the Stremio Cinemeta catalog for IMDB identifiers.
type CinemetaClient struct {
	baseURL    string
	httpClient *http.Client
}

// CinemetaOption configures a CinemetaClient.
type CinemetaOption func(*CinemetaClient)

// WithCinemetaHTTPClient overrides the default HTTP client.
func WithCinemetaHTTPClient(client *http.Client) CinemetaOption {
	return func(c *CinemetaClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewCinemeta creates a Cinemeta catalog client.
func NewCinemeta(baseURL string, timeout time.Duration, opts ...CinemetaOption) (*CinemetaClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("cinemeta base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &CinemetaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchImdbID searches the catalog for the supplied title and returns
// the IMDB ID of the best-scoring match. contentType is "series" or
// "movie". An empty result set yields an empty ID without error.
func (c *CinemetaClient) SearchImdbID(ctx context.Context, contentType, query string, year int) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", errors.New("query must not be empty")
	}
	if contentType != "series" && contentType != "movie" {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	endpoint := fmt.Sprintf("%s/catalog/%s/top/search=%s.json", c.baseURL, contentType, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cinemeta search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload CinemetaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode cinemeta response: %w", err)
	}

	best := pickCinemetaMeta(payload.Metas, query, year)
	if best == nil {
		return "", nil
	}
	if best.ImdbID != "" {
		return best.ImdbID, nil
	}
	if strings.HasPrefix(best.ID, "tt") {
		return best.ID, nil
	}
	return "", nil
}

// pickCinemetaMeta scores each candidate against the query and year and
// returns the highest scorer, or nil when nothing scores above zero.
func pickCinemetaMeta(metas []CinemetaMeta, query string, year int) *CinemetaMeta {
	var (
		best      *CinemetaMeta
		bestScore int
	)
	for i := range metas {
		meta := &metas[i]
		score := scoreCandidate(meta.Name, metaYear(meta.ReleaseInfo), query, year)
		if score > bestScore {
			best = meta
			bestScore = score
		}
	}
	return best
}

// metaYear extracts the leading year from a Cinemeta releaseInfo value
// such as "1999" or "2013-2019".
func metaYear(releaseInfo string) int {
	releaseInfo = strings.TrimSpace(releaseInfo)
	if len(releaseInfo) < 4 {
		return 0
	}
	year, err := strconv.Atoi(releaseInfo[:4])
	if err != nil {
		return 0
	}
	return year
}

var foldCaser = cases.Fold()

// scoreCandidate ranks a search result against the wanted title and
// year. Exact year matches dominate, adjacent years rank next, then
// title equality and substring containment. When no year is known every
// candidate gets a baseline score so the first result still wins.
func scoreCandidate(name string, candidateYear int, query string, wantYear int) int {
	score := 0
	if wantYear > 0 && candidateYear > 0 {
		diff := candidateYear - wantYear
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 0:
			score += 100
		case 1:
			score += 50
		}
	}
	folded := foldCaser.String(strings.TrimSpace(name))
	wanted := foldCaser.String(strings.TrimSpace(query))
	switch {
	case folded == wanted:
		score += 30
	case strings.Contains(folded, wanted) || strings.Contains(wanted, folded):
		score += 10
	}
	if score == 0 && wantYear == 0 {
		score = 1
	}
	return score
}
