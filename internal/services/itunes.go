// iTunes Search API implementation of [SearchService]
//
// Response types based on https://performance-partners.apple.com/search-api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultITunesBaseURL = "https://itunes.apple.com"

// Browser user agents rotated per request; the search endpoint throttles
// unfamiliar clients aggressively.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
}

// ITunesService implements [SearchService] against the iTunes Search API.
//
// The API is keyless; the only access control is an undocumented rate limit,
// so every request passes through a [rate.Limiter] ceiling and carries a
// rotated browser user agent.
type ITunesService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	rng        *rand.Rand
}

// ITunesOpts contains configuration options for creating an ITunesService.
type ITunesOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	RateLimit  float64       // requests per second ceiling, 0 disables
	Timeout    time.Duration // per-call bound, defaults to 20s
}

// NewITunesService creates a new iTunes Search API client.
func NewITunesService(opts ITunesOpts) *ITunesService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultITunesBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &ITunesService{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		timeout:    opts.Timeout,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Name returns the catalog name.
func (s *ITunesService) Name() string {
	return "iTunes"
}

// SearchSongs queries GET /search?term={term}&entity=song&limit={limit}.
//
// Returns candidates in the API's ranking order. Non-2xx statuses surface as
// [*StatusError]; transport failures (including the per-call timeout) pass
// through untyped for the caller's retry policy.
func (s *ITunesService) SearchSongs(ctx context.Context, term string, limit int) ([]Candidate, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("term", term)
	query.Set("entity", "song")
	query.Set("limit", fmt.Sprintf("%d", limit))
	apiURL := fmt.Sprintf("%s/search?%s", s.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[s.rng.Intn(len(userAgents))])

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var result struct {
		ResultCount int         `json:"resultCount"`
		Results     []Candidate `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Results, nil
}
