// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package searchapi talks to the remote paginated metadata search service.
// It exposes the two queries the pipeline needs: browsing publications by
// category and year, and searching articles by publication number and year.
package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/bibharvest/internal/httputil"
	"github.com/pdiddy/bibharvest/pkg/types"
)

const (
	// DefaultBaseURL is the remote service root.
	DefaultBaseURL = "https://metadata.example.org/rest"

	// DefaultPageSize is the provider-imposed rows-per-page for article
	// search.
	DefaultPageSize = 100

	// DefaultRateLimit is requests per second when the config does not set
	// one. Conservative because sustained crawls run for hours.
	DefaultRateLimit = 1.0

	// DefaultTimeout is the per-request ceiling.
	DefaultTimeout = 60 * time.Second
)

// Client is the search capability consumed by discovery and harvesting.
type Client interface {
	// BrowsePublications returns one page of publications of the given
	// category published in the given year.
	BrowsePublications(ctx context.Context, category types.Category, year, page int) (*PublicationPage, error)

	// SearchArticles returns one page of articles for a publication number
	// restricted to the given year.
	SearchArticles(ctx context.Context, pubNumber string, year, page int) (*ArticlePage, error)
}

// HTTPClient implements Client against the remote REST endpoints, with a
// shared rate limiter and bounded retries on transient failures.
type HTTPClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL      string
	userAgent    string
	apiKey       string
	contactEmail string
	pageSize     int
	maxRetries   int
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL sets a custom service root (for testing).
func WithBaseURL(url string) Option {
	return func(c *HTTPClient) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithAPIKey sets the API key sent with each request.
func WithAPIKey(key string) Option {
	return func(c *HTTPClient) { c.apiKey = key }
}

// WithPageSize overrides the article search page size.
func WithPageSize(n int) Option {
	return func(c *HTTPClient) { c.pageSize = n }
}

// WithContactEmail sets a contact address sent as the From header, so the
// service operator can reach whoever runs a sustained crawl.
func WithContactEmail(email string) Option {
	return func(c *HTTPClient) { c.contactEmail = email }
}

// NewHTTPClient creates a client from the shared HTTP config.
func NewHTTPClient(cfg types.HTTPConfig, opts ...Option) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRateLimit
	}

	c := &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:    DefaultBaseURL,
		userAgent:  cfg.UserAgent,
		pageSize:   DefaultPageSize,
		maxRetries: cfg.MaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// contentType maps a dataset category onto the service's browse filter.
func contentType(category types.Category) string {
	if category == types.CategoryJournal {
		return "periodicals"
	}
	return "conferences"
}

// BrowsePublications implements Client.
func (c *HTTPClient) BrowsePublications(ctx context.Context, category types.Category, year, page int) (*PublicationPage, error) {
	payload := map[string]any{
		"contentType": contentType(category),
		"tabId":       "title",
		"ranges":      []string{fmt.Sprintf("%d_%d_Year", year, year)},
		"pageNumber":  page,
	}

	var result PublicationPage
	if err := c.post(ctx, c.baseURL+"/publication", payload, &result); err != nil {
		return nil, fmt.Errorf("browsing %s year %d page %d: %w", category, year, page, err)
	}
	return &result, nil
}

// articleResponse is the wire shape of an article search page.
type articleResponse struct {
	Records      []RawRecord `json:"records"`
	TotalRecords int         `json:"totalRecords"`
	TotalPages   int         `json:"totalPages"`
}

// SearchArticles implements Client.
func (c *HTTPClient) SearchArticles(ctx context.Context, pubNumber string, year, page int) (*ArticlePage, error) {
	payload := map[string]any{
		"newsearch":    "true",
		"highlight":    "true",
		"matchBoolean": "true",
		"matchPubs":    "true",
		"action":       "search",
		"queryText":    fmt.Sprintf("(%q:%s)", "Publication Number", pubNumber),
		"pageNumber":   fmt.Sprintf("%d", page),
		"rowsPerPage":  c.pageSize,
		"ranges":       []string{fmt.Sprintf("%d_%d_Year", year, year)},
	}

	var result articleResponse
	if err := c.post(ctx, c.baseURL+"/search", payload, &result); err != nil {
		return nil, fmt.Errorf("searching publication %s year %d page %d: %w", pubNumber, year, page, err)
	}
	return &ArticlePage{
		Records:      result.Records,
		TotalRecords: result.TotalRecords,
		TotalPages:   result.TotalPages,
	}, nil
}

// post sends a JSON payload and decodes the JSON response into out. It
// waits on the shared rate limiter first, so the cap holds across
// concurrent workers.
func (c *HTTPClient) post(ctx context.Context, url string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json,text/plain,*/*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.contactEmail != "" {
		req.Header.Set("From", c.contactEmail)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote service returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
