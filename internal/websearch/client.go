// Package websearch scrapes a DuckDuckGo-compatible HTML search endpoint.
// It is shared by the market and IP agents, which issue several fixed
// sub-queries sequentially; the client paces those calls with a rate
// limiter and honors the endpoint's robots.txt.
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"pharmascout/internal/cache"
	"pharmascout/internal/util"
)

// Result is one search hit: the page title and the snippet body
type Result struct {
	Title string
	Body  string
}

// Client performs rate-limited, cached searches against an HTML endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *rate.Limiter
	robots     *util.RobotsChecker
	cache      cache.Cache
	cacheTTL   time.Duration
}

// Config configures a search client
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	MaxBytes          int64
	RequestsPerSecond float64
	Burst             int
	RespectRobots     bool
	Cache             cache.Cache
	CacheTTL          time.Duration
}

// NewClient creates a search client
func NewClient(cfg Config) *Client {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 2_000_000
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBytes,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
	}
	if cfg.RespectRobots {
		c.robots = util.NewRobotsChecker(util.NormalizeUserAgent(cfg.UserAgent), cfg.Timeout)
	}
	return c
}

// Search runs one query and returns at most maxResults hits. A blocked or
// rate-limited response is returned as an error; the caller decides whether
// that is fatal for its signal.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	reqURL := c.baseURL + "?" + url.Values{"q": {query}}.Encode()

	body, found := c.cachedBody(reqURL)
	if !found {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		if c.robots != nil && !c.robots.IsAllowed(ctx, reqURL) {
			return nil, fmt.Errorf("robots.txt disallows %s", reqURL)
		}

		var err error
		body, err = c.fetch(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		c.storeBody(reqURL, body)
	}

	results, err := parseResults(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (c *Client) cachedBody(reqURL string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(cache.Key(reqURL))
}

func (c *Client) storeBody(reqURL string, body []byte) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Set(cache.Key(reqURL), body, c.cacheTTL)
}
