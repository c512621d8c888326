// Package trials queries the ClinicalTrials.gov v2 studies API.
package trials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pharmascout/internal/cache"
)

// ErrAccessDenied indicates the registry rejected the request (HTTP 403).
// Callers use this to switch into simulated mode instead of failing hard.
var ErrAccessDenied = errors.New("trials registry denied access")

const (
	defaultBaseURL  = "https://clinicaltrials.gov/api/v2/studies"
	defaultMaxBytes = 2_000_000
)

// Study is one trial record, reduced to the fields the clinical agent scores on
type Study struct {
	Status string   // Overall status, e.g. COMPLETED, TERMINATED, RECRUITING
	Phases []string // Trial phases, e.g. PHASE2, PHASE3
}

// Client fetches studies for a search term
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	pageSize   int
	maxBytes   int64
	cache      cache.Cache
	cacheTTL   time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the registry endpoint (used by tests)
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithCache enables response caching
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		c.cacheTTL = ttl
	}
}

// WithMaxBytes caps how much of a response body is read
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// NewClient creates a registry client with a bounded per-call timeout
func NewClient(timeout time.Duration, userAgent string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		pageSize:   20,
		maxBytes:   defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// API response envelope. Only the fields we navigate are declared; anything
// missing decodes to its zero value and is treated as "Unknown".
type studiesResponse struct {
	Studies []struct {
		ProtocolSection struct {
			StatusModule struct {
				OverallStatus string `json:"overallStatus"`
			} `json:"statusModule"`
			DesignModule struct {
				Phases []string `json:"phases"`
			} `json:"designModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

// Search returns the studies registered for the given term. A blocked request
// returns ErrAccessDenied; any other transport or payload problem returns a
// wrapped error. Zero results is a valid, non-error outcome.
func (c *Client) Search(ctx context.Context, term string) ([]Study, error) {
	params := url.Values{
		"query.term": {term},
		"pageSize":   {fmt.Sprintf("%d", c.pageSize)},
		"fields":     {"NCTId,BriefTitle,OverallStatus,Phase,StartDate,CompletionDate"},
	}
	reqURL := c.baseURL + "?" + params.Encode()

	body, found := c.cachedBody(reqURL)
	if !found {
		var err error
		body, err = c.fetch(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		c.storeBody(reqURL, body)
	}

	var resp studiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse studies response: %w", err)
	}

	studies := make([]Study, 0, len(resp.Studies))
	for _, s := range resp.Studies {
		status := s.ProtocolSection.StatusModule.OverallStatus
		if status == "" {
			status = "Unknown"
		}
		studies = append(studies, Study{
			Status: status,
			Phases: s.ProtocolSection.DesignModule.Phases,
		})
	}
	return studies, nil
}

func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch studies: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden {
		return nil, ErrAccessDenied
	}
	if resp.StatusCode != http.StatusOK {
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
