// Package pubmed queries the NCBI E-utilities API for literature evidence.
// Retrieval is two-step: esearch returns matching article IDs, esummary
// returns title and publication date per ID.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	searchRetMax    = 10
	defaultMaxBytes = 2_000_000
)

// Summary is the per-article slice of an esummary response
type Summary struct {
	Title   string
	PubDate string
}

// Client wraps the E-utilities endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewClient creates a PubMed client with a bounded per-call timeout
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxBytes:   defaultMaxBytes,
	}
}

// SetBaseURL overrides the E-utilities endpoint (used by tests)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// SearchIDs returns up to ten article identifiers matching the term
func (c *Client) SearchIDs(ctx context.Context, term string) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {fmt.Sprintf("%d", searchRetMax)},
		"retmode": {"json"},
	}

	body, err := c.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse esearch response: %w", err)
	}
	return resp.ESearchResult.IDList, nil
}

// The esummary result object is keyed by UID, with a "uids" index entry
// alongside the per-article objects. Decode the per-article objects lazily.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryArticle struct {
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
}

// Summaries returns title and publication date for each identifier. The
// returned map is keyed by identifier; IDs absent from the response are
// simply missing from the map.
func (c *Client) Summaries(ctx context.Context, ids []string) (map[string]Summary, error) {
	if len(ids) == 0 {
		return map[string]Summary{}, nil
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}

	body, err := c.get(ctx, "/esummary.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("esummary: %w", err)
	}

	var resp esummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse esummary response: %w", err)
	}

	summaries := make(map[string]Summary, len(ids))
	for _, id := range ids {
		raw, ok := resp.Result[id]
		if !ok {
			continue
		}
		var art esummaryArticle
		if err := json.Unmarshal(raw, &art); err != nil {
			return nil, fmt.Errorf("parse esummary article %s: %w", id, err)
		}
		summaries[id] = Summary{Title: art.Title, PubDate: art.PubDate}
	}
	return summaries, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
