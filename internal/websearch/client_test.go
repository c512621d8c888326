package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pharmascout/internal/cache"
)

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="https://example.com/1">Metformin Market Report 2025</a>
  <a class="result__snippet">The global metformin market is valued at $2.1 billion and growing.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/2">Pricing overview</a>
  <div class="result__snippet">Treatment cost remains low worldwide.</div>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/3">Third hit</a>
</div>
</body></html>`

func newTestClient(baseURL string, c cache.Cache) *Client {
	return NewClient(Config{
		BaseURL:           baseURL,
		Timeout:           5 * time.Second,
		UserAgent:         "test-agent",
		RequestsPerSecond: 100,
		Burst:             10,
		Cache:             c,
		CacheTTL:          time.Minute,
	})
}

func TestSearch_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "metformin market size" {
			t.Errorf("q = %q", got)
		}
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	results, err := c.Search(context.Background(), "metformin market size", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Title != "Metformin Market Report 2025" {
		t.Errorf("results[0].Title = %q", results[0].Title)
	}
	if results[0].Body != "The global metformin market is valued at $2.1 billion and growing." {
		t.Errorf("results[0].Body = %q", results[0].Body)
	}
	if results[2].Body != "" {
		t.Errorf("results[2].Body = %q, want empty for snippetless hit", results[2].Body)
	}
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	results, err := c.Search(context.Background(), "x", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestSearch_BlockedStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	if _, err := c.Search(context.Background(), "x", 5); err == nil {
		t.Fatal("want error for 429")
	}
}

func TestSearch_SecondCallServedFromCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, cache.NewMemoryCache(time.Minute, time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := c.Search(context.Background(), "metformin", 5); err != nil {
			t.Fatalf("Search %d: %v", i, err)
		}
	}

	if hits != 1 {
		t.Errorf("upstream hits = %d, want 1", hits)
	}
}

func TestParseResults_EmptyPage(t *testing.T) {
	results, err := parseResults("<html><body><p>No results.</p></body></html>")
	if err != nil {
		t.Fatalf("parseResults: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestParseResults_NestedTitleMarkup(t *testing.T) {
	page := `<a class="result__a">Metformin <b>repurposing</b> study</a>`
	results, err := parseResults(page)
	if err != nil {
		t.Fatalf("parseResults: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Metformin repurposing study" {
		t.Errorf("results = %+v", results)
	}
}
