package trials

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pharmascout/internal/cache"
)

const studiesJSON = `{
  "studies": [
    {"protocolSection": {"statusModule": {"overallStatus": "COMPLETED"}, "designModule": {"phases": ["PHASE3"]}}},
    {"protocolSection": {"statusModule": {"overallStatus": "RECRUITING"}, "designModule": {"phases": ["PHASE2", "PHASE3"]}}},
    {"protocolSection": {"statusModule": {}, "designModule": {}}}
  ]
}`

func TestSearch_ParsesStudies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query.term"); got != "metformin" {
			t.Errorf("query.term = %q, want metformin", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "20" {
			t.Errorf("pageSize = %q, want 20", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(studiesJSON))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent", WithBaseURL(srv.URL))
	studies, err := c.Search(context.Background(), "metformin")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(studies) != 3 {
		t.Fatalf("got %d studies, want 3", len(studies))
	}
	if studies[0].Status != "COMPLETED" || len(studies[0].Phases) != 1 {
		t.Errorf("studies[0] = %+v", studies[0])
	}
	if studies[1].Status != "RECRUITING" || len(studies[1].Phases) != 2 {
		t.Errorf("studies[1] = %+v", studies[1])
	}
	if studies[2].Status != "Unknown" {
		t.Errorf("studies[2].Status = %q, want Unknown for missing status", studies[2].Status)
	}
}

func TestSearch_ForbiddenIsAccessDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "x")

	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("err = %v, want ErrAccessDenied", err)
	}
}

func TestSearch_ServerErrorIsGenericError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "x")

	if err == nil {
		t.Fatal("want error for 500")
	}
	if errors.Is(err, ErrAccessDenied) {
		t.Error("500 must not map to ErrAccessDenied")
	}
}

func TestSearch_EmptyResultIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"studies": []}`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent", WithBaseURL(srv.URL))
	studies, err := c.Search(context.Background(), "x")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(studies) != 0 {
		t.Errorf("got %d studies, want 0", len(studies))
	}
}

func TestSearch_MalformedJSONIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>blocked</html>`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent", WithBaseURL(srv.URL))
	if _, err := c.Search(context.Background(), "x"); err == nil {
		t.Fatal("want parse error for non-JSON body")
	}
}

func TestSearch_OversizedBodyIsCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Valid JSON, but far beyond the configured read cap.
		_, _ = w.Write([]byte(studiesJSON))
		for i := 0; i < 1000; i++ {
			_, _ = w.Write([]byte(" "))
		}
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent",
		WithBaseURL(srv.URL), WithMaxBytes(10))

	// The truncated body no longer parses; the cap must surface as an error,
	// not as a silent partial result.
	if _, err := c.Search(context.Background(), "x"); err == nil {
		t.Fatal("want parse error for capped body")
	}
}

func TestSearch_SecondCallServedFromCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(studiesJSON))
	}))
	defer srv.Close()

	mc := cache.NewMemoryCache(time.Minute, time.Minute)
	c := NewClient(5*time.Second, "test-agent",
		WithBaseURL(srv.URL), WithCache(mc, time.Minute))

	for i := 0; i < 2; i++ {
		if _, err := c.Search(context.Background(), "metformin"); err != nil {
			t.Fatalf("Search %d: %v", i, err)
		}
	}

	if hits != 1 {
		t.Errorf("upstream hits = %d, want 1", hits)
	}
}
