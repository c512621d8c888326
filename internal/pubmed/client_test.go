package pubmed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearchIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/esearch.fcgi" {
			t.Errorf("path = %q, want /esearch.fcgi", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("db") != "pubmed" || q.Get("retmode") != "json" {
			t.Errorf("query = %v", q)
		}
		if q.Get("retmax") != "10" {
			t.Errorf("retmax = %q, want 10", q.Get("retmax"))
		}
		_, _ = w.Write([]byte(`{"esearchresult": {"idlist": ["11111", "22222"]}}`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent")
	c.SetBaseURL(srv.URL)

	ids, err := c.SearchIDs(context.Background(), "metformin repurposing")
	if err != nil {
		t.Fatalf("SearchIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "11111" || ids[1] != "22222" {
		t.Errorf("ids = %v", ids)
	}
}

func TestSearchIDs_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent")
	c.SetBaseURL(srv.URL)

	if _, err := c.SearchIDs(context.Background(), "x"); err == nil {
		t.Fatal("want error for 502")
	}
}

func TestSummaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/esummary.fcgi" {
			t.Errorf("path = %q, want /esummary.fcgi", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "11111,22222" {
			t.Errorf("id = %q, want comma-joined ids", got)
		}
		// Result is keyed by UID, with the "uids" index entry alongside.
		_, _ = w.Write([]byte(`{"result": {
			"uids": ["11111", "22222"],
			"11111": {"title": "Metformin and cancer", "pubdate": "2024 Jan 15"},
			"22222": {"title": "AMPK signaling", "pubdate": "2019"}
		}}`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent")
	c.SetBaseURL(srv.URL)

	summaries, err := c.Summaries(context.Background(), []string{"11111", "22222"})
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if s := summaries["11111"]; s.Title != "Metformin and cancer" || s.PubDate != "2024 Jan 15" {
		t.Errorf("summaries[11111] = %+v", s)
	}
}

func TestSummaries_SkipsAbsentIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": {
			"uids": ["11111"],
			"11111": {"title": "Only paper", "pubdate": "2023"}
		}}`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent")
	c.SetBaseURL(srv.URL)

	summaries, err := c.Summaries(context.Background(), []string{"11111", "99999"})
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("got %d summaries, want 1 (absent id dropped)", len(summaries))
	}
	if _, ok := summaries["99999"]; ok {
		t.Error("absent id must not appear in result map")
	}
}

func TestSummaries_EmptyInputSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request made for empty id list")
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "test-agent")
	c.SetBaseURL(srv.URL)

	summaries, err := c.Summaries(context.Background(), nil)
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("got %d summaries, want 0", len(summaries))
	}
}
