package agents

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"pharmascout/internal/model"
	"pharmascout/internal/websearch"
)

// Searcher abstracts the web search client shared by the market and IP agents
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error)
}

// MarketAgent scouts market size, pricing and growth indicators from open web
// search snippets. Sub-queries run sequentially to respect the search
// endpoint's rate limits.
type MarketAgent struct {
	search     Searcher
	maxResults int
	now        func() time.Time
}

// NewMarketAgent creates a market agent
func NewMarketAgent(search Searcher, maxResults int) *MarketAgent {
	if maxResults <= 0 {
		maxResults = 2
	}
	return &MarketAgent{search: search, maxResults: maxResults, now: time.Now}
}

// Name returns the fixed agent label
func (a *MarketAgent) Name() string { return MarketAgentName }

// Evaluate gathers snippets across the fixed sub-queries and scores them on
// magnitude and growth keywords. An empty result set scores 0 but is still a
// completed signal - the web having nothing to say is data, not an outage.
func (a *MarketAgent) Evaluate(ctx context.Context, query string) model.Signal {
	year := a.now().Year()
	subQueries := []string{
		fmt.Sprintf("%s market size %d %d", query, year, year+1),
		fmt.Sprintf("%s sales revenue %d", query, year-1),
		fmt.Sprintf("%s price cost treatment", query),
	}

	findings := collectSnippets(ctx, a.search, subQueries, a.maxResults)
	if len(findings) == 0 {
		return model.Signal{
			Score:    0,
			Summary:  "No market data found in public web search.",
			Findings: []string{"Web search returned zero results."},
			Status:   model.StatusCompleted,
		}
	}

	blob := strings.ToLower(strings.Join(findings, " "))
	score := 50
	if strings.Contains(blob, "billion") {
		score += 30
	} else if strings.Contains(blob, "million") {
		score += 10
	}
	if strings.Contains(blob, "growing") || strings.Contains(blob, "increase") {
		score += 10
	}
	if score > 95 {
		score = 95
	}

	return model.NewSignal(score, "Market intelligence gathered from open web.", findings, model.StatusCompleted)
}

// collectSnippets runs the sub-queries in order, concatenating title and body
// of each hit. A failing sub-query contributes nothing; the others still count.
func collectSnippets(ctx context.Context, search Searcher, queries []string, maxResults int) []string {
	var findings []string
	for _, q := range queries {
		results, err := search.Search(ctx, q, maxResults)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: web search failed for %q: %v\n", q, err)
			continue
		}
		for _, r := range results {
			findings = append(findings, fmt.Sprintf("%s: %s", r.Title, r.Body))
		}
	}
	return findings
}
