package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pharmascout/internal/model"
	"pharmascout/internal/pubmed"
)

// LiteratureIndex abstracts the two-step PubMed retrieval
type LiteratureIndex interface {
	SearchIDs(ctx context.Context, term string) ([]string, error)
	Summaries(ctx context.Context, ids []string) (map[string]pubmed.Summary, error)
}

// LiteratureAgent scores the published evidence base for a query. Unlike the
// clinical agent it has no simulated mode: if either retrieval step fails the
// whole agent reports a failed Signal, no partial credit.
type LiteratureAgent struct {
	index LiteratureIndex
	now   func() time.Time
}

// NewLiteratureAgent creates a literature agent
func NewLiteratureAgent(index LiteratureIndex) *LiteratureAgent {
	return &LiteratureAgent{index: index, now: time.Now}
}

// Name returns the fixed agent label
func (a *LiteratureAgent) Name() string { return LiteratureAgentName }

// Evaluate runs search-then-summarize and scores on volume plus recency
func (a *LiteratureAgent) Evaluate(ctx context.Context, query string) model.Signal {
	ids, err := a.index.SearchIDs(ctx, query)
	if err != nil {
		return model.FailedSignal(
			fmt.Sprintf("Failed to connect to PubMed: %s", truncateError(err)),
			"API connection error (PubMed).")
	}

	if len(ids) == 0 {
		return model.Signal{
			Score:    0,
			Summary:  fmt.Sprintf("No recent scientific literature found for %q.", query),
			Findings: []string{"No relevant papers on PubMed."},
			Status:   model.StatusCompleted,
		}
	}

	summaries, err := a.index.Summaries(ctx, ids)
	if err != nil {
		return model.FailedSignal(
			fmt.Sprintf("Failed to connect to PubMed: %s", truncateError(err)),
			"API connection error (PubMed).")
	}

	recent := recentYearTokens(a.now())
	var total, recentCount int
	var findings []string
	for _, id := range ids {
		art, ok := summaries[id]
		if !ok {
			continue
		}
		total++
		findings = append(findings, fmt.Sprintf("%q (%s)", art.Title, art.PubDate))
		if containsAny(art.PubDate, recent) {
			recentCount++
		}
	}

	if total == 0 {
		return model.Signal{
			Score:    0,
			Summary:  fmt.Sprintf("No scientific literature found for %q.", query),
			Findings: []string{"No relevant papers on PubMed."},
			Status:   model.StatusCompleted,
		}
	}

	// Volume caps at 20 articles, recency bonus at 2 recent articles.
	base := total * 5
	if base > 100 {
		base = 100
	}
	bonus := recentCount * 10
	if bonus > 20 {
		bonus = 20
	}
	score := model.ClampScore(base + bonus)

	summary := fmt.Sprintf("Found %d relevant articles (%d recent). Strong evidence base.", total, recentCount)
	return model.NewSignal(score, summary, findings, model.StatusCompleted)
}

// recentYearTokens returns the last five calendar years as literal substrings
// to match against free-form publication date strings
func recentYearTokens(now time.Time) []string {
	year := now.Year()
	tokens := make([]string, 0, 5)
	for y := year; y > year-5; y-- {
		tokens = append(tokens, strconv.Itoa(y))
	}
	return tokens
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// truncateError keeps failure summaries to one short sentence
func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}
	return msg
}
