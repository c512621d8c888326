package agents

import (
	"context"
	"fmt"
	"strings"

	"pharmascout/internal/model"
)

// IPAgent scans the patent landscape through the same web search mechanism as
// the market agent, but its score is a risk: low means the market is
// commercially open, high means patent protection blocks entry.
type IPAgent struct {
	search     Searcher
	maxResults int
}

// NewIPAgent creates an IP/patent agent
func NewIPAgent(search Searcher, maxResults int) *IPAgent {
	if maxResults <= 0 {
		maxResults = 2
	}
	return &IPAgent{search: search, maxResults: maxResults}
}

// Name returns the fixed agent label
func (a *IPAgent) Name() string { return IPAgentName }

// Evaluate scores patent risk from web snippets. Default risk is a neutral
// 50; expiry or generic-availability language drops it to 20, exclusivity or
// patent-protection language raises it to 80. Zero results stay neutral.
func (a *IPAgent) Evaluate(ctx context.Context, query string) model.Signal {
	subQueries := []string{
		fmt.Sprintf("%s patent expiry date", query),
		fmt.Sprintf("%s generic entry date", query),
		fmt.Sprintf("%s patent litigation lawsuit", query),
	}

	findings := collectSnippets(ctx, a.search, subQueries, a.maxResults)
	if len(findings) == 0 {
		return model.Signal{
			Score:    50,
			Summary:  "No specific patent data found.",
			Findings: []string{"Web search returned zero results."},
			Status:   model.StatusCompleted,
		}
	}

	blob := strings.ToLower(strings.Join(findings, " "))
	risk := 50
	if strings.Contains(blob, "expired") || strings.Contains(blob, "generic available") {
		risk = 20
	} else if strings.Contains(blob, "patent protection") || strings.Contains(blob, "exclusivity") {
		risk = 80
	}

	return model.NewSignal(risk, "Patent landscape scanned via web search.", findings, model.StatusCompleted)
}
