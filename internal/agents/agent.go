// Package agents implements the five source agents. Each agent queries one
// external evidence domain and maps whatever it gets - including nothing -
// into a normalized Signal. Agents never return errors past their own
// boundary: transport failures, blocked requests and malformed payloads are
// converted into simulated or failed Signals internally, so the orchestrator
// can always join on all of them.
package agents

import (
	"context"
	"math/rand"

	"pharmascout/internal/model"
)

// Fixed agent labels, in the order they appear in every EvaluationResult
const (
	ClinicalAgentName   = "Clinical Trials Agent (LIVE)"
	LiteratureAgentName = "Literature Agent (LIVE)"
	MarketAgentName     = "Market Scout (WEB SEARCH)"
	IPAgentName         = "IP Guardian (WEB SEARCH)"
	SupplyAgentName     = "Supply Agent (MOCK)"
)

// SourceAgent is the single capability every agent implements
type SourceAgent interface {
	// Name returns the fixed agent label
	Name() string

	// Evaluate produces exactly one Signal for the query within the
	// agent's own time budget. It never panics and never blocks past the
	// per-call timeouts of its upstream clients.
	Evaluate(ctx context.Context, query string) model.Signal
}

// randRange returns a pseudo-random int in [min, max]. Agents that
// synthesize fallback data use this; tests substitute a fixed function.
func randRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}
