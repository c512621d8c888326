package agents

import (
	"context"

	"pharmascout/internal/model"
)

// SupplyAgent has no live source. It synthesizes a plausible supply
// feasibility score in a fixed range and always reports completed.
type SupplyAgent struct {
	minScore int
	maxScore int
	randInt  func(min, max int) int
}

// NewSupplyAgent creates a supply agent scoring within [minScore, maxScore]
func NewSupplyAgent(minScore, maxScore int) *SupplyAgent {
	if minScore <= 0 {
		minScore = 60
	}
	if maxScore < minScore {
		maxScore = minScore
	}
	return &SupplyAgent{minScore: minScore, maxScore: maxScore, randInt: randRange}
}

// Name returns the fixed agent label
func (a *SupplyAgent) Name() string { return SupplyAgentName }

// Evaluate returns the synthetic supply profile
func (a *SupplyAgent) Evaluate(ctx context.Context, query string) model.Signal {
	return model.Signal{
		Score:   model.ClampScore(a.randInt(a.minScore, a.maxScore)),
		Summary: "Supply chain appears stable.",
		Findings: []string{
			"Multiple GMP suppliers available.",
			"No major geopolitical risks.",
		},
		Status: model.StatusCompleted,
	}
}
