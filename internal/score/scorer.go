// Package score fuses the five agent signals into a ScoreCard. The fusion is
// a pure deterministic function: the same five signals always produce the
// same card, no matter how degraded the run was.
package score

import (
	"math"

	"pharmascout/internal/model"
)

// Fixed fusion weights. They sum to 1.0; ip_risk enters inverted because low
// risk contributes positively to the overall opportunity.
const (
	weightScientific = 0.35
	weightCommercial = 0.30
	weightIP         = 0.20
	weightSupply     = 0.15
)

// neutralScientificFit replaces the scientific average when both evidence
// agents failed, so a total outage reads as "unknown" rather than maximally
// negative.
const neutralScientificFit = 50

// Scorer computes ScoreCards
type Scorer struct{}

// NewScorer creates a scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate fuses the five signals into a ScoreCard
func (s *Scorer) Calculate(clinical, literature, market, ip, supply model.Signal) model.ScoreCard {
	card := model.ScoreCard{
		ScientificFit:       scientificFit(clinical, literature),
		CommercialPotential: market.Score,
		IPRisk:              ip.Score,
		SupplyFeasibility:   supply.Score,
	}
	card.OverallScore = Overall(card)
	return card
}

// scientificFit averages the clinical and literature scores. A failed signal
// contributes 0; when both failed the result is forced to the neutral 50.
func scientificFit(clinical, literature model.Signal) int {
	if clinical.Status == model.StatusFailed && literature.Status == model.StatusFailed {
		return neutralScientificFit
	}

	clin := clinical.Score
	if clinical.Status == model.StatusFailed {
		clin = 0
	}
	lit := literature.Score
	if literature.Status == model.StatusFailed {
		lit = 0
	}
	return int(math.Round(float64(clin+lit) / 2))
}

// Overall computes the weighted overall score from the four sub-scores
func Overall(card model.ScoreCard) int {
	weighted := float64(card.ScientificFit)*weightScientific +
		float64(card.CommercialPotential)*weightCommercial +
		float64(100-card.IPRisk)*weightIP +
		float64(card.SupplyFeasibility)*weightSupply
	return model.ClampScore(int(math.Round(weighted)))
}
