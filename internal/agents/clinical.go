package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pharmascout/internal/model"
	"pharmascout/internal/trials"
)

// Registry abstracts the trials registry client
type Registry interface {
	Search(ctx context.Context, term string) ([]trials.Study, error)
}

// ClinicalAgent scores the clinical evidence for a query from registered
// trials. A blocked registry switches the agent into simulated mode; any
// other failure also degrades to a synthetic profile so the caller never
// stalls on this source.
type ClinicalAgent struct {
	registry Registry
	randInt  func(min, max int) int
}

// NewClinicalAgent creates a clinical evidence agent
func NewClinicalAgent(registry Registry) *ClinicalAgent {
	return &ClinicalAgent{registry: registry, randInt: randRange}
}

// Name returns the fixed agent label
func (a *ClinicalAgent) Name() string { return ClinicalAgentName }

// Evaluate queries the registry and scores the returned studies
func (a *ClinicalAgent) Evaluate(ctx context.Context, query string) model.Signal {
	studies, err := a.registry.Search(ctx, query)
	if err != nil {
		if errors.Is(err, trials.ErrAccessDenied) {
			return a.simulated(query)
		}
		// Transport errors and malformed payloads also degrade to the
		// synthetic profile - the registry is flaky enough that failing
		// the whole evaluation over it would be wrong.
		return a.simulated(query)
	}
	return scoreStudies(studies, query)
}

// scoreStudies implements the deterministic clinical heuristic:
// base = round(completed/total*100), minus 5 per terminated study,
// plus 10 if anything is recruiting, clamped to [0,100].
func scoreStudies(studies []trials.Study, query string) model.Signal {
	total := len(studies)
	if total == 0 {
		return model.Signal{
			Score:    0,
			Summary:  fmt.Sprintf("No registered clinical trials found for %q.", query),
			Findings: []string{"No data available in public registries."},
			Status:   model.StatusCompleted,
		}
	}

	var completed, terminated, recruiting int
	var phases []string
	for _, s := range studies {
		phases = append(phases, s.Phases...)
		switch s.Status {
		case "COMPLETED":
			completed++
		case "TERMINATED", "WITHDRAWN":
			terminated++
		case "RECRUITING":
			recruiting++
		}
	}

	successRatio := float64(completed) / float64(total)
	score := model.ClampScore(int(successRatio*100+0.5) - terminated*5)
	if recruiting > 0 {
		score = model.ClampScore(score + 10)
	}

	findings := []string{
		fmt.Sprintf("Analyzed %d recent trials.", total),
		fmt.Sprintf("%d studies successfully completed.", completed),
		fmt.Sprintf("%d studies currently recruiting.", recruiting),
	}
	if terminated > 0 {
		findings = append(findings, fmt.Sprintf("WARNING: %d studies terminated/withdrawn.", terminated))
	}

	summary := fmt.Sprintf("Evidence suggests %s activity. Success rate is approx %d%%.",
		mostCommonPhase(phases), int(successRatio*100+0.5))

	return model.NewSignal(score, summary, findings, model.StatusCompleted)
}

// mostCommonPhase returns the most frequent phase value. Ties break to the
// phase that first reached the maximum count in a single left-to-right pass,
// so the result is reproducible for any input order.
func mostCommonPhase(phases []string) string {
	if len(phases) == 0 {
		return "N/A"
	}
	counts := make(map[string]int, len(phases))
	best := ""
	bestCount := 0
	for _, p := range phases {
		counts[p]++
		if counts[p] > bestCount {
			best = p
			bestCount = counts[p]
		}
	}
	return best
}

// simulated substitutes a synthetic clinical profile when the registry is
// unreachable or blocks the request
func (a *ClinicalAgent) simulated(query string) model.Signal {
	lower := strings.ToLower(query)
	strong := strings.Contains(lower, "metformin") ||
		strings.Contains(lower, "semaglutide") ||
		strings.Contains(lower, "aspirin")

	score := a.randInt(40, 70)
	if strong {
		score = a.randInt(80, 95)
	}

	return model.Signal{
		Score:   score,
		Summary: "Simulated analysis (registry connection restricted). Historical data suggests high activity.",
		Findings: []string{
			"Registry access limited: serving simulated profile.",
			fmt.Sprintf("Estimated 50+ trials in database for %s.", query),
			"Phase 3 success probability modeled at 65%.",
		},
		Status: model.StatusSimulated,
	}
}
