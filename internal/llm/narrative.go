package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"pharmascout/internal/model"
)

// Synthesizer turns the agent signals and the fused overall score into a
// structured Narrative. It never fails: when the provider is nil,
// unavailable, or returns text that does not parse into the expected shape,
// the deterministic fallback narrative is used instead. Callers cannot tell
// which path produced the result, and do not need to.
type Synthesizer struct {
	provider Provider
}

// NewSynthesizer creates a narrative synthesizer. A nil provider is valid
// and means fallback-only operation.
func NewSynthesizer(provider Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// narrativePayload is the JSON shape requested from the collaborator
type narrativePayload struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
	Rationale      struct {
		Scientific string `json:"scientific"`
		Commercial string `json:"commercial"`
		IP         string `json:"ip"`
		Supply     string `json:"supply"`
	} `json:"rationale"`
	Risks     []string `json:"risks"`
	NextSteps []string `json:"next_steps"`
}

// Synthesize produces a Narrative for the query
func (s *Synthesizer) Synthesize(ctx context.Context, query string, signals model.SignalSet, overall int) model.Narrative {
	if s.provider == nil {
		return FallbackNarrative(query, signals, overall)
	}

	resp, err := s.provider.Generate(ctx, GenerateRequest{
		Prompt: BuildNarrativePrompt(query, signals),
		System: "You are a pharma strategy consultant writing due diligence executive summaries.",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: narrative generation failed: %v\n", err)
		return FallbackNarrative(query, signals, overall)
	}

	narrative, err := parseNarrative(resp.Text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: narrative parse failed: %v\n", err)
		return FallbackNarrative(query, signals, overall)
	}
	return narrative
}

// BuildNarrativePrompt constructs the due-diligence prompt from the query
// and the evidence signals
func BuildNarrativePrompt(query string, signals model.SignalSet) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Write a Due Diligence Executive Summary for the drug/target: %q.\n\n", query)
	sb.WriteString("Use the following intelligence reports:\n\n")

	writeSection := func(i int, title string, sig model.Signal) {
		fmt.Fprintf(&sb, "%d. %s:\n%s\n", i, title, sig.Summary)
		for _, f := range sig.Findings {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		sb.WriteString("\n")
	}
	writeSection(1, "CLINICAL TRIALS", signals.Clinical)
	writeSection(2, "LITERATURE", signals.Literature)
	writeSection(3, "MARKET DATA", signals.Market)
	writeSection(4, "IP/PATENTS", signals.IP)

	sb.WriteString(`OUTPUT FORMAT (JSON):
{
  "summary": "2-3 sentence high-level overview.",
  "recommendation": "GO, NO_GO, or NEEDS_DATA",
  "rationale": {
    "scientific": "1 sentence synthesis of clinical/lit.",
    "commercial": "1 sentence synthesis of market.",
    "ip": "1 sentence synthesis of IP.",
    "supply": "Note on supply chain (infer from context or generic)."
  },
  "risks": ["Risk 1", "Risk 2", "Risk 3"],
  "next_steps": ["Step 1", "Step 2", "Step 3"]
}`)

	return sb.String()
}

// parseNarrative validates the collaborator's raw text into a Narrative
func parseNarrative(raw string) (model.Narrative, error) {
	text := StripCodeFences(raw)
	if text == "" {
		return model.Narrative{}, fmt.Errorf("empty response")
	}

	var payload narrativePayload
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&payload); err != nil {
		return model.Narrative{}, fmt.Errorf("decode narrative JSON: %w", err)
	}

	rec, err := normalizeRecommendation(payload.Recommendation)
	if err != nil {
		return model.Narrative{}, err
	}
	if payload.Summary == "" {
		return model.Narrative{}, fmt.Errorf("narrative missing summary")
	}

	return model.Narrative{
		Summary:        payload.Summary,
		Recommendation: rec,
		Rationale: model.Rationale{
			Scientific: payload.Rationale.Scientific,
			Commercial: payload.Rationale.Commercial,
			IP:         payload.Rationale.IP,
			Supply:     payload.Rationale.Supply,
		},
		Risks:     payload.Risks,
		NextSteps: payload.NextSteps,
	}, nil
}

// normalizeRecommendation maps collaborator verdict spellings onto the fixed
// Recommendation set
func normalizeRecommendation(raw string) (model.Recommendation, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "GO":
		return model.RecommendGo, nil
	case "NO_GO", "NO-GO":
		return model.RecommendNoGo, nil
	case "NEEDS_DATA", "NEEDS_MORE_DATA":
		return model.RecommendNeedsMoreData, nil
	default:
		return "", fmt.Errorf("unknown recommendation: %q", raw)
	}
}

// StripCodeFences removes surrounding markdown code-fence markers so that
// fenced JSON still parses
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// FallbackNarrative is the deterministic narrative used when the text
// generation collaborator is unavailable or returns an unusable response.
// The recommendation thresholds are fixed: GO above 75, NO_GO below 40.
func FallbackNarrative(query string, signals model.SignalSet, overall int) model.Narrative {
	return model.Narrative{
		Summary: fmt.Sprintf(
			"Analysis driven by live data. Clinical status: %s. Market indicators found via web search.",
			signals.Clinical.Status),
		Recommendation: RecommendationForScore(overall),
		Rationale: model.Rationale{
			Scientific: signals.Clinical.Summary,
			Commercial: signals.Market.Summary,
			IP:         signals.IP.Summary,
			Supply:     signals.Supply.Summary,
		},
		Risks: []string{
			fmt.Sprintf("Narrative generation unavailable or failed for %s.", query),
			"Manual review of all web search findings is recommended.",
			"Potential data discrepancies between sources.",
		},
		NextSteps: []string{
			"Verify web search findings with paid databases.",
			"Consult regulatory expert.",
		},
	}
}

// RecommendationForScore maps an overall score to the fallback verdict
func RecommendationForScore(overall int) model.Recommendation {
	switch {
	case overall > 75:
		return model.RecommendGo
	case overall < 40:
		return model.RecommendNoGo
	default:
		return model.RecommendNeedsMoreData
	}
}
