package model

// SignalStatus describes how a source agent obtained its data
type SignalStatus string

const (
	// StatusCompleted means the agent queried its live source successfully.
	// An empty result set still counts as completed - absence of data is
	// not a failure.
	StatusCompleted SignalStatus = "completed"

	// StatusSimulated means the live source was unreachable or blocked and
	// the agent substituted a synthetic profile so the pipeline keeps moving.
	StatusSimulated SignalStatus = "simulated"

	// StatusFailed means no usable data was obtained. The score is 0 by
	// convention, but consumers must branch on the status, never on the score.
	StatusFailed SignalStatus = "failed"
)

// MaxFindings bounds the findings list on every Signal
const MaxFindings = 5

// Signal is the normalized output every source agent produces
type Signal struct {
	Score    int          `json:"score"`    // 0-100, direction fixed per agent
	Summary  string       `json:"summary"`  // One human-readable sentence
	Findings []string     `json:"findings"` // At most MaxFindings entries, original order
	Status   SignalStatus `json:"status"`
}

// NewSignal constructs a Signal with the score clamped to [0,100] and the
// findings truncated to MaxFindings, preserving order.
func NewSignal(score int, summary string, findings []string, status SignalStatus) Signal {
	return Signal{
		Score:    ClampScore(score),
		Summary:  summary,
		Findings: TruncateFindings(findings),
		Status:   status,
	}
}

// FailedSignal builds the conventional failure Signal: score 0, the failure
// cause as summary, a single diagnostic finding.
func FailedSignal(summary string, finding string) Signal {
	return Signal{
		Score:    0,
		Summary:  summary,
		Findings: []string{finding},
		Status:   StatusFailed,
	}
}

// ClampScore clamps a score into the [0,100] range
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TruncateFindings keeps the first MaxFindings entries in original order
func TruncateFindings(findings []string) []string {
	if len(findings) <= MaxFindings {
		return findings
	}
	return findings[:MaxFindings]
}
