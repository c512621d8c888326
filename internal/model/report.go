package model

// ScoreCard holds the four weighted sub-scores and the fused overall score.
// Immutable once computed for a given evaluation run.
type ScoreCard struct {
	ScientificFit       int `json:"scientific_fit"`
	CommercialPotential int `json:"commercial_potential"`
	IPRisk              int `json:"ip_risk"` // Lower means more commercially open
	SupplyFeasibility   int `json:"supply_feasibility"`
	OverallScore        int `json:"overall_score"`
}

// Recommendation is the verdict of the narrative synthesis
type Recommendation string

const (
	RecommendGo            Recommendation = "GO"
	RecommendNoGo          Recommendation = "NO_GO"
	RecommendNeedsMoreData Recommendation = "NEEDS_MORE_DATA"
)

// Rationale holds one sentence per evidence domain, exactly four keys
type Rationale struct {
	Scientific string `json:"scientific"`
	Commercial string `json:"commercial"`
	IP         string `json:"ip"`
	Supply     string `json:"supply"`
}

// Narrative is the structured recommendation derived from the signals and
// the overall score
type Narrative struct {
	Summary        string         `json:"summary"` // 2-3 sentence synthesis
	Recommendation Recommendation `json:"recommendation"`
	Rationale      Rationale      `json:"rationale"`
	Risks          []string       `json:"risks"`
	NextSteps      []string       `json:"next_steps"`
}

// AgentSummary is the per-agent slice of an EvaluationResult
type AgentSummary struct {
	AgentName   string       `json:"agent_name"`
	Status      SignalStatus `json:"status"`
	Summary     string       `json:"summary"`
	KeyFindings []string     `json:"key_findings"`
}

// EvaluationResult is the top-level unit returned and persisted per run
type EvaluationResult struct {
	JobID        string         `json:"job_id"` // Fresh per evaluation, never reused
	Query        string         `json:"query"`  // Original input, verbatim
	Status       string         `json:"status"` // Always "completed" once all stages finish
	Scores       ScoreCard      `json:"scores"`
	Narrative    Narrative      `json:"narrative"`
	AgentDetails []AgentSummary `json:"agent_details"` // Fixed order: clinical, literature, market, ip, supply
}
