package pipeline

import (
	"context"
	"testing"

	"pharmascout/internal/llm"
	"pharmascout/internal/model"
)

type fixedAgent struct {
	name   string
	signal model.Signal
}

func (a *fixedAgent) Name() string { return a.name }

func (a *fixedAgent) Evaluate(ctx context.Context, query string) model.Signal {
	return a.signal
}

func newTestPipeline(clin, lit, market, ip, supply model.Signal) *Pipeline {
	return NewWithComponents(
		&fixedAgent{name: "Clinical Trials Agent (LIVE)", signal: clin},
		&fixedAgent{name: "Literature Agent (LIVE)", signal: lit},
		&fixedAgent{name: "Market Scout (WEB SEARCH)", signal: market},
		&fixedAgent{name: "IP Guardian (WEB SEARCH)", signal: ip},
		&fixedAgent{name: "Supply Agent (MOCK)", signal: supply},
		llm.NewSynthesizer(nil),
	)
}

func completedSignal(score int) model.Signal {
	return model.Signal{Score: score, Summary: "ok", Status: model.StatusCompleted}
}

func TestEvaluate_FusesAllSignals(t *testing.T) {
	p := newTestPipeline(
		completedSignal(70), // clinical
		completedSignal(90), // literature
		completedSignal(70), // market
		completedSignal(20), // ip risk
		completedSignal(70), // supply
	)

	result := p.Evaluate(context.Background(), "metformin")

	// scientific_fit = round((70+90)/2) = 80
	// overall = round(80*.35 + 70*.30 + 80*.20 + 70*.15) = round(28+21+16+10.5) = 76
	if result.Scores.ScientificFit != 80 {
		t.Errorf("ScientificFit = %d, want 80", result.Scores.ScientificFit)
	}
	if result.Scores.OverallScore != 76 {
		t.Errorf("OverallScore = %d, want 76", result.Scores.OverallScore)
	}
	if result.Status != "completed" {
		t.Errorf("Status = %q, want completed", result.Status)
	}
	if result.Query != "metformin" {
		t.Errorf("Query = %q", result.Query)
	}
	if result.JobID == "" {
		t.Error("JobID is empty")
	}
}

func TestEvaluate_AllScientificSourcesFailed(t *testing.T) {
	failed := model.FailedSignal("API connection error.", "connection refused")
	p := newTestPipeline(failed, failed, completedSignal(60), completedSignal(50), completedSignal(80))

	result := p.Evaluate(context.Background(), "x")

	// Both scientific sources failed: neutral 50, not 0.
	if result.Scores.ScientificFit != 50 {
		t.Errorf("ScientificFit = %d, want neutral 50", result.Scores.ScientificFit)
	}
	if result.Status != "completed" {
		t.Errorf("Status = %q, run must complete despite failed agents", result.Status)
	}
	if result.Narrative.Summary == "" {
		t.Error("Narrative.Summary is empty")
	}
}

func TestEvaluate_AgentOrderIsFixed(t *testing.T) {
	p := newTestPipeline(
		completedSignal(1), completedSignal(2), completedSignal(3),
		completedSignal(4), completedSignal(5),
	)

	result := p.Evaluate(context.Background(), "x")

	wantNames := []string{
		"Clinical Trials Agent (LIVE)",
		"Literature Agent (LIVE)",
		"Market Scout (WEB SEARCH)",
		"IP Guardian (WEB SEARCH)",
		"Supply Agent (MOCK)",
	}
	if len(result.AgentDetails) != len(wantNames) {
		t.Fatalf("got %d agent details, want %d", len(result.AgentDetails), len(wantNames))
	}
	for i, want := range wantNames {
		if result.AgentDetails[i].AgentName != want {
			t.Errorf("AgentDetails[%d].AgentName = %q, want %q", i, result.AgentDetails[i].AgentName, want)
		}
	}
}

func TestEvaluate_FreshJobIDPerRun(t *testing.T) {
	p := newTestPipeline(
		completedSignal(50), completedSignal(50), completedSignal(50),
		completedSignal(50), completedSignal(50),
	)

	a := p.Evaluate(context.Background(), "x")
	b := p.Evaluate(context.Background(), "x")

	if a.JobID == b.JobID {
		t.Errorf("JobID reused across runs: %q", a.JobID)
	}
}

func TestEvaluate_DeterministicScoresAcrossRuns(t *testing.T) {
	p := newTestPipeline(
		completedSignal(65), completedSignal(40), completedSignal(90),
		completedSignal(20), completedSignal(75),
	)

	first := p.Evaluate(context.Background(), "metformin")
	for i := 0; i < 5; i++ {
		again := p.Evaluate(context.Background(), "metformin")
		if again.Scores != first.Scores {
			t.Fatalf("run %d: Scores = %+v, want %+v", i, again.Scores, first.Scores)
		}
	}
}
