// Package pipeline orchestrates one evaluation run: concurrent fan-out to
// the five source agents, a join barrier, deterministic score fusion, and
// narrative synthesis. A run always produces a complete EvaluationResult -
// agent failures degrade the signals, never the pipeline.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"pharmascout/internal/agents"
	"pharmascout/internal/cache"
	"pharmascout/internal/llm"
	"pharmascout/internal/model"
	"pharmascout/internal/pubmed"
	"pharmascout/internal/score"
	"pharmascout/internal/trials"
	"pharmascout/internal/websearch"
)

// Pipeline runs evaluations. It is stateless across runs; every Evaluate
// call owns its buffers exclusively.
type Pipeline struct {
	clinical    agents.SourceAgent
	literature  agents.SourceAgent
	market      agents.SourceAgent
	ip          agents.SourceAgent
	supply      agents.SourceAgent
	scorer      *score.Scorer
	synthesizer *llm.Synthesizer
}

// New wires the full pipeline from configuration: upstream clients, the five
// agents, the scorer and the narrative synthesizer.
func New(cfg *model.Config) *Pipeline {
	var rc cache.Cache
	if cfg.Cache.Enabled {
		rc = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
	}

	registry := trials.NewClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent,
		trials.WithCache(rc, cfg.Cache.TTL),
		trials.WithMaxBytes(cfg.HTTP.MaxBytes))
	index := pubmed.NewClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
	search := websearch.NewClient(websearch.Config{
		BaseURL:           cfg.Search.BaseURL,
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		MaxBytes:          cfg.HTTP.MaxBytes,
		RequestsPerSecond: cfg.Search.RequestsPerSecond,
		Burst:             cfg.Search.Burst,
		RespectRobots:     cfg.Search.RespectRobots,
		Cache:             rc,
		CacheTTL:          cfg.Cache.TTL,
	})

	var provider llm.Provider
	if cfg.LLM.Provider != "" {
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			provider = p
		}
	}

	return NewWithComponents(
		agents.NewClinicalAgent(registry),
		agents.NewLiteratureAgent(index),
		agents.NewMarketAgent(search, cfg.Search.MaxResults),
		agents.NewIPAgent(search, cfg.Search.MaxResults),
		agents.NewSupplyAgent(cfg.Supply.MinScore, cfg.Supply.MaxScore),
		llm.NewSynthesizer(provider),
	)
}

// NewWithComponents assembles a pipeline from explicit collaborators
func NewWithComponents(clinical, literature, market, ip, supply agents.SourceAgent, synthesizer *llm.Synthesizer) *Pipeline {
	return &Pipeline{
		clinical:    clinical,
		literature:  literature,
		market:      market,
		ip:          ip,
		supply:      supply,
		scorer:      score.NewScorer(),
		synthesizer: synthesizer,
	}
}

// Evaluate runs all five agents concurrently against the query, joins on
// their signals, fuses the scores and synthesizes the narrative. It never
// returns an error for degraded upstreams; the Signal statuses carry that.
func (p *Pipeline) Evaluate(ctx context.Context, query string) *model.EvaluationResult {
	signals := p.collectSignals(ctx, query)

	card := p.scorer.Calculate(signals.Clinical, signals.Literature,
		signals.Market, signals.IP, signals.Supply)

	narrative := p.synthesizer.Synthesize(ctx, query, signals, card.OverallScore)

	return &model.EvaluationResult{
		JobID:     uuid.NewString(),
		Query:     query,
		Status:    "completed",
		Scores:    card,
		Narrative: narrative,
		AgentDetails: []model.AgentSummary{
			agentSummary(p.clinical, signals.Clinical),
			agentSummary(p.literature, signals.Literature),
			agentSummary(p.market, signals.Market),
			agentSummary(p.ip, signals.IP),
			agentSummary(p.supply, signals.Supply),
		},
	}
}

// collectSignals fans out to the five agents and blocks until every one has
// produced its signal. Each goroutine writes only its own field, so the join
// needs no locking. Agents bound their own upstream calls, which keeps this
// barrier from hanging on a slow source.
func (p *Pipeline) collectSignals(ctx context.Context, query string) model.SignalSet {
	var signals model.SignalSet

	var wg sync.WaitGroup
	run := func(agent agents.SourceAgent, dst *model.Signal) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*dst = agent.Evaluate(ctx, query)
		}()
	}

	run(p.clinical, &signals.Clinical)
	run(p.literature, &signals.Literature)
	run(p.market, &signals.Market)
	run(p.ip, &signals.IP)
	run(p.supply, &signals.Supply)

	wg.Wait()
	return signals
}

func agentSummary(agent agents.SourceAgent, sig model.Signal) model.AgentSummary {
	return model.AgentSummary{
		AgentName:   agent.Name(),
		Status:      sig.Status,
		Summary:     sig.Summary,
		KeyFindings: sig.Findings,
	}
}
