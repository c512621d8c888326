package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"pharmascout/internal/model"
)

// Evaluator defines the interface for evaluating a single query
type Evaluator interface {
	Evaluate(ctx context.Context, query string) *model.EvaluationResult
}

// EvaluationJob runs one query through the pipeline
type EvaluationJob struct {
	Query     string
	Evaluator Evaluator
}

// Execute executes the evaluation job. A cancelled batch context produces
// an error outcome without running the pipeline.
func (j *EvaluationJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &EvaluationOutcome{Query: j.Query, Err: err}
	}
	return &EvaluationOutcome{
		Query:  j.Query,
		Result: j.Evaluator.Evaluate(ctx, j.Query),
	}
}

// EvaluationOutcome is the result of one batch evaluation. The pipeline
// itself never errors; Err is reserved for infrastructure problems around
// the run (e.g. a cancelled batch).
type EvaluationOutcome struct {
	Query  string
	Result *model.EvaluationResult
	Err    error
}

// GetError returns the infrastructure error, if any
func (o *EvaluationOutcome) GetError() error {
	return o.Err
}

// BatchProcessor evaluates multiple queries concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(evaluator Evaluator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// ProcessQueries evaluates the queries with bounded concurrency
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*EvaluationOutcome {
	if len(queries) == 0 {
		return []*EvaluationOutcome{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	// Submit from a separate goroutine so the results drain below keeps
	// the pool's buffers from filling up on large batches.
	go func() {
		for _, q := range queries {
			pool.Submit(&EvaluationJob{Query: q, Evaluator: b.evaluator})
		}
		pool.Close()
	}()

	results := pool.Wait()

	outcomes := make([]*EvaluationOutcome, len(results))
	for i, r := range results {
		outcomes[i] = r.(*EvaluationOutcome)
	}
	return outcomes
}

// ProcessFile reads queries from a file and evaluates them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*EvaluationOutcome, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads queries from a file, one per line. Empty lines
// and #-comments are skipped; duplicates are dropped keeping first occurrence.
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return queries, nil
}
