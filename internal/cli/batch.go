package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pharmascout/internal/pipeline"
	"pharmascout/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Evaluate multiple queries from a file in parallel",
	Long: `Batch evaluates multiple drug/target queries concurrently:
- Read queries from the input file (one per line, # comments allowed)
- Evaluate queries in parallel with a configurable worker count
- Write one JSON report per query into the output directory

Example:
  pharmascout batch queries.txt
  pharmascout batch queries.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./pharmascout-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().DurationVar(&httpTimeout, "call-timeout", 10*time.Second, "per-upstream-call timeout")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable upstream response caching")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for narratives (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.HTTP.Timeout = httpTimeout
	if noCache {
		cfg.Cache.Enabled = false
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if err := applyLLMEnv(cfg); err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Workers.Concurrency = concurrency
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Batch evaluation: %s (workers: %d)\n", file, cfg.Workers.Concurrency)

	processor := worker.NewBatchProcessor(pipeline.New(cfg), cfg.Workers.Concurrency)
	outcomes, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	var written, failed int
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", outcome.Query, outcome.Err)
			failed++
			continue
		}

		path := filepath.Join(outputDir, slugify(outcome.Query)+".json")
		data, err := json.MarshalIndent(outcome.Result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: encode report: %v\n", outcome.Query, err)
			failed++
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: write report: %v\n", outcome.Query, err)
			failed++
			continue
		}

		written++
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ %s → %s (overall %d, %s)\n",
				outcome.Query, path, outcome.Result.Scores.OverallScore,
				outcome.Result.Narrative.Recommendation)
		}
	}

	fmt.Fprintf(os.Stderr, "Done: %d reports written, %d failed\n", written, failed)
	return nil
}

// slugify turns a query into a safe file name
func slugify(query string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(query)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			sb.WriteRune('-')
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		slug = "query"
	}
	return slug
}
