package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pharmascout/internal/pipeline"
)

var (
	outJSON     string
	httpTimeout time.Duration
	userAgent   string
	noCache     bool
	llmProvider string
	llmModel    string
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <query>",
	Short: "Evaluate a drug/target query and print the opportunity report",
	Long: `Evaluate runs the full pipeline for a single query:
- Query the trials registry, PubMed, and web search concurrently
- Normalize each source into a scored signal, degrading on failure
- Fuse the signals into a weighted opportunity score
- Synthesize a narrative recommendation (LLM-backed if configured)

Example:
  pharmascout evaluate semaglutide
  pharmascout evaluate "GLP-1 receptor agonist" --json report.json
  pharmascout evaluate metformin --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&outJSON, "json", "", "write the report JSON to this path instead of stdout")
	evaluateCmd.Flags().DurationVar(&httpTimeout, "timeout", 10*time.Second, "per-upstream-call timeout")
	evaluateCmd.Flags().StringVar(&userAgent, "ua", "", "override the HTTP User-Agent")
	evaluateCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable upstream response caching")
	evaluateCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for the narrative (openai, anthropic, ollama)")
	evaluateCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	query := args[0]

	cfg := loadConfig()
	cfg.HTTP.Timeout = httpTimeout
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
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

	if verbose {
		fmt.Fprintf(os.Stderr, "Evaluating: %s\n", query)
		if cfg.LLM.Provider != "" {
			fmt.Fprintf(os.Stderr, "Narrative: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	result := pipeline.New(cfg).Evaluate(context.Background(), query)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if outJSON != "" {
		if err := os.WriteFile(outJSON, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote report: %s\n", outJSON)
	} else {
		fmt.Println(string(data))
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "\nOverall score: %d/100  Recommendation: %s\n",
			result.Scores.OverallScore, result.Narrative.Recommendation)
	}
	return nil
}
