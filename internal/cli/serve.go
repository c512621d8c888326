package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pharmascout/internal/auth"
	"pharmascout/internal/pipeline"
	"pharmascout/internal/server"
	"pharmascout/internal/store"
)

var (
	serveAddr string
	dbPath    string
	jwtSecret string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the evaluation pipeline over HTTP with token
authentication and per-user report persistence.

Endpoints:
  POST /register          create an account
  POST /token             exchange credentials for a bearer token
  GET  /users/me          the authenticated user
  POST /evaluate          run an evaluation and persist the report
  GET  /users/me/reports  the caller's stored reports

Example:
  pharmascout serve --addr :8080 --db pharmascout.db`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from config)")
	serveCmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "JWT signing secret (or PHARMASCOUT_SERVER_JWT_SECRET)")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for narratives (openai, anthropic, ollama)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if jwtSecret != "" {
		cfg.Server.JWTSecret = jwtSecret
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

	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required: set --jwt-secret or PHARMASCOUT_SERVER_JWT_SECRET")
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	srv := server.New(cfg.Server.Addr, pipeline.New(cfg),
		auth.NewService(st, cfg.Server.JWTSecret), st)

	fmt.Fprintf(os.Stderr, "Listening on %s (db: %s)\n", cfg.Server.Addr, cfg.Store.Path)
	return srv.ListenAndServe()
}
