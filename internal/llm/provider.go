// Package llm wraps the external text-generation collaborator used for
// narrative synthesis. Providers offer no JSON guarantees; the synthesizer
// validates every response and falls back to a deterministic narrative when
// the collaborator is unavailable or returns garbage.
package llm

import (
	"context"

	"pharmascout/internal/model"
)

// Provider defines the interface for text-generation backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces raw text for the prompt. Callers must not assume
	// the text is valid JSON.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for text generation
type GenerateRequest struct {
	// Prompt is the full user prompt
	Prompt string

	// System is an optional system instruction
	System string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the raw model output
type GenerateResponse struct {
	// Text is the generated text, whitespace-trimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption where the API reports it
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:  modelConfig.Provider,
		Model:     modelConfig.Model,
		APIKey:    modelConfig.APIKey,
		BaseURL:   modelConfig.BaseURL,
		Timeout:   modelConfig.Timeout,
		MaxTokens: modelConfig.MaxTokens,
	}
}
