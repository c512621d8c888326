package model

import "time"

// Config is the complete runtime configuration. Every component receives the
// slice of it that it needs through its constructor - there is no ambient
// lookup at call time.
type Config struct {
	HTTP    HTTPConfig   `yaml:"http" mapstructure:"http"`
	Cache   CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Search  SearchConfig `yaml:"search" mapstructure:"search"`
	LLM     LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Store   StoreConfig  `yaml:"store" mapstructure:"store"`
	Server  ServerConfig `yaml:"server" mapstructure:"server"`
	Supply  SupplyConfig `yaml:"supply" mapstructure:"supply"`
	Output  OutputConfig `yaml:"output" mapstructure:"output"`
	Workers WorkerConfig `yaml:"workers" mapstructure:"workers"`
}

// HTTPConfig applies to every outbound upstream call
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes  int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// CacheConfig controls the in-memory upstream response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// SearchConfig controls the web search client shared by the market and IP agents
type SearchConfig struct {
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	MaxResults        int     `yaml:"max_results" mapstructure:"max_results"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	RespectRobots     bool    `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// LLMConfig selects the narrative text-generation collaborator. An empty
// provider disables the collaborator entirely; the deterministic fallback
// narrative is used instead.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, ""
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// StoreConfig locates the report database
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr      string `yaml:"addr" mapstructure:"addr"`
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

// SupplyConfig bounds the synthetic supply agent's score range
type SupplyConfig struct {
	MinScore int `yaml:"min_score" mapstructure:"min_score"`
	MaxScore int `yaml:"max_score" mapstructure:"max_score"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// WorkerConfig controls batch evaluation concurrency
type WorkerConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "PharmaScout/0.1 (+research tooling; contact@example.com)",
			MaxBytes:  2_000_000,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Search: SearchConfig{
			BaseURL:           "https://html.duckduckgo.com/html/",
			MaxResults:        2,
			RequestsPerSecond: 1,
			Burst:             1,
			RespectRobots:     true,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default, fallback narrative only
			Timeout:   30,
			MaxTokens: 1000,
		},
		Store: StoreConfig{
			Path: "pharmascout.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Supply: SupplyConfig{
			MinScore: 60,
			MaxScore: 90,
		},
		Workers: WorkerConfig{
			Concurrency: 4,
		},
	}
}
