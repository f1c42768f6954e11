// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Precedence: defaults, then optional YAML file, then environment.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataRoot is the directory holding per-season gameweek CSVs.
	DataRoot string `koanf:"data_root"`

	// SnapshotRoot is the directory for per-request debug snapshots.
	// Empty disables snapshots.
	SnapshotRoot string `koanf:"snapshot_root"`

	// PoolSize is how many ranked candidates feed the experts.
	PoolSize int `koanf:"pool_size"`

	// Budget is the default squad budget in millions.
	Budget float64 `koanf:"budget"`

	// MaxPerClub caps players per club in a squad.
	MaxPerClub int `koanf:"max_per_club"`

	// Season and Gameweek are the defaults when a request omits them.
	Season   string `koanf:"season"`
	Gameweek int    `koanf:"gameweek"`

	// LLMEndpoint is the OpenAI-compatible chat-completions URL.
	LLMEndpoint string `koanf:"llm_endpoint"`

	// APIKey and APIKey2 are tried in rotation against the endpoint.
	APIKey  string `koanf:"api_key"`
	APIKey2 string `koanf:"api_key_2"`

	// ExpertModel and MetaModel select the models per pipeline stage.
	ExpertModel string `koanf:"expert_model"`
	MetaModel   string `koanf:"meta_model"`

	// FallbackModels is the cascade tried when the primary model fails.
	FallbackModels []string `koanf:"fallback_models"`

	// LLMMaxConcurrency bounds simultaneous outbound calls overall.
	LLMMaxConcurrency int `koanf:"llm_max_concurrency"`

	// LLMTimeoutSecs is the per-call HTTP timeout in seconds.
	LLMTimeoutSecs int `koanf:"llm_timeout_secs"`

	// LLMRetryAttempts is how many attempts each call gets per key.
	LLMRetryAttempts int `koanf:"llm_retry_attempts"`

	// LLMUseMock replaces the collaborator with an always-failing mock so
	// the pipeline runs on deterministic fallbacks only.
	LLMUseMock bool `koanf:"llm_use_mock"`

	// ExpertBatchSize bounds candidates per expert prompt.
	ExpertBatchSize int `koanf:"expert_batch_size"`

	// MetaMaxTokens bounds the squad-completion response.
	MetaMaxTokens int `koanf:"meta_max_tokens"`

	// HighVoteThreshold is the per-expert probability counted as a high vote.
	HighVoteThreshold float64 `koanf:"high_vote_threshold"`

	// MinAgreement is how many high votes lock a candidate.
	MinAgreement int `koanf:"min_agreement"`

	// RemovalTickersMax and RemovalHaulersMax bound the consensus filter.
	RemovalTickersMax float64 `koanf:"removal_tickers_max"`
	RemovalHaulersMax float64 `koanf:"removal_haulers_max"`
}

// New creates a Config with documented defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		DataRoot:          "data",
		SnapshotRoot:      "log",
		PoolSize:          30,
		Budget:            100.0,
		MaxPerClub:        3,
		Season:            "2025-26",
		Gameweek:          1,
		LLMEndpoint:       "https://api.groq.com/openai/v1/chat/completions",
		ExpertModel:       "llama-3.1-8b-instant",
		MetaModel:         "llama-3.1-70b-versatile",
		FallbackModels:    []string{"gemma-7b-it", "llama-3.1-70b-versatile", "mixtral-8x7b-32768"},
		LLMMaxConcurrency: 8,
		LLMTimeoutSecs:    60,
		LLMRetryAttempts:  2,
		ExpertBatchSize:   25,
		MetaMaxTokens:     3500,
		HighVoteThreshold: 0.70,
		MinAgreement:      2,
		RemovalTickersMax: 0.10,
		RemovalHaulersMax: 0.05,
	}
}

// APIKeys returns the configured keys with empties dropped.
func (c *Config) APIKeys() []string {
	keys := make([]string, 0, 2)
	for _, k := range []string{c.APIKey, c.APIKey2} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
