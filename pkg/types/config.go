// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citegraph engine:
// papers, query decompositions, citation graphs, and stage configurations.
package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citegraph/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the resilient fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional Semantic Scholar API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxAttempts is the total number of attempts per fetch, including the
	// first (default 10).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RetryDelay is the fixed delay between attempts (default 1s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// CacheConfig holds settings for the fetch cache.
type CacheConfig struct {
	// Durable enables the SQLite mirror tier. The in-memory tier is
	// always present.
	Durable bool `json:"durable" yaml:"durable"`

	// CacheDir is the directory holding the SQLite mirror (default "cache").
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// LLMConfig holds settings for the decomposition and rating collaborators.
type LLMConfig struct {
	// Provider selects the backend: gemini, openai, or claude.
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible servers).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// EngineConfig holds traversal defaults for the citation engine.
type EngineConfig struct {
	// ForwardLimit caps the number of level-1 papers citing the seed (default 3).
	ForwardLimit int `json:"forward_limit" yaml:"forward_limit"`

	// BackwardLimit caps the number of level-1 papers the seed cites (default 3).
	BackwardLimit int `json:"backward_limit" yaml:"backward_limit"`

	// NestedLimit caps each level-2 list (default 3).
	NestedLimit int `json:"nested_limit" yaml:"nested_limit"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`
}

// Config groups all component configurations.
type Config struct {
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Cache  CacheConfig  `json:"cache" yaml:"cache"`
	LLM    LLMConfig    `json:"llm" yaml:"llm"`
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Server ServerConfig `json:"server" yaml:"server"`
}
