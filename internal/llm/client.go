// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm hosts the two language-model collaborators of the engine:
// query decomposition and paper relevance rating. The provider behind them
// is selected by configuration.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/citegraph/pkg/types"
)

// Client generates a completion for a prompt. Implementations exist for
// Gemini, OpenAI-compatible servers, and Claude; tests supply fakes.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewClient builds a Client for the configured provider.
func NewClient(ctx context.Context, cfg types.LLMConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini", "":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q: use gemini, openai, or claude", cfg.Provider)
	}
}
