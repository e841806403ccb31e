// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/citegraph/internal/cache"
	"github.com/pdiddy/citegraph/internal/engine"
	"github.com/pdiddy/citegraph/internal/fetch"
	"github.com/pdiddy/citegraph/internal/llm"
	"github.com/pdiddy/citegraph/internal/secrets"
	"github.com/pdiddy/citegraph/pkg/types"
)

// loadConfig assembles the effective configuration from the config file,
// environment, and secrets directory.
func loadConfig() types.Config {
	cfg := types.Config{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("fetch.timeout"),
				UserAgent: viper.GetString("fetch.user_agent"),
			},
			APIKey:      viper.GetString("fetch.api_key"),
			MaxAttempts: viper.GetInt("fetch.max_attempts"),
			RetryDelay:  viper.GetDuration("fetch.retry_delay"),
		},
		Cache: types.CacheConfig{
			Durable:  viper.GetBool("cache.durable"),
			CacheDir: viper.GetString("cache.cache_dir"),
		},
		LLM: types.LLMConfig{
			Provider: viper.GetString("llm.provider"),
			Model:    viper.GetString("llm.model"),
			APIKey:   viper.GetString("llm.api_key"),
			BaseURL:  viper.GetString("llm.base_url"),
		},
		Engine: types.EngineConfig{
			ForwardLimit:  viper.GetInt("engine.forward_limit"),
			BackwardLimit: viper.GetInt("engine.backward_limit"),
			NestedLimit:   viper.GetInt("engine.nested_limit"),
		},
		Server: types.ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
	}

	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "citegraph/" + version
	}
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}

	cfg.Fetch.APIKey = secrets.Get(loadedSecrets, "semantic-scholar-api-key", cfg.Fetch.APIKey)
	cfg.LLM.APIKey = secrets.Get(loadedSecrets, llmSecretKey(cfg.LLM.Provider), cfg.LLM.APIKey)

	return cfg
}

func llmSecretKey(provider string) string {
	switch provider {
	case "openai":
		return "openai-api-key"
	case "claude":
		return "anthropic-api-key"
	default:
		return "gemini-api-key"
	}
}

// buildEngine wires fetcher, cache, and (optionally) the LLM client into
// an engine. withLLM is false for commands that never decompose or rate.
func buildEngine(ctx context.Context, cfg types.Config, withLLM bool) (*engine.Engine, *cache.Cache, error) {
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, nil, err
	}

	api := cache.NewCachedAPI(fetch.NewClient(cfg.Fetch), c)

	var client llm.Client
	if withLLM {
		client, err = llm.NewClient(ctx, cfg.LLM)
		if err != nil {
			c.Close()
			return nil, nil, err
		}
	}

	return engine.New(api, c, client, cfg.Engine), c, nil
}
