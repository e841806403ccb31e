// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine orchestrates a citation search end to end: decompose the
// query, resolve the seed paper, traverse the citation graph, and rate the
// discovered papers.
package engine

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/citegraph/internal/cache"
	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/llm"
	"github.com/pdiddy/citegraph/internal/resolve"
	"github.com/pdiddy/citegraph/pkg/types"
)

// API is the cached paper database interface the engine drives.
type API interface {
	Search(ctx context.Context, query string, limit int) ([]types.Paper, error)
	CitationsOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error)
	ReferencesOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error)
}

// Options bounds a single search request. Zero values fall back to the
// configured defaults.
type Options struct {
	ForwardLimit  int
	BackwardLimit int
	NestedLimit   int
}

// Engine owns one citation search pipeline. The cache it holds is
// process-wide and outlives individual requests.
type Engine struct {
	api      API
	cache    *cache.Cache
	llm      llm.Client // nil disables decomposition and rating
	defaults types.EngineConfig

	// Warnings receives non-fatal diagnostics (e.g. rating failures).
	Warnings io.Writer
}

// New builds an Engine. client may be nil, in which case only unrated
// searches are available.
func New(api API, c *cache.Cache, client llm.Client, cfg types.EngineConfig) *Engine {
	if cfg.ForwardLimit <= 0 {
		cfg.ForwardLimit = 3
	}
	if cfg.BackwardLimit <= 0 {
		cfg.BackwardLimit = 3
	}
	if cfg.NestedLimit <= 0 {
		cfg.NestedLimit = 3
	}
	return &Engine{
		api:      api,
		cache:    c,
		llm:      client,
		defaults: cfg,
		Warnings: io.Discard,
	}
}

// Search builds an unrated citation graph for query: the seed is the top
// search result (no decomposition fallback), forward papers expand
// forward and backward papers backward.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (*types.CitationGraph, error) {
	opts = e.withDefaults(opts)

	seed, err := resolve.Resolve(ctx, e.api, query, nil)
	if err != nil {
		return nil, classify(err)
	}

	g, err := graph.BuildGraph(ctx, e.api, seed, graph.Options{
		ForwardLimit:  opts.ForwardLimit,
		BackwardLimit: opts.BackwardLimit,
		NestedLimit:   opts.NestedLimit,
	})
	if err != nil {
		return nil, classify(err)
	}

	g.Query = query
	return g, nil
}

// SearchRated builds a rated citation graph: the query is decomposed, the
// seed resolved with decomposition fallback, every level-1 paper expanded
// in both directions, and every discovered paper rated for relevance.
//
// Whole responses are memoized in the shared cache, keyed by normalized
// query and limits, so repeating a search is free until the cache is
// cleared.
func (e *Engine) SearchRated(ctx context.Context, query string, opts Options) (*types.CitationGraph, error) {
	if e.llm == nil {
		return nil, &RequestError{Kind: DecompositionFailed,
			Err: fmt.Errorf("no llm provider configured")}
	}
	opts = e.withDefaults(opts)

	raw, err := e.cache.GetOrFetch(ctx, ratedKey(query, opts), func(ctx context.Context) ([]byte, error) {
		g, err := e.buildRated(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		return json.Marshal(g)
	})
	if err != nil {
		return nil, classify(err)
	}

	var g types.CitationGraph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, classify(fmt.Errorf("decoding cached graph: %w", err))
	}
	return &g, nil
}

func (e *Engine) buildRated(ctx context.Context, query string, opts Options) (*types.CitationGraph, error) {
	dec, err := llm.Decompose(ctx, e.llm, query)
	if err != nil {
		return nil, err
	}

	seed, err := resolve.Resolve(ctx, e.api, query, dec)
	if err != nil {
		return nil, err
	}

	g, err := graph.BuildGraph(ctx, e.api, seed, graph.Options{
		ForwardLimit:   opts.ForwardLimit,
		BackwardLimit:  opts.BackwardLimit,
		NestedLimit:    opts.NestedLimit,
		BothDirections: true,
	})
	if err != nil {
		return nil, err
	}

	g.Query = query
	g.Decomposition = dec
	e.rateGraph(ctx, g, dec)
	return g, nil
}

// rateGraph labels every paper in the graph. A rating failure downgrades
// that one paper to Unrated and the request continues.
func (e *Engine) rateGraph(ctx context.Context, g *types.CitationGraph, dec *types.Decomposition) {
	e.ratePaper(ctx, &g.SeedPaper, dec)
	for _, nodes := range [][]types.PaperWithNested{g.ForwardCitations, g.BackwardCitations} {
		for i := range nodes {
			e.ratePaper(ctx, &nodes[i].Paper, dec)
			for j := range nodes[i].Nested.NestedForward {
				e.ratePaper(ctx, &nodes[i].Nested.NestedForward[j], dec)
			}
			for j := range nodes[i].Nested.NestedBackward {
				e.ratePaper(ctx, &nodes[i].Nested.NestedBackward[j], dec)
			}
		}
	}
}

func (e *Engine) ratePaper(ctx context.Context, p *types.Paper, dec *types.Decomposition) {
	label, err := llm.Rate(ctx, e.llm, *p, dec)
	if err != nil {
		fmt.Fprintf(e.Warnings, "warning: %v\n", err)
	}
	p.RelevanceLabel = label
}

// Resolve returns the seed paper for query without decomposition fallback.
func (e *Engine) Resolve(ctx context.Context, query string) (types.Paper, error) {
	seed, err := resolve.Resolve(ctx, e.api, query, nil)
	if err != nil {
		return types.Paper{}, classify(err)
	}
	return seed, nil
}

// Decompose breaks query into structured components.
func (e *Engine) Decompose(ctx context.Context, query string) (*types.Decomposition, error) {
	if e.llm == nil {
		return nil, &RequestError{Kind: DecompositionFailed,
			Err: fmt.Errorf("no llm provider configured")}
	}
	dec, err := llm.Decompose(ctx, e.llm, query)
	if err != nil {
		return nil, classify(err)
	}
	return dec, nil
}

// CitationsOf returns papers citing paperID, through the cache.
func (e *Engine) CitationsOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error) {
	if limit <= 0 {
		limit = e.defaults.ForwardLimit
	}
	papers, err := e.api.CitationsOf(ctx, paperID, limit)
	if err != nil {
		return nil, classify(err)
	}
	return papers, nil
}

// ReferencesOf returns papers paperID cites, through the cache.
func (e *Engine) ReferencesOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error) {
	if limit <= 0 {
		limit = e.defaults.BackwardLimit
	}
	papers, err := e.api.ReferencesOf(ctx, paperID, limit)
	if err != nil {
		return nil, classify(err)
	}
	return papers, nil
}

// CacheClear resets the shared cache.
func (e *Engine) CacheClear() error { return e.cache.Clear() }

// CacheStats reports cache usage counters.
func (e *Engine) CacheStats() cache.Stats { return e.cache.Stats() }

func (e *Engine) withDefaults(opts Options) Options {
	if opts.ForwardLimit <= 0 {
		opts.ForwardLimit = e.defaults.ForwardLimit
	}
	if opts.BackwardLimit <= 0 {
		opts.BackwardLimit = e.defaults.BackwardLimit
	}
	if opts.NestedLimit <= 0 {
		opts.NestedLimit = e.defaults.NestedLimit
	}
	return opts
}

// ratedKey builds the memoization key for a rated search.
func ratedKey(query string, opts Options) string {
	normalized := fmt.Sprintf("%s:%d:%d:%d",
		strings.ToLower(strings.TrimSpace(query)),
		opts.ForwardLimit, opts.BackwardLimit, opts.NestedLimit)
	sum := md5.Sum([]byte(normalized))
	return "rated:" + hex.EncodeToString(sum[:])
}
