// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pdiddy/citegraph/internal/cache"
	"github.com/pdiddy/citegraph/pkg/types"
)

// fakeAPI serves searches and citation links from in-memory maps.
type fakeAPI struct {
	mu          sync.Mutex
	searches    map[string][]types.Paper
	citations   map[string][]types.Paper
	references  map[string][]types.Paper
	searchCalls int32
	err         error
}

func (f *fakeAPI) Search(_ context.Context, query string, limit int) ([]types.Paper, error) {
	atomic.AddInt32(&f.searchCalls, 1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches[query], nil
}

func (f *fakeAPI) CitationsOf(_ context.Context, paperID string, limit int) ([]types.Paper, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return capped(f.citations[paperID], limit), nil
}

func (f *fakeAPI) ReferencesOf(_ context.Context, paperID string, limit int) ([]types.Paper, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return capped(f.references[paperID], limit), nil
}

func capped(papers []types.Paper, limit int) []types.Paper {
	if len(papers) > limit {
		return papers[:limit]
	}
	return papers
}

// fakeLLM answers decomposition prompts with canned JSON and rating
// prompts with a fixed label. It tells them apart by prompt content.
type fakeLLM struct {
	mu             sync.Mutex
	decomposeJSON  string
	ratingResponse string
	decomposeErr   error
	ratingErr      error
	decomposeCalls int
	ratingCalls    int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.Contains(prompt, "decompose academic search queries") {
		f.decomposeCalls++
		if f.decomposeErr != nil {
			return "", f.decomposeErr
		}
		return f.decomposeJSON, nil
	}
	f.ratingCalls++
	if f.ratingErr != nil {
		return "", f.ratingErr
	}
	return f.ratingResponse, nil
}

func paper(id, title string) types.Paper {
	return types.Paper{PaperID: id, Title: title}
}

func testAPI() *fakeAPI {
	return &fakeAPI{
		searches: map[string][]types.Paper{
			"transformer architecture": {paper("seed", "Attention Is All You Need")},
			"attention":                {paper("seed", "Attention Is All You Need")},
		},
		citations: map[string][]types.Paper{
			"seed": {paper("f1", "Forward One"), paper("f2", "Forward Two")},
			"f1":   {paper("f1a", "Nested Forward")},
		},
		references: map[string][]types.Paper{
			"seed": {paper("b1", "Backward One")},
			"b1":   {paper("b1a", "Nested Backward")},
		},
	}
}

func testLLM() *fakeLLM {
	return &fakeLLM{
		decomposeJSON: `{
			"components": [{"name": "attention", "description": "attention mechanisms", "keywords": ["self-attention"]}],
			"main_concepts": ["attention"],
			"relationships": ["attention replaces recurrence"]
		}`,
		ratingResponse: "Relevant",
	}
}

func newEngine(t *testing.T, api API, client *fakeLLM) *Engine {
	t.Helper()
	c, err := cache.New(types.CacheConfig{})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if client == nil {
		return New(api, c, nil, types.EngineConfig{})
	}
	return New(api, c, client, types.EngineConfig{})
}

func TestSearchUnrated(t *testing.T) {
	api := testAPI()
	llmClient := testLLM()
	eng := newEngine(t, api, llmClient)

	g, err := eng.Search(context.Background(), "transformer architecture", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if g.Query != "transformer architecture" {
		t.Errorf("Query = %q", g.Query)
	}
	if g.SeedPaper.PaperID != "seed" {
		t.Errorf("seed = %q", g.SeedPaper.PaperID)
	}
	if g.TotalForward != 2 || g.TotalBackward != 1 {
		t.Errorf("totals = %d/%d, want 2/1", g.TotalForward, g.TotalBackward)
	}
	if g.Decomposition != nil {
		t.Error("unrated search produced a decomposition")
	}
	if llmClient.decomposeCalls != 0 || llmClient.ratingCalls != 0 {
		t.Errorf("unrated search hit the model: %d/%d calls",
			llmClient.decomposeCalls, llmClient.ratingCalls)
	}
	if g.SeedPaper.RelevanceLabel != "" {
		t.Errorf("unrated seed label = %q", g.SeedPaper.RelevanceLabel)
	}
}

func TestSearchRated(t *testing.T) {
	api := testAPI()
	llmClient := testLLM()
	eng := newEngine(t, api, llmClient)

	g, err := eng.SearchRated(context.Background(), "transformer architecture", Options{})
	if err != nil {
		t.Fatalf("SearchRated: %v", err)
	}

	if g.Decomposition == nil || g.Decomposition.OriginalQuery != "transformer architecture" {
		t.Errorf("decomposition = %+v", g.Decomposition)
	}
	if g.SeedPaper.RelevanceLabel != types.Relevant {
		t.Errorf("seed label = %q, want Relevant", g.SeedPaper.RelevanceLabel)
	}
	for _, n := range g.ForwardCitations {
		if n.Paper.RelevanceLabel != types.Relevant {
			t.Errorf("node %s label = %q", n.Paper.PaperID, n.Paper.RelevanceLabel)
		}
		for _, np := range n.Nested.NestedForward {
			if np.RelevanceLabel != types.Relevant {
				t.Errorf("nested %s label = %q", np.PaperID, np.RelevanceLabel)
			}
		}
	}
	if llmClient.decomposeCalls != 1 {
		t.Errorf("decompose calls = %d, want 1", llmClient.decomposeCalls)
	}
}

func TestSearchRatedMemoized(t *testing.T) {
	api := testAPI()
	llmClient := testLLM()
	eng := newEngine(t, api, llmClient)
	ctx := context.Background()

	first, err := eng.SearchRated(ctx, "transformer architecture", Options{})
	if err != nil {
		t.Fatalf("SearchRated: %v", err)
	}
	callsAfterFirst := llmClient.decomposeCalls + llmClient.ratingCalls

	// Same query with different case and whitespace replays the cache.
	second, err := eng.SearchRated(ctx, "  Transformer Architecture ", Options{})
	if err != nil {
		t.Fatalf("SearchRated (cached): %v", err)
	}
	if got := llmClient.decomposeCalls + llmClient.ratingCalls; got != callsAfterFirst {
		t.Errorf("cached search hit the model: %d calls, want %d", got, callsAfterFirst)
	}
	if first.SeedPaper.PaperID != second.SeedPaper.PaperID ||
		first.TotalForward != second.TotalForward {
		t.Error("cached graph differs from original")
	}

	// Clearing the cache forces a rebuild.
	if err := eng.CacheClear(); err != nil {
		t.Fatalf("CacheClear: %v", err)
	}
	if _, err := eng.SearchRated(ctx, "transformer architecture", Options{}); err != nil {
		t.Fatalf("SearchRated (after clear): %v", err)
	}
	if llmClient.decomposeCalls != 2 {
		t.Errorf("decompose calls after clear = %d, want 2", llmClient.decomposeCalls)
	}
}

func TestSearchRatedDifferentLimitsNotShared(t *testing.T) {
	api := testAPI()
	llmClient := testLLM()
	eng := newEngine(t, api, llmClient)
	ctx := context.Background()

	if _, err := eng.SearchRated(ctx, "transformer architecture", Options{ForwardLimit: 1}); err != nil {
		t.Fatalf("SearchRated: %v", err)
	}
	if _, err := eng.SearchRated(ctx, "transformer architecture", Options{ForwardLimit: 2}); err != nil {
		t.Fatalf("SearchRated: %v", err)
	}
	if llmClient.decomposeCalls != 2 {
		t.Errorf("decompose calls = %d, want 2 for distinct limits", llmClient.decomposeCalls)
	}
}

func TestSearchRatedRatingFailureDegrades(t *testing.T) {
	api := testAPI()
	llmClient := testLLM()
	llmClient.ratingErr = errors.New("model overloaded")
	eng := newEngine(t, api, llmClient)

	var warnings bytes.Buffer
	eng.Warnings = &warnings

	g, err := eng.SearchRated(context.Background(), "transformer architecture", Options{})
	if err != nil {
		t.Fatalf("SearchRated: %v", err)
	}
	if g.SeedPaper.RelevanceLabel != types.Unrated {
		t.Errorf("seed label = %q, want Unrated", g.SeedPaper.RelevanceLabel)
	}
	if !strings.Contains(warnings.String(), "rating paper") {
		t.Errorf("warnings = %q, want rating diagnostics", warnings.String())
	}
}

func TestSearchRatedDecompositionFailure(t *testing.T) {
	api := testAPI()
	llmClient := testLLM()
	llmClient.decomposeErr = errors.New("model unavailable")
	eng := newEngine(t, api, llmClient)

	_, err := eng.SearchRated(context.Background(), "transformer architecture", Options{})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("err = %T, want *RequestError", err)
	}
	if reqErr.Kind != DecompositionFailed {
		t.Errorf("kind = %q, want %q", reqErr.Kind, DecompositionFailed)
	}

	// A failed build is not cached; one retry decomposes again.
	llmClient.decomposeErr = nil
	if _, err := eng.SearchRated(context.Background(), "transformer architecture", Options{}); err != nil {
		t.Fatalf("SearchRated after recovery: %v", err)
	}
}

func TestSearchRatedWithoutLLM(t *testing.T) {
	eng := newEngine(t, testAPI(), nil)

	_, err := eng.SearchRated(context.Background(), "q", Options{})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("err = %T, want *RequestError", err)
	}
	if reqErr.Kind != DecompositionFailed {
		t.Errorf("kind = %q, want %q", reqErr.Kind, DecompositionFailed)
	}
}

func TestSearchNoPaperFound(t *testing.T) {
	eng := newEngine(t, &fakeAPI{searches: map[string][]types.Paper{}}, nil)

	_, err := eng.Search(context.Background(), "no such paper", Options{})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("err = %T, want *RequestError", err)
	}
	if reqErr.Kind != NoPaperFound {
		t.Errorf("kind = %q, want %q", reqErr.Kind, NoPaperFound)
	}
}

func TestSearchUpstreamUnavailable(t *testing.T) {
	eng := newEngine(t, &fakeAPI{err: errors.New("exhausted retries")}, nil)

	_, err := eng.Search(context.Background(), "q", Options{})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("err = %T, want *RequestError", err)
	}
	if reqErr.Kind != UpstreamUnavailable {
		t.Errorf("kind = %q, want %q", reqErr.Kind, UpstreamUnavailable)
	}
}

func TestResolveFallbackThroughDecomposition(t *testing.T) {
	api := testAPI()
	// The full query has no match; the decomposition main concept does.
	delete(api.searches, "transformer architecture")

	llmClient := testLLM()
	eng := newEngine(t, api, llmClient)

	g, err := eng.SearchRated(context.Background(), "transformer architecture", Options{})
	if err != nil {
		t.Fatalf("SearchRated: %v", err)
	}
	if g.SeedPaper.PaperID != "seed" {
		t.Errorf("seed = %q, want seed via fallback", g.SeedPaper.PaperID)
	}
}

func TestCitationsOfDefaultsLimit(t *testing.T) {
	api := testAPI()
	eng := newEngine(t, api, nil)

	papers, err := eng.CitationsOf(context.Background(), "seed", 0)
	if err != nil {
		t.Fatalf("CitationsOf: %v", err)
	}
	// Default forward limit is 3; the fake holds 2.
	if len(papers) != 2 {
		t.Errorf("got %d papers, want 2", len(papers))
	}

	papers, err = eng.CitationsOf(context.Background(), "seed", 1)
	if err != nil {
		t.Fatalf("CitationsOf: %v", err)
	}
	if len(papers) != 1 {
		t.Errorf("got %d papers, want 1", len(papers))
	}
}

func TestCacheStats(t *testing.T) {
	eng := newEngine(t, testAPI(), nil)
	if stats := eng.CacheStats(); stats.EntryCount != 0 {
		t.Errorf("fresh stats = %+v", stats)
	}
}
