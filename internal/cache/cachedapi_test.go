// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pdiddy/citegraph/pkg/types"
)

// fakeUpstream counts calls per operation and returns canned papers.
type fakeUpstream struct {
	searchCalls     int
	citationsCalls  int
	referencesCalls int
	err             error
}

func (f *fakeUpstream) Search(_ context.Context, query string, limit int) ([]types.Paper, error) {
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []types.Paper{{PaperID: "s-" + query, Title: "Search result"}}, nil
}

func (f *fakeUpstream) CitationsOf(_ context.Context, paperID string, limit int) ([]types.Paper, error) {
	f.citationsCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []types.Paper{{PaperID: "c-" + paperID, Title: "Citing paper"}}, nil
}

func (f *fakeUpstream) ReferencesOf(_ context.Context, paperID string, limit int) ([]types.Paper, error) {
	f.referencesCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []types.Paper{{PaperID: "r-" + paperID, Title: "Cited paper"}}, nil
}

func TestKeyFormat(t *testing.T) {
	if got, want := Key("search", "deep learning", 3), "search:deep learning:3"; got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
	if Key("citations", "p1", 3) == Key("references", "p1", 3) {
		t.Error("citations and references keys must differ")
	}
	if Key("search", "q", 3) == Key("search", "q", 5) {
		t.Error("keys with different limits must differ")
	}
}

func TestCachedAPIMemoizesPerOperation(t *testing.T) {
	up := &fakeUpstream{}
	api := NewCachedAPI(up, newMemCache(t))
	ctx := context.Background()

	first, err := api.Search(ctx, "q", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, err := api.Search(ctx, "q", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if up.searchCalls != 1 {
		t.Errorf("upstream Search called %d times, want 1", up.searchCalls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}

	// Same paper ID through different operations hits the upstream twice.
	if _, err := api.CitationsOf(ctx, "p1", 3); err != nil {
		t.Fatalf("CitationsOf: %v", err)
	}
	if _, err := api.ReferencesOf(ctx, "p1", 3); err != nil {
		t.Fatalf("ReferencesOf: %v", err)
	}
	if up.citationsCalls != 1 || up.referencesCalls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", up.citationsCalls, up.referencesCalls)
	}
}

func TestCachedAPIDifferentLimitsAreSeparate(t *testing.T) {
	up := &fakeUpstream{}
	api := NewCachedAPI(up, newMemCache(t))
	ctx := context.Background()

	if _, err := api.CitationsOf(ctx, "p1", 3); err != nil {
		t.Fatalf("CitationsOf: %v", err)
	}
	if _, err := api.CitationsOf(ctx, "p1", 5); err != nil {
		t.Fatalf("CitationsOf: %v", err)
	}
	if up.citationsCalls != 2 {
		t.Errorf("upstream called %d times, want 2 for distinct limits", up.citationsCalls)
	}
}

func TestCachedAPIErrorNotCached(t *testing.T) {
	up := &fakeUpstream{err: errors.New("boom")}
	c := newMemCache(t)
	api := NewCachedAPI(up, c)
	ctx := context.Background()

	if _, err := api.Search(ctx, "q", 3); err == nil {
		t.Fatal("Search succeeded, want error")
	}

	up.err = nil
	papers, err := api.Search(ctx, "q", 3)
	if err != nil {
		t.Fatalf("Search after recovery: %v", err)
	}
	if len(papers) != 1 || papers[0].PaperID != "s-q" {
		t.Errorf("papers = %+v", papers)
	}
	if up.searchCalls != 2 {
		t.Errorf("upstream called %d times, want 2 (failure not cached)", up.searchCalls)
	}
}
