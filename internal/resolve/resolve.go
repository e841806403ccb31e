// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns a query plus its decomposition into the single
// seed paper that roots the citation traversal.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/citegraph/pkg/types"
)

// ErrNoPaperFound means no seed paper could be identified, even after
// searching every decomposition fallback.
var ErrNoPaperFound = errors.New("no paper found for query or any of its components")

// Searcher is the paper search the resolver drives. In production this is
// the cached fetcher.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]types.Paper, error)
}

// seedLimit is the result count requested per search. The resolver takes
// the top-ranked result as returned by the API, without re-ranking.
const seedLimit = 1

// Resolve finds the seed paper for query.
//
// The full query is searched first. Broad multi-concept queries often
// return no exact match while narrower sub-queries do, so on zero results
// the resolver falls back to the decomposition in order: main concepts,
// component names, component descriptions, then component keywords. The
// first search that yields any result wins. With every fallback exhausted
// it returns ErrNoPaperFound; a nil decomposition skips the fallbacks.
func Resolve(ctx context.Context, s Searcher, query string, dec *types.Decomposition) (types.Paper, error) {
	paper, ok, err := searchTop(ctx, s, query)
	if err != nil || ok {
		return paper, err
	}

	if dec != nil {
		for _, term := range fallbackTerms(dec) {
			paper, ok, err = searchTop(ctx, s, term)
			if err != nil || ok {
				return paper, err
			}
		}
	}

	return types.Paper{}, fmt.Errorf("resolving %q: %w", query, ErrNoPaperFound)
}

// fallbackTerms lists the decomposition-derived search terms in fallback order.
func fallbackTerms(dec *types.Decomposition) []string {
	var terms []string
	terms = append(terms, dec.MainConcepts...)
	for _, c := range dec.Components {
		if c.Name != "" {
			terms = append(terms, c.Name)
		}
	}
	for _, c := range dec.Components {
		if c.Description != "" {
			terms = append(terms, c.Description)
		}
	}
	for _, c := range dec.Components {
		terms = append(terms, c.Keywords...)
	}
	return terms
}

func searchTop(ctx context.Context, s Searcher, term string) (types.Paper, bool, error) {
	if term == "" {
		return types.Paper{}, false, nil
	}
	results, err := s.Search(ctx, term, seedLimit)
	if err != nil {
		return types.Paper{}, false, err
	}
	if len(results) == 0 {
		return types.Paper{}, false, nil
	}
	return results[0], true, nil
}
