// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph expands a seed paper into a two-level citation graph:
// papers citing and cited by the seed, each expanded one hop further.
package graph

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citegraph/pkg/types"
)

// API is the citation lookup the traversal drives. In production this is
// the cached fetcher.
type API interface {
	CitationsOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error)
	ReferencesOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error)
}

// Options bounds a traversal.
type Options struct {
	// ForwardLimit caps level-1 papers citing the seed.
	ForwardLimit int

	// BackwardLimit caps level-1 papers the seed cites.
	BackwardLimit int

	// NestedLimit caps each level-2 list.
	NestedLimit int

	// BothDirections expands every level-1 paper in both directions.
	// When false, forward papers expand forward only and backward papers
	// backward only.
	BothDirections bool
}

type direction int

const (
	forward direction = iota
	backward
)

// nodeKey identifies one level-1 expansion. The direction is part of the
// key because the same paper can sit in both level-1 lists with different
// expansion directions.
type nodeKey struct {
	dir direction
	id  string
}

// expansion is the outcome of one level-2 task.
type expansion struct {
	nested types.NestedCitations
	edges  []types.CitationEdge
}

// BuildGraph expands seed into a citation graph bounded by opts.
//
// The two level-1 fetches run concurrently, then one task per level-1
// paper performs its level-2 expansion; results are attached to the
// originating node by paper ID, so completion order never changes the
// graph shape. Any exhausted or fatal fetch error aborts the whole build;
// partial graphs are not returned, though completed sub-fetches remain
// cached for future requests.
func BuildGraph(ctx context.Context, api API, seed types.Paper, opts Options) (*types.CitationGraph, error) {
	var fwd, bwd []types.Paper

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		papers, err := api.CitationsOf(gctx, seed.PaperID, opts.ForwardLimit)
		if err != nil {
			return err
		}
		fwd = papers
		return nil
	})
	g.Go(func() error {
		papers, err := api.ReferencesOf(gctx, seed.PaperID, opts.BackwardLimit)
		if err != nil {
			return err
		}
		bwd = papers
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fwd = dedupeLevel1(fwd, seed.PaperID, opts.ForwardLimit)
	bwd = dedupeLevel1(bwd, seed.PaperID, opts.BackwardLimit)

	// Papers that must never reappear as level-2 nodes.
	reserved := map[string]bool{seed.PaperID: true}
	for _, p := range fwd {
		reserved[p.PaperID] = true
	}
	for _, p := range bwd {
		reserved[p.PaperID] = true
	}

	// Level-2 expansion, one task per level-1 paper. Attachment is keyed
	// by direction and paper ID, not completion order.
	var mu sync.Mutex
	expansions := make(map[nodeKey]expansion)

	g, gctx = errgroup.WithContext(ctx)
	for _, p := range fwd {
		p := p
		g.Go(func() error {
			exp, err := expandNode(gctx, api, p, forward, opts, reserved)
			if err != nil {
				return err
			}
			mu.Lock()
			expansions[nodeKey{forward, p.PaperID}] = exp
			mu.Unlock()
			return nil
		})
	}
	for _, p := range bwd {
		p := p
		g.Go(func() error {
			exp, err := expandNode(gctx, api, p, backward, opts, reserved)
			if err != nil {
				return err
			}
			mu.Lock()
			expansions[nodeKey{backward, p.PaperID}] = exp
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stitch results back together in level-1 list order, so identical
	// API responses always produce an identical graph.
	var edges []types.CitationEdge
	forwardNodes := make([]types.PaperWithNested, 0, len(fwd))
	for _, p := range fwd {
		exp := expansions[nodeKey{forward, p.PaperID}]
		forwardNodes = append(forwardNodes, types.PaperWithNested{Paper: p, Nested: exp.nested})
		edges = append(edges, types.CitationEdge{FromPaperID: p.PaperID, ToPaperID: seed.PaperID})
		edges = append(edges, exp.edges...)
	}
	backwardNodes := make([]types.PaperWithNested, 0, len(bwd))
	for _, p := range bwd {
		exp := expansions[nodeKey{backward, p.PaperID}]
		backwardNodes = append(backwardNodes, types.PaperWithNested{Paper: p, Nested: exp.nested})
		edges = append(edges, types.CitationEdge{FromPaperID: seed.PaperID, ToPaperID: p.PaperID})
		edges = append(edges, exp.edges...)
	}

	return Assemble(seed, forwardNodes, backwardNodes, edges), nil
}

// expandNode performs the level-2 expansion for one level-1 paper.
func expandNode(ctx context.Context, api API, p types.Paper, dir direction, opts Options, reserved map[string]bool) (expansion, error) {
	var exp expansion

	if dir == forward || opts.BothDirections {
		citing, err := api.CitationsOf(ctx, p.PaperID, opts.NestedLimit)
		if err != nil {
			return expansion{}, err
		}
		exp.nested.NestedForward = filterNested(citing, p.PaperID, opts.NestedLimit, reserved, &exp.edges,
			func(id string) types.CitationEdge {
				return types.CitationEdge{FromPaperID: id, ToPaperID: p.PaperID}
			})
	}

	if dir == backward || opts.BothDirections {
		cited, err := api.ReferencesOf(ctx, p.PaperID, opts.NestedLimit)
		if err != nil {
			return expansion{}, err
		}
		exp.nested.NestedBackward = filterNested(cited, p.PaperID, opts.NestedLimit, reserved, &exp.edges,
			func(id string) types.CitationEdge {
				return types.CitationEdge{FromPaperID: p.PaperID, ToPaperID: id}
			})
	}

	return exp, nil
}

// filterNested drops papers already present as the seed or at level 1 from
// a nested node set, recording their edges anyway, and caps the set at
// limit. A paper dropped here keeps its single node elsewhere in the graph;
// the edge accumulates against that node.
func filterNested(papers []types.Paper, selfID string, limit int, reserved map[string]bool, edges *[]types.CitationEdge, edge func(id string) types.CitationEdge) []types.Paper {
	var kept []types.Paper
	seen := map[string]bool{selfID: true}
	for _, p := range papers {
		if p.PaperID == "" || seen[p.PaperID] {
			continue
		}
		seen[p.PaperID] = true
		*edges = append(*edges, edge(p.PaperID))
		if reserved[p.PaperID] {
			continue
		}
		if len(kept) < limit {
			kept = append(kept, p)
		}
	}
	return kept
}

// dedupeLevel1 removes the seed and in-list duplicates, preserving API
// order, and caps the list at limit.
func dedupeLevel1(papers []types.Paper, seedID string, limit int) []types.Paper {
	var kept []types.Paper
	seen := map[string]bool{seedID: true}
	for _, p := range papers {
		if p.PaperID == "" || seen[p.PaperID] {
			continue
		}
		seen[p.PaperID] = true
		if len(kept) < limit {
			kept = append(kept, p)
		}
	}
	return kept
}
