// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import "github.com/pdiddy/citegraph/pkg/types"

// Assemble shapes traversal results into the response structure. Pure
// transformation: no I/O, no failure modes. Edges are deduplicated in
// first-seen order; totals reflect the node counts actually returned.
func Assemble(seed types.Paper, forward, backward []types.PaperWithNested, edges []types.CitationEdge) *types.CitationGraph {
	return &types.CitationGraph{
		SeedPaper:         seed,
		ForwardCitations:  forward,
		BackwardCitations: backward,
		Edges:             dedupeEdges(edges),
		TotalForward:      len(forward),
		TotalBackward:     len(backward),
	}
}

func dedupeEdges(edges []types.CitationEdge) []types.CitationEdge {
	seen := make(map[types.CitationEdge]bool, len(edges))
	deduped := make([]types.CitationEdge, 0, len(edges))
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		deduped = append(deduped, e)
	}
	return deduped
}
