// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CitationEdge is a directed edge meaning "From cites To".
type CitationEdge struct {
	// FromPaperID identifies the citing paper.
	FromPaperID string `json:"from_paper_id" yaml:"from_paper_id"`

	// ToPaperID identifies the cited paper.
	ToPaperID string `json:"to_paper_id" yaml:"to_paper_id"`
}

// NestedCitations holds the level-2 expansion of a level-1 paper: the
// papers citing it and the papers it cites, each truncated to the
// configured nested limit.
type NestedCitations struct {
	// NestedForward lists papers that cite the level-1 paper.
	NestedForward []Paper `json:"nested_forward" yaml:"nested_forward"`

	// NestedBackward lists papers the level-1 paper cites.
	NestedBackward []Paper `json:"nested_backward" yaml:"nested_backward"`
}

// PaperWithNested pairs a level-1 paper with its level-2 expansion.
type PaperWithNested struct {
	Paper  Paper           `json:"paper" yaml:"paper"`
	Nested NestedCitations `json:"nested" yaml:"nested"`
}

// CitationGraph is the response root for a citation search: the seed paper
// plus two levels of forward and backward citations.
//
// Node identity is by PaperID. A paper never appears twice as the same node
// in one list; a paper discovered via multiple paths is coalesced into one
// node, with its edges accumulated in Edges.
type CitationGraph struct {
	// Query is the original search query.
	Query string `json:"query" yaml:"query"`

	// Decomposition is the structured query breakdown that drove resolution
	// and rating. Nil for unrated searches.
	Decomposition *Decomposition `json:"decomposition,omitempty" yaml:"decomposition,omitempty"`

	// SeedPaper is the paper judged most relevant to the query; the root
	// of the traversal.
	SeedPaper Paper `json:"seed_paper" yaml:"seed_paper"`

	// ForwardCitations lists papers citing the seed, in API order,
	// truncated to the forward limit.
	ForwardCitations []PaperWithNested `json:"forward_citations" yaml:"forward_citations"`

	// BackwardCitations lists papers the seed cites, in API order,
	// truncated to the backward limit.
	BackwardCitations []PaperWithNested `json:"backward_citations" yaml:"backward_citations"`

	// Edges is the deduplicated flat edge list covering every citation
	// relation discovered during traversal, including edges to papers that
	// were coalesced into existing nodes.
	Edges []CitationEdge `json:"edges" yaml:"edges"`

	// TotalForward and TotalBackward count the level-1 nodes actually
	// returned; each may be less than the requested limit.
	TotalForward  int `json:"total_forward" yaml:"total_forward"`
	TotalBackward int `json:"total_backward" yaml:"total_backward"`
}
