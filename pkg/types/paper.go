// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RelevanceLabel categorizes how well a paper matches the decomposed
// intent of a search query. Assigned post-fetch by the rating collaborator;
// every other Paper field is immutable once fetched.
type RelevanceLabel string

const (
	PerfectlyRelevant RelevanceLabel = "Perfectly Relevant"
	Relevant          RelevanceLabel = "Relevant"
	SomewhatRelevant  RelevanceLabel = "Somewhat Relevant"
	Unrated           RelevanceLabel = "Unrated"
)

// Paper holds the metadata returned by the citation API for one paper.
type Paper struct {
	// PaperID is the opaque identifier assigned by the paper database.
	// Globally unique per source; node identity in the citation graph.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract, when the API provides one.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year (0 if unknown).
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// CitationCount is the number of papers citing this one, per the API.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// ReferenceCount is the number of papers this one cites, per the API.
	ReferenceCount int `json:"reference_count,omitempty" yaml:"reference_count,omitempty"`

	// URL is the paper's landing page.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// RelevanceLabel is the rating against the decomposed query.
	// Empty until the rating collaborator has run; Unrated when rating failed.
	RelevanceLabel RelevanceLabel `json:"relevance_label,omitempty" yaml:"relevance_label,omitempty"`
}

// Component is one concept carved out of a search query by decomposition.
type Component struct {
	// Name is the component's short name (e.g. "Neural Networks").
	Name string `json:"name" yaml:"name"`

	// Description explains what the component covers.
	Description string `json:"description" yaml:"description"`

	// Keywords are search terms associated with the component.
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Decomposition is the structured breakdown of a search query produced by
// the decomposition collaborator. Built once per request, read-only after.
type Decomposition struct {
	// OriginalQuery is the query as the user typed it.
	OriginalQuery string `json:"original_query" yaml:"original_query"`

	// Components lists the query's constituent concepts in order.
	Components []Component `json:"components" yaml:"components"`

	// MainConcepts are the core ideas of the query.
	MainConcepts []string `json:"main_concepts" yaml:"main_concepts"`

	// Relationships describe how the components connect.
	Relationships []string `json:"relationships" yaml:"relationships"`
}
