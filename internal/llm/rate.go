// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/citegraph/pkg/types"
)

// RatingError marks a failed relevance rating. Non-fatal: the caller
// downgrades the paper to Unrated and continues.
type RatingError struct {
	PaperID string
	Err     error
}

func (e *RatingError) Error() string {
	return fmt.Sprintf("rating paper %s: %v", e.PaperID, e.Err)
}

func (e *RatingError) Unwrap() error { return e.Err }

// abstractLimit caps how much of the abstract goes into the rating prompt.
const abstractLimit = 500

// ratePromptTmpl asks the model to rate one paper against the decomposed
// query criteria, answering with exactly one label.
var ratePromptTmpl = template.Must(template.New("rate").Parse(`You are a research paper relevance evaluator. Rate how relevant a paper is to a given search query based on the decomposed criteria.

ORIGINAL QUERY: {{.Query}}

RELEVANCE CRITERIA (from query decomposition):
Main Concepts: {{.MainConcepts}}

Components:
{{.Components}}

Relationships:
{{.Relationships}}

PAPER TO EVALUATE:
{{.Paper}}

Rate this paper's relevance to the original query and criteria. Choose ONE of these ratings:
1. "Perfectly Relevant" - The paper directly addresses all or most of the main concepts and components, with strong alignment to the relationships described.
2. "Relevant" - The paper addresses some of the main concepts and components, with moderate alignment to the query.
3. "Somewhat Relevant" - The paper has some connection to the query but only addresses a few concepts or has weak alignment.

Respond with ONLY the rating: "Perfectly Relevant", "Relevant", or "Somewhat Relevant" (no other text).
`))

// Rate scores paper against the decomposition. On any failure it returns
// Unrated and a *RatingError; the request continues either way.
func Rate(ctx context.Context, client Client, paper types.Paper, dec *types.Decomposition) (types.RelevanceLabel, error) {
	prompt, err := renderRatePrompt(paper, dec)
	if err != nil {
		return types.Unrated, &RatingError{PaperID: paper.PaperID, Err: err}
	}

	text, err := client.Generate(ctx, prompt)
	if err != nil {
		return types.Unrated, &RatingError{PaperID: paper.PaperID, Err: err}
	}

	label, ok := normalizeLabel(text)
	if !ok {
		return types.Unrated, &RatingError{PaperID: paper.PaperID,
			Err: fmt.Errorf("unrecognized rating %q", strings.TrimSpace(text))}
	}
	return label, nil
}

func renderRatePrompt(paper types.Paper, dec *types.Decomposition) (string, error) {
	var components strings.Builder
	for _, c := range dec.Components {
		fmt.Fprintf(&components, "- %s: %s (Keywords: %s)\n", c.Name, c.Description, strings.Join(c.Keywords, ", "))
	}

	var relationships strings.Builder
	for _, r := range dec.Relationships {
		fmt.Fprintf(&relationships, "- %s\n", r)
	}

	paperInfo := "Title: " + paper.Title
	if paper.Abstract != "" {
		abstract := paper.Abstract
		if len(abstract) > abstractLimit {
			abstract = abstract[:abstractLimit]
		}
		paperInfo += "\nAbstract: " + abstract
	}

	var buf bytes.Buffer
	err := ratePromptTmpl.Execute(&buf, map[string]string{
		"Query":         dec.OriginalQuery,
		"MainConcepts":  strings.Join(dec.MainConcepts, ", "),
		"Components":    components.String(),
		"Relationships": relationships.String(),
		"Paper":         paperInfo,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// normalizeLabel maps a model response onto one of the three labels.
// "Somewhat Relevant" is checked before "Relevant", which it contains.
func normalizeLabel(text string) (types.RelevanceLabel, bool) {
	text = strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "").Replace(text))
	switch {
	case strings.Contains(text, string(types.PerfectlyRelevant)):
		return types.PerfectlyRelevant, true
	case strings.Contains(text, string(types.SomewhatRelevant)):
		return types.SomewhatRelevant, true
	case strings.Contains(text, string(types.Relevant)):
		return types.Relevant, true
	default:
		return types.Unrated, false
	}
}
