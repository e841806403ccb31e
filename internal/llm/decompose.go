// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/pdiddy/citegraph/pkg/types"
)

// DecompositionError marks a failed query decomposition. No graph can be
// built without the decomposition, so it aborts the whole request.
type DecompositionError struct {
	Err error
}

func (e *DecompositionError) Error() string {
	return fmt.Sprintf("decomposing query: %v", e.Err)
}

func (e *DecompositionError) Unwrap() error { return e.Err }

// decomposePromptTmpl asks the model to break a search query into
// components, keywords, main concepts, and relationships, as JSON.
var decomposePromptTmpl = template.Must(template.New("decompose").Parse(`You are a research assistant helping to decompose academic search queries into their component parts.

Given the following search query: "{{.Query}}"

Please analyze and break it down into:
1. Individual components/concepts (each major topic or subject)
2. Keywords for each component
3. Main concepts (the core ideas)
4. Relationships between components (how they connect)

Format your response as JSON with this structure:
{
  "components": [
    {
      "name": "component name",
      "description": "brief description",
      "keywords": ["keyword1", "keyword2", "keyword3"]
    }
  ],
  "main_concepts": ["concept1", "concept2"],
  "relationships": ["relationship description 1", "relationship description 2"]
}

Respond with ONLY the JSON object, no other text.
`))

// jsonObjectPattern extracts a JSON object embedded in surrounding prose.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Decompose breaks query into structured components via the model.
// Called once per request; the result is read-only afterwards.
func Decompose(ctx context.Context, client Client, query string) (*types.Decomposition, error) {
	var buf bytes.Buffer
	if err := decomposePromptTmpl.Execute(&buf, struct{ Query string }{Query: query}); err != nil {
		return nil, &DecompositionError{Err: err}
	}

	text, err := client.Generate(ctx, buf.String())
	if err != nil {
		return nil, &DecompositionError{Err: err}
	}

	var dec types.Decomposition
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &dec); err != nil {
		return nil, &DecompositionError{Err: fmt.Errorf("parsing decomposition JSON: %w", err)}
	}

	dec.OriginalQuery = query
	return &dec, nil
}

// ExtractJSON strips markdown code fences and surrounding prose from a
// model response, returning the embedded JSON object when one exists.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.Contains(text, "```json") {
		parts := strings.SplitN(text, "```json", 2)
		text = strings.SplitN(parts[1], "```", 2)[0]
	} else if strings.Contains(text, "```") {
		parts := strings.Split(text, "```")
		if len(parts) >= 3 {
			text = strings.TrimPrefix(strings.TrimSpace(parts[1]), "json")
		}
	}

	if m := jsonObjectPattern.FindString(text); m != "" {
		return m
	}
	return strings.TrimSpace(text)
}
