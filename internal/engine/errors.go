// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"errors"
	"fmt"

	"github.com/pdiddy/citegraph/internal/llm"
	"github.com/pdiddy/citegraph/internal/resolve"
)

// FailureKind is the terminal classification of a failed request.
type FailureKind string

const (
	// NoPaperFound means no seed paper matched the query or any fallback.
	NoPaperFound FailureKind = "no_paper_found"

	// UpstreamUnavailable means the paper API kept failing after retries.
	UpstreamUnavailable FailureKind = "upstream_unavailable"

	// DecompositionFailed means the query could not be decomposed, so
	// neither resolution fallback nor rating could run.
	DecompositionFailed FailureKind = "decomposition_failed"
)

// RequestError is the single terminal error a caller receives. Partial
// graphs are never returned alongside it.
type RequestError struct {
	Kind FailureKind
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// classify wraps err in a RequestError with the matching kind. Anything
// that is not a resolution or decomposition failure is, by construction,
// a fetch failure that survived the retry policy.
func classify(err error) *RequestError {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}

	kind := UpstreamUnavailable
	var decErr *llm.DecompositionError
	switch {
	case errors.Is(err, resolve.ErrNoPaperFound):
		kind = NoPaperFound
	case errors.As(err, &decErr):
		kind = DecompositionFailed
	}
	return &RequestError{Kind: kind, Err: err}
}
