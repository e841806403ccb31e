// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindRetryable marks transient failures: network errors, HTTP 5xx,
	// and HTTP 429. The retry policy absorbs these; callers only see one
	// if a custom policy surfaces it.
	KindRetryable Kind = iota

	// KindExhausted marks a retryable failure that persisted through
	// every attempt.
	KindExhausted

	// KindFatal marks failures that retrying cannot fix: HTTP 4xx other
	// than 429, and malformed response bodies.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindRetryable:
		return "retryable"
	case KindExhausted:
		return "exhausted"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a classified fetch failure.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Op is the operation that failed: "search", "citations", or "references".
	Op string

	// Status is the HTTP status code, or 0 for transport-level failures.
	Status int

	// Attempts is the number of attempts made. Set on exhausted errors.
	Attempts int

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindExhausted:
		return fmt.Sprintf("%s: %s after %d attempts: %v", e.Op, e.Kind, e.Attempts, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s: HTTP %d", e.Op, e.Kind, e.Status)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a fetch Error with KindRetryable.
func IsRetryable(err error) bool { return hasKind(err, KindRetryable) }

// IsExhausted reports whether err is a fetch Error with KindExhausted.
func IsExhausted(err error) bool { return hasKind(err, KindExhausted) }

// IsFatal reports whether err is a fetch Error with KindFatal.
func IsFatal(err error) bool { return hasKind(err, KindFatal) }

func hasKind(err error, k Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == k
}
