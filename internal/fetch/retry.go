// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch wraps the paper database API with bounded retry and
// failure classification. The client is stateless and safe to share
// across concurrent traversal branches.
package fetch

import (
	"context"
	"time"
)

const (
	defaultMaxAttempts = 10
	defaultRetryDelay  = 1 * time.Second
)

// Policy controls retry behavior for fetch operations. A single policy is
// shared by every call site, so the backoff behavior is one testable unit.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values <= 0 mean the default (10).
	MaxAttempts int

	// Delay is the fixed wait between attempts. Values <= 0 mean the
	// default (1 s).
	Delay time.Duration

	// IsRetryable decides whether a failed attempt should be retried.
	// Nil means IsRetryable from this package (retry on KindRetryable).
	IsRetryable func(error) bool
}

// DefaultPolicy returns the standard policy: 10 attempts, 1 s apart,
// retrying only transient failures.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: defaultMaxAttempts, Delay: defaultRetryDelay}
}

// Do runs attempt up to MaxAttempts times, waiting Delay between tries.
//
// A nil error or a non-retryable error returns immediately without
// consuming remaining attempts. If every attempt fails with a retryable
// error, Do returns an Error with KindExhausted wrapping the last failure.
// If the context is cancelled during a wait, Do returns ctx.Err().
func (p Policy) Do(ctx context.Context, op string, attempt func(context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	delay := p.Delay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	isRetryable := p.IsRetryable
	if isRetryable == nil {
		isRetryable = IsRetryable
	}

	var err error
	for n := 1; n <= maxAttempts; n++ {
		err = attempt(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if n == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return &Error{Kind: KindExhausted, Op: op, Attempts: maxAttempts, Err: err}
}
