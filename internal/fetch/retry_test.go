// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy returns a policy with a tiny delay so tests finish quickly.
func fastPolicy(maxAttempts int) Policy {
	return Policy{MaxAttempts: maxAttempts, Delay: 1 * time.Millisecond}
}

func TestPolicyDo_ImmediateSuccess(t *testing.T) {
	var calls int
	err := fastPolicy(5).Do(context.Background(), OpSearch, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_RetriesThenSucceeds(t *testing.T) {
	var calls int
	err := fastPolicy(10).Do(context.Background(), OpSearch, func(context.Context) error {
		calls++
		if calls < 10 {
			return &Error{Kind: KindRetryable, Op: OpSearch, Err: errors.New("transient")}
		}
		return nil
	})
	require.NoError(t, err)
	// 9 failures then success on the final allowed attempt.
	assert.Equal(t, 10, calls)
}

func TestPolicyDo_Exhausted(t *testing.T) {
	var calls int
	cause := errors.New("still down")
	err := fastPolicy(3).Do(context.Background(), OpCitations, func(context.Context) error {
		calls++
		return &Error{Kind: KindRetryable, Op: OpCitations, Err: cause}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, IsExhausted(err))

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindExhausted, fe.Kind)
	assert.Equal(t, OpCitations, fe.Op)
	assert.Equal(t, 3, fe.Attempts)
	assert.ErrorIs(t, err, cause)
}

func TestPolicyDo_FatalStopsImmediately(t *testing.T) {
	var calls int
	err := fastPolicy(5).Do(context.Background(), OpSearch, func(context.Context) error {
		calls++
		return &Error{Kind: KindFatal, Op: OpSearch, Status: 404, Err: errors.New("HTTP 404")}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsFatal(err))
	assert.False(t, IsExhausted(err))
}

func TestPolicyDo_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := Policy{MaxAttempts: 5, Delay: 500 * time.Millisecond}
	var calls int
	err := p.Do(ctx, OpSearch, func(context.Context) error {
		calls++
		return &Error{Kind: KindRetryable, Op: OpSearch, Err: errors.New("transient")}
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_Defaults(t *testing.T) {
	// A zero policy uses the default classifier, which only retries fetch
	// errors of KindRetryable. A plain error returns without sleeping
	// through the default 1 s delay.
	p := Policy{}
	var calls int
	err := p.Do(context.Background(), OpSearch, func(context.Context) error {
		calls++
		return errors.New("plain error")
	})
	require.Error(t, err)
	// Plain errors are not retryable under the default classifier.
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_CustomIsRetryable(t *testing.T) {
	retryMe := errors.New("retry me")
	p := Policy{
		MaxAttempts: 4,
		Delay:       1 * time.Millisecond,
		IsRetryable: func(err error) bool { return errors.Is(err, retryMe) },
	}

	var calls int
	err := p.Do(context.Background(), OpReferences, func(context.Context) error {
		calls++
		return retryMe
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.True(t, IsExhausted(err))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "retryable", KindRetryable.String())
	assert.Equal(t, "exhausted", KindExhausted.String())
	assert.Equal(t, "fatal", KindFatal.String())
}

func TestErrorMessage(t *testing.T) {
	e := &Error{Kind: KindExhausted, Op: OpSearch, Attempts: 10, Err: errors.New("HTTP 503")}
	assert.Contains(t, e.Error(), "after 10 attempts")

	e = &Error{Kind: KindFatal, Op: OpSearch, Status: 404}
	assert.Contains(t, e.Error(), "HTTP 404")
}
