package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/ratelimit"
)

var TestRule = ratelimit.Rule{Name: "test", Limit: 2, Window: time.Minute}

// RunLimiterTests runs the shared limiter suite. fastForward advances the
// backend's clock; when nil, window expiry is tested against wall time.
func RunLimiterTests(t *testing.T, l ratelimit.Limiter, teardown func(), fastForward func(time.Duration)) {
	for _, tf := range []func(t *testing.T, l ratelimit.Limiter){
		testAllowWithinLimit,
		testSubjectsAreIndependent,
		testRulesAreIndependent,
		testCheck,
	} {
		tf(t, l)
		teardown()
	}

	testWindowExpiry(t, l, fastForward)
	teardown()
}

func testAllowWithinLimit(t *testing.T, l ratelimit.Limiter) {
	ctx := context.Background()

	for i := 0; i < TestRule.Limit; i++ {
		allowed, err := l.Allow(ctx, TestRule, "user:a")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := l.Allow(ctx, TestRule, "user:a")
	require.NoError(t, err)
	require.False(t, allowed)
}

func testSubjectsAreIndependent(t *testing.T, l ratelimit.Limiter) {
	ctx := context.Background()

	for i := 0; i < TestRule.Limit; i++ {
		_, err := l.Allow(ctx, TestRule, "user:a")
		require.NoError(t, err)
	}

	allowed, err := l.Allow(ctx, TestRule, "user:b")
	require.NoError(t, err)
	require.True(t, allowed)
}

func testRulesAreIndependent(t *testing.T, l ratelimit.Limiter) {
	ctx := context.Background()

	allowed, err := l.Allow(ctx, ratelimit.CommentRule, "ip:10.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = l.Allow(ctx, ratelimit.CommentRule, "ip:10.0.0.1")
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = l.Allow(ctx, ratelimit.RegistrationRule, "ip:10.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)
}

func testCheck(t *testing.T, l ratelimit.Limiter) {
	ctx := context.Background()

	require.NoError(t, ratelimit.Check(ctx, l, ratelimit.CommentRule, "user:c"))
	require.ErrorIs(t, ratelimit.Check(ctx, l, ratelimit.CommentRule, "user:c"), ratelimit.ErrRateLimited)
}

func testWindowExpiry(t *testing.T, l ratelimit.Limiter, fastForward func(time.Duration)) {
	ctx := context.Background()

	rule := ratelimit.Rule{Name: "expiry", Limit: 1, Window: time.Minute}
	if fastForward == nil {
		rule.Window = 1100 * time.Millisecond
	}

	allowed, err := l.Allow(ctx, rule, "user:d")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = l.Allow(ctx, rule, "user:d")
	require.NoError(t, err)
	require.False(t, allowed)

	if fastForward != nil {
		fastForward(rule.Window + time.Second)
	} else {
		time.Sleep(rule.Window + 200*time.Millisecond)
	}

	allowed, err = l.Allow(ctx, rule, "user:d")
	require.NoError(t, err)
	require.True(t, allowed)
}
