package memory

import (
	"testing"

	"github.com/blueprint-hub/hub-server/ratelimit/tests"
)

func TestRateLimit_MemoryLimiter(t *testing.T) {
	limiter := NewLimiter()
	defer limiter.Close()

	tests.RunLimiterTests(t, limiter, limiter.reset, nil)
}
