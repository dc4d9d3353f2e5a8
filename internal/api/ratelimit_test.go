package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterRefillsPerClient(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10)
	rl.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		assert.True(t, rl.allow("203.0.113.7"), "request %d", i)
	}
	assert.False(t, rl.allow("203.0.113.7"))
	assert.True(t, rl.allow("198.51.100.1"), "other clients have their own bucket")

	now = now.Add(6 * time.Second)
	assert.True(t, rl.allow("203.0.113.7"), "one token refills every six seconds")
	assert.False(t, rl.allow("203.0.113.7"))
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	now = now.Add(visitorTTL + time.Second)
	rl.allow("b")
	_, tracked := rl.visitors["a"]
	assert.False(t, tracked)
}
