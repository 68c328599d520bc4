package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesBurstThenWaits(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(Limit{PerMinute: 60}, map[string]Limit{
		ActionRedeem: {PerMinute: 6, Burst: 2},
	})
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("p1", ActionRedeem)
	assert.True(t, ok)
	ok, _ = rl.Allow("p1", ActionRedeem)
	assert.True(t, ok)

	ok, wait := rl.Allow("p1", ActionRedeem)
	assert.False(t, ok)
	assert.InDelta(t, (10 * time.Second).Seconds(), wait.Seconds(), 0.01)

	// Other profiles and actions have their own buckets.
	ok, _ = rl.Allow("p2", ActionRedeem)
	assert.True(t, ok)
	ok, _ = rl.Allow("p1", ActionQuestClaim)
	assert.True(t, ok)

	now = now.Add(10 * time.Second)
	ok, _ = rl.Allow("p1", ActionRedeem)
	assert.True(t, ok)
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(Limit{PerMinute: 10}, nil)
	rl.now = func() time.Time { return now }

	rl.Allow("p1", ActionRedeem)
	now = now.Add(30 * time.Minute)
	rl.Allow("p2", ActionRedeem)
	now = now.Add(45 * time.Minute)

	assert.Equal(t, 1, rl.Cleanup(time.Hour))
	assert.Len(t, rl.buckets, 1)
}
