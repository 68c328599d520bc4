package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Actions with their own budgets.
const (
	ActionRedeem     = "redeem"
	ActionQuestClaim = "quest_claim"
)

// Limit is a token bucket shape: Burst actions at once, refilled at
// PerMinute tokens per minute.
type Limit struct {
	PerMinute int
	Burst     int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages one token bucket per (profile, action)
type RateLimiter struct {
	limits       map[string]Limit
	defaultLimit Limit
	buckets      map[string]*bucket
	mutex        sync.Mutex
	now          func() time.Time
}

// NewRateLimiter creates a limiter. Actions missing from limits get
// defaultLimit.
func NewRateLimiter(defaultLimit Limit, limits map[string]Limit) *RateLimiter {
	if limits == nil {
		limits = make(map[string]Limit)
	}
	return &RateLimiter{
		limits:       limits,
		defaultLimit: defaultLimit,
		buckets:      make(map[string]*bucket),
		now:          time.Now,
	}
}

func (l Limit) limiter() *rate.Limiter {
	perMinute := l.PerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	burst := l.Burst
	if burst < 1 {
		burst = perMinute
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
}

// Allow consumes a token for the profile's action. When none is available
// it reports how long until one is.
func (rl *RateLimiter) Allow(profileID, action string) (bool, time.Duration) {
	key := profileID + ":" + action
	now := rl.now()

	rl.mutex.Lock()
	b, exists := rl.buckets[key]
	if !exists {
		limit, ok := rl.limits[action]
		if !ok {
			limit = rl.defaultLimit
		}
		b = &bucket{limiter: limit.limiter()}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mutex.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup removes buckets idle for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine prunes idle buckets until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			}
		}
	}()
}
