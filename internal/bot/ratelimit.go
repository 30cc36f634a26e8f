package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedUsers caps the number of per-user limiters kept in memory
const maxTrackedUsers = 4096

// RateLimiter spaces out requests per user with a token bucket each.
// Safe for concurrent use.
type RateLimiter struct {
	mu       sync.Mutex
	every    rate.Limit
	burst    int
	limiters map[int64]*userLimiter
	now      func() time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows burst requests back to back and one more every
// interval after that. A non-positive interval disables limiting.
func NewRateLimiter(interval time.Duration, burst int) *RateLimiter {
	every := rate.Inf
	if interval > 0 {
		every = rate.Every(interval)
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		every:    every,
		burst:    burst,
		limiters: make(map[int64]*userLimiter),
		now:      time.Now,
	}
}

// Allow reports whether userID may start a request now
func (r *RateLimiter) Allow(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	entry, ok := r.limiters[userID]
	if !ok {
		if len(r.limiters) >= maxTrackedUsers {
			r.prune(now)
		}
		entry = &userLimiter{limiter: rate.NewLimiter(r.every, r.burst)}
		r.limiters[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// prune drops limiters that have refilled completely, then evicts arbitrary
// entries while still at the cap
func (r *RateLimiter) prune(now time.Time) {
	for id, e := range r.limiters {
		if e.limiter.TokensAt(now) >= float64(r.burst) {
			delete(r.limiters, id)
		}
	}
	for len(r.limiters) >= maxTrackedUsers {
		var oldestID int64
		var oldest time.Time
		first := true
		for id, e := range r.limiters {
			if first || e.lastSeen.Before(oldest) {
				oldestID, oldest, first = id, e.lastSeen, false
			}
		}
		delete(r.limiters, oldestID)
	}
}

// Tracked returns the number of users with a live limiter
func (r *RateLimiter) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
