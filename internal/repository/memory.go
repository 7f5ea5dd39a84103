package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepInterval bounds how often idle buckets are dropped.
const sweepInterval = time.Minute

// MemoryRateLimiter keeps a token bucket per user inside the process.
// A bucket refills limit tokens per window and holds at most limit tokens.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	limiters  map[int64]*userLimiter
	lastSweep time.Time
	now       func() time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	limit    int
	window   time.Duration
	lastSeen time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limiters: make(map[int64]*userLimiter),
		now:      time.Now,
	}
}

func (r *MemoryRateLimiter) CheckRateLimit(_ context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}

	now := r.now()

	r.mu.Lock()
	r.sweep(now)
	entry, ok := r.limiters[userID]
	// настройки поменялись, начинаем с полного ведра
	if !ok || entry.limit != limit || entry.window != window {
		entry = &userLimiter{
			limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
			limit:   limit,
			window:  window,
		}
		r.limiters[userID] = entry
	}
	entry.lastSeen = now
	r.mu.Unlock()

	return entry.limiter.AllowN(now, 1), nil
}

// sweep drops buckets untouched for a whole window. Such a bucket is full again,
// so recreating it later changes nothing. Caller holds r.mu.
func (r *MemoryRateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now
	for id, entry := range r.limiters {
		if now.Sub(entry.lastSeen) >= entry.window {
			delete(r.limiters, id)
		}
	}
}
