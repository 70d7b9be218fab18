package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces calls evenly to stay under a per-minute API quota.
// Each Wait reserves the next free slot; the first slot is immediate.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewRateLimiter allows perMinute calls per minute. A non-positive perMinute
// disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{}
	if perMinute > 0 {
		rl.interval = time.Minute / time.Duration(perMinute)
	}
	return rl
}

// Wait blocks until the caller's slot arrives or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.interval == 0 {
		return ctx.Err()
	}

	rl.mu.Lock()
	slot := time.Now()
	if rl.next.After(slot) {
		slot = rl.next
	}
	rl.next = slot.Add(rl.interval)
	rl.mu.Unlock()

	d := time.Until(slot)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
