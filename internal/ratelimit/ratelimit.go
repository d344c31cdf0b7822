package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter paces calls to the remote vision service. Wait blocks until
// the next call may proceed or the context is done.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket is a limiter refilled at a fixed rate. It replaces the
// blunt fixed sleep between batch calls with an explicit policy: a
// burst of up to capacity calls passes immediately, then calls are
// paced at the refill rate.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a bucket that starts full. Capacity is
// clamped to at least one token and a non-positive refill rate falls
// back to one token per second: a bucket that can never hand out a
// token would make Wait spin forever.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	if refillRate <= 0 {
		refillRate = 1
	}
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait takes one token, sleeping until one is available.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		wait := tb.take()
		if wait <= 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take consumes a token if available, otherwise returns how long to
// wait before trying again.
func (tb *TokenBucket) take() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return 0
	}

	missing := 1 - tb.tokens
	return time.Duration(missing / tb.refillRate * float64(time.Second))
}

// FixedInterval is the simple limiter: every call after the first
// waits out a fixed delay. This mirrors the legacy sleep-between-calls
// pacing for services with a plain requests-per-interval ceiling.
type FixedInterval struct {
	mu       sync.Mutex
	interval time.Duration
	lastCall time.Time
}

func NewFixedInterval(interval time.Duration) *FixedInterval {
	return &FixedInterval{interval: interval}
}

// Wait blocks until the interval since the previous call has passed.
func (f *FixedInterval) Wait(ctx context.Context) error {
	f.mu.Lock()
	now := time.Now()
	var wait time.Duration
	if !f.lastCall.IsZero() {
		wait = f.interval - now.Sub(f.lastCall)
	}
	if wait < 0 {
		wait = 0
	}
	f.lastCall = now.Add(wait)
	f.mu.Unlock()

	if wait == 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// None is a limiter that never waits, for tests and local providers.
type None struct{}

func (None) Wait(context.Context) error { return nil }
