package util

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter to provide a simpler interface.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a new token bucket limiter.
// r: tokens per second.
// b: burst size.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Allow reports whether an event with weight n may happen at time now.
func (l *Limiter) Allow(n int) bool {
	return l.inner.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	return l.inner.WaitN(ctx, n)
}

// LimiterRegistry hands out one limiter per key, so each upstream host gets
// its own token bucket.
type LimiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*Limiter
	rate     float64
	burst    int
}

// NewLimiterRegistry creates a registry whose limiters all share the same
// rate and burst.
func NewLimiterRegistry(r float64, b int) *LimiterRegistry {
	return &LimiterRegistry{
		limiters: make(map[string]*Limiter),
		rate:     r,
		burst:    b,
	}
}

// Get returns the limiter for the given key (e.g. a registry host), creating
// it on first use.
func (r *LimiterRegistry) Get(key string) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[key]
	if !ok {
		l = NewLimiter(r.rate, r.burst)
		r.limiters[key] = l
	}
	return l
}
