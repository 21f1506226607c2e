package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DomainRateLimiter enforces a minimum delay between requests to the same
// domain. One instance is shared process-wide and injected into whichever
// component performs fetches; concurrent callers serialize through it.
type DomainRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: domain
	minDelay time.Duration
}

// NewDomainRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same domain.
func NewDomainRateLimiter(minDelay time.Duration) *DomainRateLimiter {
	return &DomainRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the given
// domain. Returns an error if the context is cancelled while waiting.
func (r *DomainRateLimiter) Wait(ctx context.Context, domain string) error {
	r.mu.Lock()
	last, ok := r.lastCall[domain]
	now := time.Now()

	if !ok {
		// First request for this domain — no wait needed.
		r.lastCall[domain] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		r.lastCall[domain] = now
		r.mu.Unlock()
		return nil
	}

	remaining := r.minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", domain, ctx.Err())
	case <-time.After(remaining):
	}

	// Record the actual time after waiting.
	r.mu.Lock()
	r.lastCall[domain] = time.Now()
	r.mu.Unlock()

	return nil
}
