package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by every call a client makes.
type RateLimiter struct {
	mu             sync.Mutex
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
	now            func() time.Time
}

// NewRateLimiter allows a burst of maxTokens and adds one token per refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillInterval <= 0 {
		refillInterval = time.Millisecond
	}
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
		now:            time.Now,
	}
}

// PerSecond allows perSecond calls each second with an equal burst.
func PerSecond(perSecond int) *RateLimiter {
	if perSecond < 1 {
		perSecond = 1
	}
	return NewRateLimiter(perSecond, time.Second/time.Duration(perSecond))
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.TryAcquire() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.refillInterval):
		}
	}
}

// TryAcquire takes a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	if r.tokens == 0 {
		return false
	}
	r.tokens--
	return true
}

// Available reports the tokens left after refilling.
func (r *RateLimiter) Available() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

func (r *RateLimiter) refill() {
	elapsed := r.now().Sub(r.lastRefill)
	added := int(elapsed / r.refillInterval)
	if added <= 0 {
		return
	}
	r.tokens += added
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
	r.lastRefill = r.lastRefill.Add(time.Duration(added) * r.refillInterval)
}
