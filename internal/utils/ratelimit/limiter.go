// Package ratelimit provides rate limiting functionality for protecting API endpoints.
// It implements the token bucket algorithm with configurable rates and capacities.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Limiter represents a rate limiter for a specific client identity.
// Tokens are added at a fixed rate and every request consumes one.
type Limiter struct {
	tokens float64

	// lastTime is the last time tokens were added to the bucket
	lastTime time.Time

	// rate is the token refill rate (tokens per second)
	rate float64

	capacity float64

	now func() time.Time

	mu sync.Mutex
}

// Rate controls how many requests per second are allowed
type Rate struct {
	// RequestsPerSecond defines how many tokens are added per second
	RequestsPerSecond float64

	// Burst defines the maximum size of the token bucket
	Burst int
}

// NewLimiter creates a new rate limiter with the specified rate and burst capacity.
//
// Parameters:
//   - rate: The number of tokens per second to add to the bucket
//   - burst: The maximum capacity of the bucket
//
// Returns:
//   - A configured rate limiter with a full bucket
func NewLimiter(rate float64, burst int) *Limiter {
	return newLimiterAt(rate, burst, time.Now)
}

func newLimiterAt(rate float64, burst int, now func() time.Time) *Limiter {
	return &Limiter{
		tokens:   float64(burst),
		lastTime: now(),
		rate:     rate,
		capacity: float64(burst),
		now:      now,
	}
}

// Allow reports whether a request may proceed and consumes a token if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens < 1 {
		return false
	}

	l.tokens--
	return true
}

// RetryAfter returns how long until the next token is available.
// It is zero when a request would be allowed now.
func (l *Limiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens >= 1 || l.rate <= 0 {
		return 0
	}

	missing := 1 - l.tokens
	return time.Duration(math.Ceil(missing/l.rate*1000)) * time.Millisecond
}

// LastSeen returns the last time the bucket was touched
func (l *Limiter) LastSeen() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastTime
}

// ResetTokens refills the bucket to capacity.
func (l *Limiter) ResetTokens() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = l.capacity
	l.lastTime = l.now()
}

// refill adds the tokens earned since lastTime. Callers hold mu.
func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
}
