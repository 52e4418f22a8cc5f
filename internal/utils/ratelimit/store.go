package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCategory is used when a category has no rate of its own
const DefaultCategory = "default"

// Store manages rate limiters for multiple clients.
// Buckets are keyed by category and client, so one client has an
// independent budget per category.
type Store struct {
	limiters map[string]*Limiter

	rates map[string]Rate

	mu sync.RWMutex

	// idleTTL is how long a bucket may sit unused before cleanup evicts it
	idleTTL time.Duration

	now func() time.Time
}

// NewStore creates a new store for managing rate limiters.
//
// Parameters:
//   - defaultRate: The rate for categories without their own
//   - idleTTL: How long an unused bucket is kept
//
// Returns:
//   - A configured limiter store. Call StartCleanup to evict idle buckets.
func NewStore(defaultRate Rate, idleTTL time.Duration) *Store {
	return &Store{
		limiters: make(map[string]*Limiter),
		rates:    map[string]Rate{DefaultCategory: defaultRate},
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// GetLimiter returns the rate limiter for a client in a category,
// creating it on first use.
//
// Parameters:
//   - clientID: The unique identifier for the client (e.g., IP address)
//   - category: The category of the limit (e.g., "login")
//
// Returns:
//   - A rate limiter for the client
func (s *Store) GetLimiter(clientID string, category string) *Limiter {
	key := category + "|" + clientID

	s.mu.RLock()
	limiter, exists := s.limiters[key]
	s.mu.RUnlock()
	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have created it while we waited for the lock
	if limiter, exists = s.limiters[key]; exists {
		return limiter
	}

	rate, ok := s.rates[category]
	if !ok {
		rate = s.rates[DefaultCategory]
	}

	limiter = newLimiterAt(rate.RequestsPerSecond, rate.Burst, s.now)
	s.limiters[key] = limiter
	return limiter
}

// SetRate sets a rate limit for a specific category.
// Buckets that already exist keep the rate they were created with.
func (s *Store) SetRate(category string, rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[category] = rate
}

// Len returns the number of live buckets
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

// StartCleanup evicts idle buckets every interval until ctx is done.
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.Cleanup(); removed > 0 {
					log.Debug().Int("removed", removed).Msg("Evicted idle rate limiters")
				}
			}
		}
	}()
}

// Cleanup removes buckets unused for longer than the idle TTL and
// returns how many were removed.
func (s *Store) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, limiter := range s.limiters {
		if limiter.LastSeen().Before(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}
