package auth

import (
	"sync"
	"time"
)

// RateLimiter bounds the number of authorization attempts per charging
// location within a sliding window. Timestamps older than the window are
// pruned lazily on the next call for the same location, not by a background
// timer.
type RateLimiter struct {
	cfg     Config
	mu      sync.Mutex
	history map[string][]time.Time
	now     func() time.Time
}

// NewRateLimiter creates a RateLimiter for the given configuration.
func NewRateLimiter(cfg Config) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Admit reports whether another authorization attempt at the location is
// admitted. Admitted attempts are recorded; rejected ones are not.
func (l *RateLimiter) Admit(location string) bool {
	if !l.cfg.RateLimitEnabled {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.cfg.RateLimitWindow())
	recent := l.history[location]
	pruned := recent[:0]
	for _, ts := range recent {
		if ts.After(cutoff) {
			pruned = append(pruned, ts)
		}
	}
	if len(pruned) >= l.cfg.RateLimitThreshold {
		l.history[location] = pruned
		return false
	}
	l.history[location] = append(pruned, now)
	return true
}
