// Package auth gates the authorize path before any backend is contacted: a
// sentinel-token blacklist, a token-result cache with expiry and overflow
// eviction, and a sliding-window admission counter per charging location.
package auth

import (
	"sort"
	"sync"
	"time"

	"github.com/chargenet/roaming/core/model"
)

// Zero-filled UIDs of these lengths are emitted by readers that failed to
// read a tag and must never reach a backend.
var blacklistedTokenLengths = map[int]bool{8: true, 14: true}

// Blacklisted reports whether the token is a known-invalid sentinel value.
func Blacklisted(token model.AuthToken) bool {
	return token.IsZero() && blacklistedTokenLengths[len(token)]
}

type cacheEntry struct {
	result    model.AuthResult
	expiresAt time.Time
}

// TokenCache caches positive authorization results per token. Expired
// entries are logically absent and removed lazily on lookup; when the cache
// grows past the configured ceiling the oldest-expiring quarter of entries
// is evicted.
type TokenCache struct {
	cfg     Config
	mu      sync.Mutex
	entries map[model.AuthToken]cacheEntry
	now     func() time.Time
}

// NewTokenCache creates a TokenCache for the given configuration.
func NewTokenCache(cfg Config) *TokenCache {
	return &TokenCache{
		cfg:     cfg,
		entries: make(map[model.AuthToken]cacheEntry),
		now:     time.Now,
	}
}

// Lookup returns a synthesized fresh result for the token when a non-expired
// entry exists. The returned result keeps the original decision and resolving
// provider but carries a fresh timestamp.
func (c *TokenCache) Lookup(token model.AuthToken) (model.AuthResult, bool) {
	if !c.cfg.CacheEnabled {
		return model.AuthResult{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[token]
	if !ok {
		return model.AuthResult{}, false
	}
	now := c.now()
	if !now.Before(e.expiresAt) {
		delete(c.entries, token)
		return model.AuthResult{}, false
	}
	res := e.result
	res.CachedAt = now
	return res, true
}

// Store records a backend result for later lookups. Results are only written
// when caching is enabled, the token is not on the do-not-cache list, and no
// entry already exists for it.
func (c *TokenCache) Store(token model.AuthToken, res model.AuthResult) {
	if !c.cfg.CacheEnabled || c.cfg.noCache(token) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[token]; ok {
		return
	}
	c.entries[token] = cacheEntry{result: res, expiresAt: c.now().Add(c.cfg.CacheTTL())}
	if len(c.entries) > c.cfg.CacheMaxEntries {
		c.evictOldest()
	}
}

// Len returns the number of physically present entries.
func (c *TokenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest drops the 25% of entries expiring soonest. This bounds growth
// under token enumeration; it is not a precise LRU. Caller holds the lock.
func (c *TokenCache) evictOldest() {
	type expiring struct {
		token model.AuthToken
		at    time.Time
	}
	all := make([]expiring, 0, len(c.entries))
	for t, e := range c.entries {
		all = append(all, expiring{token: t, at: e.expiresAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	n := len(all) / 4
	if n < 1 {
		n = 1
	}
	for _, e := range all[:n] {
		delete(c.entries, e.token)
	}
}
