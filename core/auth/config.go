package auth

import (
	"fmt"
	"time"

	"github.com/chargenet/roaming/core/model"
)

// Config defines settings for the authorization cache and the per-location
// rate limiter.
type Config struct {
	// CacheEnabled turns the token result cache on.
	CacheEnabled bool `json:"cache_enabled"`
	// CacheTTLSeconds is the lifetime of a cached authorization result.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
	// CacheMaxEntries triggers overflow eviction above this size.
	CacheMaxEntries int `json:"cache_max_entries"`
	// DoNotCache lists tokens whose results are never cached.
	DoNotCache []string `json:"do_not_cache"`

	// RateLimitEnabled turns per-location admission counting on.
	RateLimitEnabled bool `json:"rate_limit_enabled"`
	// RateLimitWindowSeconds is the sliding window length.
	RateLimitWindowSeconds int `json:"rate_limit_window_seconds"`
	// RateLimitThreshold is the number of authorize calls admitted per
	// location within one window.
	RateLimitThreshold int `json:"rate_limit_threshold"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 300
	}
	if c.CacheMaxEntries == 0 {
		c.CacheMaxEntries = 10000
	}
	if c.RateLimitWindowSeconds == 0 {
		c.RateLimitWindowSeconds = 60
	}
	if c.RateLimitThreshold == 0 {
		c.RateLimitThreshold = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache_ttl_seconds must not be negative")
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries must not be negative")
	}
	if c.RateLimitEnabled && c.RateLimitThreshold <= 0 {
		return fmt.Errorf("rate_limit_threshold must be positive")
	}
	return nil
}

// CacheTTL returns the configured TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RateLimitWindow returns the configured window as a duration.
func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

// noCache reports whether the token is on the do-not-cache list.
func (c Config) noCache(token model.AuthToken) bool {
	for _, t := range c.DoNotCache {
		if t == string(token) {
			return true
		}
	}
	return false
}
