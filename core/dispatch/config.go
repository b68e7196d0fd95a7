package dispatch

import (
	"fmt"
	"time"

	"github.com/chargenet/roaming/core/auth"
)

// Config defines settings for the dispatch engine.
type Config struct {
	// MaxReservationMinutes caps the duration of any reservation. Requests
	// asking for more are clamped; zero-duration requests receive the cap.
	MaxReservationMinutes int `json:"max_reservation_minutes"`
	// AuthRaceTimeoutSeconds bounds the wall time of the authorize fallback
	// race across roaming providers.
	AuthRaceTimeoutSeconds int `json:"auth_race_timeout_seconds"`
	// Auth configures the token cache and rate limiter.
	Auth auth.Config `json:"auth"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxReservationMinutes == 0 {
		c.MaxReservationMinutes = 15
	}
	if c.AuthRaceTimeoutSeconds == 0 {
		c.AuthRaceTimeoutSeconds = 5
	}
	c.Auth.SetDefaults()
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MaxReservationMinutes < 0 {
		return fmt.Errorf("max_reservation_minutes must not be negative")
	}
	if c.AuthRaceTimeoutSeconds < 0 {
		return fmt.Errorf("auth_race_timeout_seconds must not be negative")
	}
	return c.Auth.Validate()
}

// MaxReservationDuration returns the reservation cap as a duration.
func (c Config) MaxReservationDuration() time.Duration {
	return time.Duration(c.MaxReservationMinutes) * time.Minute
}

// AuthRaceTimeout returns the race bound as a duration.
func (c Config) AuthRaceTimeout() time.Duration {
	return time.Duration(c.AuthRaceTimeoutSeconds) * time.Second
}
