package model

import "time"

// SessionState tracks a session through its lifecycle.
type SessionState int

const (
	StateAuthorizing SessionState = iota
	StateAuthorized
	StateSessionStarted
	StateSessionStopped
	StateCDRPending
	StateCDRResolved
	StateBlocked
	StateRateLimited
	StateInvalidToken
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case StateAuthorizing:
		return "authorizing"
	case StateAuthorized:
		return "authorized"
	case StateSessionStarted:
		return "session_started"
	case StateSessionStopped:
		return "session_stopped"
	case StateCDRPending:
		return "cdr_pending"
	case StateCDRResolved:
		return "cdr_resolved"
	case StateBlocked:
		return "blocked"
	case StateRateLimited:
		return "rate_limited"
	case StateInvalidToken:
		return "invalid_token"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can leave the state.
func (s SessionState) Terminal() bool {
	switch s {
	case StateCDRResolved, StateBlocked, StateRateLimited, StateInvalidToken:
		return true
	}
	return false
}

// Session is an immutable snapshot of a charging session. The provider
// lineage fields record which backend authorized the start and, separately,
// which stopped it; lifecycle calls for a bound session prefer the recorded
// start backend before any fallback.
type Session struct {
	ID       SessionID
	State    SessionState
	Location ChargingLocation

	StartAuth LocalAuthentication
	StopAuth  LocalAuthentication

	// Start lineage.
	ProviderStart           ProviderID
	OperatorStart           OperatorID
	CSORoamingProviderStart RoamingProviderID

	// Stop lineage.
	ProviderStop           ProviderID
	CSORoamingProviderStop RoamingProviderID

	ReservationID ReservationID
	StartedAt     time.Time
	StoppedAt     time.Time
	CDR           *ChargeDetailRecord
}

// Stopped reports whether the session has been stopped.
func (s Session) Stopped() bool { return !s.StoppedAt.IsZero() }

// StartBackendKnown reports whether any start lineage was recorded.
func (s Session) StartBackendKnown() bool {
	return s.OperatorStart != "" || s.CSORoamingProviderStart != ""
}
