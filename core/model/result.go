package model

import "time"

// ResultKind classifies the outcome of a dispatch operation. Callers always
// receive a structured result carrying one of these kinds, never a bare
// error.
type ResultKind int

const (
	KindSuccess ResultKind = iota
	KindAuthorized
	KindNotAuthorized
	KindBlocked
	KindInvalidToken
	KindRateLimitReached
	KindUnknownLocation
	KindUnknownOperator
	KindInvalidSessionID
	KindAlreadyStopped
	KindAlreadyExists
	KindArgumentError
	KindLockTimeout
	KindAdminDown
	KindNoOperation
	KindTimeout
	KindError
)

// String returns a human-readable representation of the kind.
func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindAuthorized:
		return "authorized"
	case KindNotAuthorized:
		return "not_authorized"
	case KindBlocked:
		return "blocked"
	case KindInvalidToken:
		return "invalid_token"
	case KindRateLimitReached:
		return "rate_limit_reached"
	case KindUnknownLocation:
		return "unknown_location"
	case KindUnknownOperator:
		return "unknown_operator"
	case KindInvalidSessionID:
		return "invalid_session_id"
	case KindAlreadyStopped:
		return "already_stopped"
	case KindAlreadyExists:
		return "already_exists"
	case KindArgumentError:
		return "argument_error"
	case KindLockTimeout:
		return "lock_timeout"
	case KindAdminDown:
		return "admin_down"
	case KindNoOperation:
		return "no_operation"
	case KindTimeout:
		return "timeout"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Decisive reports whether the kind settles a dispatch request. Unknown
// location/operator answers keep the fallback chain going; every other kind
// stops it.
func (k ResultKind) Decisive() bool {
	return k != KindUnknownLocation && k != KindUnknownOperator && k != KindError
}

// ReservationResult is the outcome of a Reserve call.
type ReservationResult struct {
	Kind        ResultKind
	Reservation *Reservation
	Description string
	Runtime     time.Duration
}

// CancelReservationResult is the outcome of a CancelReservation call.
type CancelReservationResult struct {
	Kind          ResultKind
	ReservationID ReservationID
	Description   string
	Runtime       time.Duration
}

// RemoteStartResult is the outcome of a RemoteStart call.
type RemoteStartResult struct {
	Kind        ResultKind
	Session     *Session
	Description string
	Runtime     time.Duration
}

// RemoteStopResult is the outcome of a RemoteStop call. Backends may return a
// synthesized charge detail record together with the stop confirmation.
type RemoteStopResult struct {
	Kind        ResultKind
	SessionID   SessionID
	CDR         *ChargeDetailRecord
	Description string
	Runtime     time.Duration
}
