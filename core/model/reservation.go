package model

import "time"

// Reservation is an immutable snapshot of a charging reservation. Dispatchers
// never mutate a stored reservation in place; they write a new snapshot into
// the reservation directory.
type Reservation struct {
	ID       ReservationID
	Location ChargingLocation
	StartsAt time.Time
	Duration time.Duration

	// LinkedReservationID points at a prior reservation this one extends.
	LinkedReservationID ReservationID

	// Resolution metadata: exactly one of these names the backend that
	// created the reservation.
	ResolvedOperatorID        OperatorID
	ResolvedRoamingProviderID RoamingProviderID

	ProviderID ProviderID
	Auth       LocalAuthentication
	CreatedAt  time.Time
	CanceledAt time.Time
}

// Expired reports whether the reservation window has elapsed at now.
func (r Reservation) Expired(now time.Time) bool {
	return now.After(r.StartsAt.Add(r.Duration))
}

// Canceled reports whether the reservation has been canceled.
func (r Reservation) Canceled() bool { return !r.CanceledAt.IsZero() }

// WithCancellation returns a copy marked canceled at the given time.
func (r Reservation) WithCancellation(at time.Time) Reservation {
	r.CanceledAt = at
	return r
}
