// Package directory defines the lookup contracts the dispatch algorithms
// depend on: the provider index and the reservation and session directories.
// In-memory reference implementations live alongside the interfaces; any
// replacement must keep the same lookup semantics.
package directory

import (
	"errors"
	"time"

	"github.com/chargenet/roaming/core/model"
)

// ErrLockTimeout is returned when a directory mutation could not acquire its
// lock in time.
var ErrLockTimeout = errors.New("directory: lock timeout")

// ErrNotFound is returned when no entity exists for the given identifier.
var ErrNotFound = errors.New("directory: not found")

// ReservationDirectory persists reservation snapshots and the resolution
// metadata recorded by the dispatchers.
type ReservationDirectory interface {
	// Put stores a new snapshot of the reservation.
	Put(r model.Reservation) error
	// GetLatest returns the most recent snapshot for the id.
	GetLatest(id model.ReservationID) (model.Reservation, bool)
	// GetAll returns every stored snapshot for the id, oldest first.
	GetAll(id model.ReservationID) []model.Reservation
}

// SessionDirectory records session lifecycle transitions and provider
// lineage. Sessions are immutable snapshots; every mutator stores a new
// snapshot.
type SessionDirectory interface {
	Get(id model.SessionID) (model.Session, bool)
	Exists(id model.SessionID) bool

	// AuthStart records a session entering the authorized state.
	AuthStart(s model.Session) error
	// AuthStop records the stop authorization lineage for the session.
	AuthStop(id model.SessionID, auth model.LocalAuthentication, provider model.ProviderID, roaming model.RoamingProviderID) error
	// RemoteStart stores a freshly started session.
	RemoteStart(s model.Session) error
	// RemoteStop marks the session stopped and records the stop lineage.
	RemoteStop(id model.SessionID, auth model.LocalAuthentication, provider model.ProviderID, roaming model.RoamingProviderID, stoppedAt time.Time) error
	// CDRPending marks a stopped session as awaiting its charge detail
	// record.
	CDRPending(id model.SessionID) error
	// CDRReceived attaches the charge detail record to the session and
	// advances it to the CDR-resolved state.
	CDRReceived(id model.SessionID, cdr model.ChargeDetailRecord) error
}
