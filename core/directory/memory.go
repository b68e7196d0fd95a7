package directory

import (
	"time"

	"github.com/chargenet/roaming/core/model"
	"github.com/chargenet/roaming/internal/timedlock"
)

// MemoryReservations is the in-memory ReservationDirectory. Snapshots are
// appended per reservation id; GetLatest returns the newest one.
type MemoryReservations struct {
	lock *timedlock.Lock
	byID map[model.ReservationID][]model.Reservation
}

// NewMemoryReservations creates an empty reservation directory.
func NewMemoryReservations() *MemoryReservations {
	return &MemoryReservations{
		lock: timedlock.New(),
		byID: make(map[model.ReservationID][]model.Reservation),
	}
}

func (m *MemoryReservations) Put(r model.Reservation) error {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer m.lock.Release()
	m.byID[r.ID] = append(m.byID[r.ID], r)
	return nil
}

func (m *MemoryReservations) GetLatest(id model.ReservationID) (model.Reservation, bool) {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return model.Reservation{}, false
	}
	defer m.lock.Release()
	snaps := m.byID[id]
	if len(snaps) == 0 {
		return model.Reservation{}, false
	}
	return snaps[len(snaps)-1], true
}

func (m *MemoryReservations) GetAll(id model.ReservationID) []model.Reservation {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return nil
	}
	defer m.lock.Release()
	snaps := m.byID[id]
	out := make([]model.Reservation, len(snaps))
	copy(out, snaps)
	return out
}

// MemorySessions is the in-memory SessionDirectory.
type MemorySessions struct {
	lock *timedlock.Lock
	byID map[model.SessionID]model.Session
}

// NewMemorySessions creates an empty session directory.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{
		lock: timedlock.New(),
		byID: make(map[model.SessionID]model.Session),
	}
}

func (m *MemorySessions) Get(id model.SessionID) (model.Session, bool) {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return model.Session{}, false
	}
	defer m.lock.Release()
	s, ok := m.byID[id]
	return s, ok
}

func (m *MemorySessions) Exists(id model.SessionID) bool {
	_, ok := m.Get(id)
	return ok
}

func (m *MemorySessions) AuthStart(s model.Session) error {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer m.lock.Release()
	s.State = model.StateAuthorized
	m.byID[s.ID] = s
	return nil
}

func (m *MemorySessions) AuthStop(id model.SessionID, auth model.LocalAuthentication, provider model.ProviderID, roaming model.RoamingProviderID) error {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer m.lock.Release()
	s, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.StopAuth = auth
	s.ProviderStop = provider
	s.CSORoamingProviderStop = roaming
	m.byID[id] = s
	return nil
}

func (m *MemorySessions) RemoteStart(s model.Session) error {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer m.lock.Release()
	s.State = model.StateSessionStarted
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	m.byID[s.ID] = s
	return nil
}

func (m *MemorySessions) RemoteStop(id model.SessionID, auth model.LocalAuthentication, provider model.ProviderID, roaming model.RoamingProviderID, stoppedAt time.Time) error {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer m.lock.Release()
	s, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.State = model.StateSessionStopped
	s.StopAuth = auth
	s.ProviderStop = provider
	s.CSORoamingProviderStop = roaming
	s.StoppedAt = stoppedAt
	m.byID[id] = s
	return nil
}

func (m *MemorySessions) CDRPending(id model.SessionID) error {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer m.lock.Release()
	s, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	if s.State.Terminal() {
		return nil
	}
	s.State = model.StateCDRPending
	m.byID[id] = s
	return nil
}

func (m *MemorySessions) CDRReceived(id model.SessionID, cdr model.ChargeDetailRecord) error {
	if err := m.lock.Acquire(DefaultLockTimeout); err != nil {
		return ErrLockTimeout
	}
	defer m.lock.Release()
	s, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.CDR = &cdr
	s.State = model.StateCDRResolved
	m.byID[id] = s
	return nil
}
