package model

import "github.com/google/uuid"

// OperatorID identifies a charging-station operator.
type OperatorID string

// ProviderID identifies an e-mobility provider.
type ProviderID string

// RoamingProviderID identifies a roaming network backend.
type RoamingProviderID string

// EVSEID identifies a single charge point.
type EVSEID string

// StationID identifies a charging station grouping one or more EVSEs.
type StationID string

// PoolID identifies a charging pool grouping one or more stations.
type PoolID string

// SessionID identifies a charging session.
type SessionID string

// ReservationID identifies a charging reservation.
type ReservationID string

// CDRID identifies a charge detail record.
type CDRID string

func (id OperatorID) String() string        { return string(id) }
func (id ProviderID) String() string        { return string(id) }
func (id RoamingProviderID) String() string { return string(id) }
func (id EVSEID) String() string            { return string(id) }
func (id StationID) String() string         { return string(id) }
func (id PoolID) String() string            { return string(id) }
func (id SessionID) String() string         { return string(id) }
func (id ReservationID) String() string     { return string(id) }
func (id CDRID) String() string             { return string(id) }

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID { return SessionID(uuid.NewString()) }

// NewReservationID returns a random reservation identifier.
func NewReservationID() ReservationID { return ReservationID(uuid.NewString()) }

// NewCDRID returns a random charge detail record identifier.
func NewCDRID() CDRID { return CDRID(uuid.NewString()) }

// OperatorOfEVSE extracts the operator part of an EVSE id of the form
// "DE*GEF*E1234*1". It returns an empty id when the EVSE id carries no
// operator prefix.
func OperatorOfEVSE(id EVSEID) OperatorID {
	s := string(id)
	stars := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '*' {
			stars++
			if stars == 2 {
				return OperatorID(s[:i])
			}
		}
	}
	return ""
}
