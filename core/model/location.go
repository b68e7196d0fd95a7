package model

// LocationScope designates which level of the charging hierarchy a request
// targets.
type LocationScope int

const (
	ScopeEVSE LocationScope = iota
	ScopeStation
	ScopePool
	ScopeOperator
)

// String returns a human-readable representation of the scope.
func (s LocationScope) String() string {
	switch s {
	case ScopeEVSE:
		return "evse"
	case ScopeStation:
		return "station"
	case ScopePool:
		return "pool"
	case ScopeOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// ChargingLocation identifies the target of a charging request. At most one
// identity field is authoritative; the scope names which one.
type ChargingLocation struct {
	Scope      LocationScope
	EVSEID     EVSEID
	StationID  StationID
	PoolID     PoolID
	OperatorID OperatorID
}

// AtEVSE builds an EVSE-scoped location.
func AtEVSE(id EVSEID) ChargingLocation {
	return ChargingLocation{Scope: ScopeEVSE, EVSEID: id}
}

// AtStation builds a station-scoped location.
func AtStation(id StationID) ChargingLocation {
	return ChargingLocation{Scope: ScopeStation, StationID: id}
}

// AtPool builds a pool-scoped location.
func AtPool(id PoolID) ChargingLocation {
	return ChargingLocation{Scope: ScopePool, PoolID: id}
}

// AtOperator builds an operator-scoped location.
func AtOperator(id OperatorID) ChargingLocation {
	return ChargingLocation{Scope: ScopeOperator, OperatorID: id}
}

// Operator returns the operator the location belongs to, deriving it from the
// EVSE id when the operator field is unset.
func (l ChargingLocation) Operator() OperatorID {
	if l.OperatorID != "" {
		return l.OperatorID
	}
	if l.EVSEID != "" {
		return OperatorOfEVSE(l.EVSEID)
	}
	return ""
}

// IsEmpty reports whether the location carries no identity at all.
func (l ChargingLocation) IsEmpty() bool {
	return l.EVSEID == "" && l.StationID == "" && l.PoolID == "" && l.OperatorID == ""
}

// String returns the authoritative identity for logging.
func (l ChargingLocation) String() string {
	switch l.Scope {
	case ScopeEVSE:
		return string(l.EVSEID)
	case ScopeStation:
		return string(l.StationID)
	case ScopePool:
		return string(l.PoolID)
	case ScopeOperator:
		return string(l.OperatorID)
	default:
		return ""
	}
}
