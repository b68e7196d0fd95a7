package model

import "time"

// ChargeDetailRecord is the billing-relevant summary of a completed charging
// session.
type ChargeDetailRecord struct {
	ID        CDRID
	SessionID SessionID
	Location  ChargingLocation

	StartAuth LocalAuthentication
	StopAuth  LocalAuthentication

	// Provider lineage carried over from the session, when known.
	ProviderIDStart        ProviderID
	ProviderIDStop         ProviderID
	RoamingProviderIDStart RoamingProviderID
	RoamingProviderIDStop  RoamingProviderID

	SessionStart time.Time
	SessionStop  time.Time
	EnergyKWh    float64
}

// CDROutcomeKind classifies the per-record result of CDR routing.
type CDROutcomeKind int

const (
	CDRForwarded CDROutcomeKind = iota
	CDREnqueued
	CDRFiltered
	CDRUnknownSession
	CDRError
)

// String returns a human-readable representation of the outcome kind.
func (k CDROutcomeKind) String() string {
	switch k {
	case CDRForwarded:
		return "forwarded"
	case CDREnqueued:
		return "enqueued"
	case CDRFiltered:
		return "filtered"
	case CDRUnknownSession:
		return "unknown_session"
	case CDRError:
		return "error"
	default:
		return "unknown"
	}
}

// CDROutcome is the per-record result of one routing pass.
type CDROutcome struct {
	CDRID       CDRID
	SessionID   SessionID
	Kind        CDROutcomeKind
	Target      string
	Description string
}

// CDRBatchResult aggregates one routing pass over a batch of records. Outcomes
// holds exactly one entry per input record, in input order.
type CDRBatchResult struct {
	Overall  CDROutcomeKind
	Outcomes []CDROutcome
	Runtime  time.Duration
}
