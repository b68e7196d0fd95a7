// Package backend declares the capability interfaces implemented by charging
// backends. Operators and roaming providers expose one or more capabilities;
// dispatchers consume them polymorphically and never depend on a concrete
// adapter.
package backend

import (
	"context"
	"time"

	"github.com/chargenet/roaming/core/model"
)

// ReservationService reserves charge points and cancels reservations.
type ReservationService interface {
	Reserve(ctx context.Context, req ReserveRequest) (model.ReservationResult, error)
	CancelReservation(ctx context.Context, id model.ReservationID) (model.CancelReservationResult, error)
}

// SessionControl starts and stops charging sessions remotely.
type SessionControl interface {
	RemoteStart(ctx context.Context, req RemoteStartRequest) (model.RemoteStartResult, error)
	RemoteStop(ctx context.Context, id model.SessionID) (model.RemoteStopResult, error)
}

// AuthorizationService authorizes charging start and stop requests.
type AuthorizationService interface {
	AuthorizeStart(ctx context.Context, req AuthorizeRequest) (model.AuthResult, error)
	AuthorizeStop(ctx context.Context, req AuthorizeRequest) (model.AuthResult, error)
}

// CDRReceiver accepts batches of charge detail records.
type CDRReceiver interface {
	SendChargeDetailRecords(ctx context.Context, cdrs []model.ChargeDetailRecord) ([]model.CDROutcome, error)
}

// Operator is a directly addressable charging-station operator backend.
type Operator interface {
	ID() model.OperatorID
	ReservationService
	SessionControl
	AuthorizationService
}

// RoamingProvider is a remote roaming backend serving operations for
// locations not managed locally.
type RoamingProvider interface {
	ID() model.RoamingProviderID
	ReservationService
	SessionControl
	AuthorizationService
	CDRReceiver
}

// EMobilityProvider is an identity backend representing customer contracts.
type EMobilityProvider interface {
	ID() model.ProviderID
	AuthorizationService
	CDRReceiver
}

// ReserveRequest carries the parameters of a reservation attempt.
type ReserveRequest struct {
	Location   model.ChargingLocation
	StartsAt   time.Time
	Duration   time.Duration
	Auth       model.LocalAuthentication
	ProviderID model.ProviderID

	// ReservationID is set when extending an existing reservation.
	ReservationID model.ReservationID
}

// RemoteStartRequest carries the parameters of a remote session start.
type RemoteStartRequest struct {
	Location      model.ChargingLocation
	Auth          model.LocalAuthentication
	ProviderID    model.ProviderID
	SessionID     model.SessionID
	ReservationID model.ReservationID
}

// AuthorizeRequest carries the parameters of an authorize start/stop call.
type AuthorizeRequest struct {
	Auth       model.LocalAuthentication
	Location   model.ChargingLocation
	SessionID  model.SessionID
	OperatorID model.OperatorID
}
