package api

import (
	"time"

	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/model"
)

// locationRequest selects a charging location by exactly one identifier.
type locationRequest struct {
	EVSEID     string `json:"evse_id,omitempty"`
	StationID  string `json:"station_id,omitempty"`
	PoolID     string `json:"pool_id,omitempty"`
	OperatorID string `json:"operator_id,omitempty"`
}

func (l locationRequest) toModel() model.ChargingLocation {
	switch {
	case l.EVSEID != "":
		return model.AtEVSE(model.EVSEID(l.EVSEID))
	case l.StationID != "":
		return model.AtStation(model.StationID(l.StationID))
	case l.PoolID != "":
		return model.AtPool(model.PoolID(l.PoolID))
	case l.OperatorID != "":
		return model.AtOperator(model.OperatorID(l.OperatorID))
	default:
		return model.ChargingLocation{}
	}
}

// authRequest carries the identity methods presented by the driver.
type authRequest struct {
	Token     string `json:"token,omitempty"`
	QRCodeID  string `json:"qr_code_id,omitempty"`
	PnCID     string `json:"pnc_id,omitempty"`
	RemoteID  string `json:"remote_id,omitempty"`
	PublicKey string `json:"public_key,omitempty"`
}

func (a authRequest) toModel() model.LocalAuthentication {
	return model.LocalAuthentication{
		Token:     model.AuthToken(a.Token),
		QRCodeID:  a.QRCodeID,
		PnCID:     a.PnCID,
		RemoteID:  a.RemoteID,
		PublicKey: a.PublicKey,
	}
}

type reserveRequest struct {
	Location        locationRequest `json:"location"`
	Auth            authRequest     `json:"auth"`
	ProviderID      string          `json:"provider_id,omitempty"`
	StartsAt        time.Time       `json:"starts_at,omitempty"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
	ReservationID   string          `json:"reservation_id,omitempty"`
}

type reserveResponse struct {
	Kind          string `json:"kind"`
	ReservationID string `json:"reservation_id,omitempty"`
	Description   string `json:"description,omitempty"`
	RuntimeMS     int64  `json:"runtime_ms"`
}

type cancelResponse struct {
	Kind          string `json:"kind"`
	ReservationID string `json:"reservation_id"`
	Description   string `json:"description,omitempty"`
	RuntimeMS     int64  `json:"runtime_ms"`
}

type remoteStartRequest struct {
	Location      locationRequest `json:"location"`
	Auth          authRequest     `json:"auth"`
	ProviderID    string          `json:"provider_id,omitempty"`
	SessionID     string          `json:"session_id,omitempty"`
	ReservationID string          `json:"reservation_id,omitempty"`
}

type remoteStartResponse struct {
	Kind        string `json:"kind"`
	SessionID   string `json:"session_id,omitempty"`
	Description string `json:"description,omitempty"`
	RuntimeMS   int64  `json:"runtime_ms"`
}

type remoteStopResponse struct {
	Kind        string `json:"kind"`
	SessionID   string `json:"session_id"`
	Description string `json:"description,omitempty"`
	RuntimeMS   int64  `json:"runtime_ms"`
}

type authorizeRequest struct {
	Auth      authRequest     `json:"auth"`
	Location  locationRequest `json:"location"`
	SessionID string          `json:"session_id,omitempty"`
}

type authorizeResponse struct {
	Decision    string `json:"decision"`
	ProviderID  string `json:"provider_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	Cached      bool   `json:"cached"`
	Description string `json:"description,omitempty"`
	RuntimeMS   int64  `json:"runtime_ms"`
}

type cdrRequest struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id,omitempty"`
	Location     locationRequest `json:"location"`
	StartAuth    authRequest     `json:"start_auth"`
	StopAuth     authRequest     `json:"stop_auth"`
	SessionStart time.Time       `json:"session_start,omitempty"`
	SessionStop  time.Time       `json:"session_stop,omitempty"`
	EnergyKWh    float64         `json:"energy_kwh,omitempty"`
}

func (c cdrRequest) toModel() model.ChargeDetailRecord {
	return model.ChargeDetailRecord{
		ID:           model.CDRID(c.ID),
		SessionID:    model.SessionID(c.SessionID),
		Location:     c.Location.toModel(),
		StartAuth:    c.StartAuth.toModel(),
		StopAuth:     c.StopAuth.toModel(),
		SessionStart: c.SessionStart,
		SessionStop:  c.SessionStop,
		EnergyKWh:    c.EnergyKWh,
	}
}

type cdrOutcomeResponse struct {
	CDRID       string `json:"cdr_id"`
	SessionID   string `json:"session_id,omitempty"`
	Kind        string `json:"kind"`
	Target      string `json:"target,omitempty"`
	Description string `json:"description,omitempty"`
}

type cdrBatchResponse struct {
	Overall   string               `json:"overall"`
	Outcomes  []cdrOutcomeResponse `json:"outcomes"`
	RuntimeMS int64                `json:"runtime_ms"`
}

func toReserveRequest(r reserveRequest) backend.ReserveRequest {
	return backend.ReserveRequest{
		Location:      r.Location.toModel(),
		StartsAt:      r.StartsAt,
		Duration:      time.Duration(r.DurationMinutes) * time.Minute,
		Auth:          r.Auth.toModel(),
		ProviderID:    model.ProviderID(r.ProviderID),
		ReservationID: model.ReservationID(r.ReservationID),
	}
}

func toRemoteStartRequest(r remoteStartRequest) backend.RemoteStartRequest {
	return backend.RemoteStartRequest{
		Location:      r.Location.toModel(),
		Auth:          r.Auth.toModel(),
		ProviderID:    model.ProviderID(r.ProviderID),
		SessionID:     model.SessionID(r.SessionID),
		ReservationID: model.ReservationID(r.ReservationID),
	}
}

func toAuthorizeRequest(r authorizeRequest) backend.AuthorizeRequest {
	return backend.AuthorizeRequest{
		Auth:      r.Auth.toModel(),
		Location:  r.Location.toModel(),
		SessionID: model.SessionID(r.SessionID),
	}
}
