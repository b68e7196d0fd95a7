package directory

import (
	"context"

	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/model"
)

type stubOperator struct{ id model.OperatorID }

func (s stubOperator) ID() model.OperatorID { return s.id }

func (s stubOperator) Reserve(context.Context, backend.ReserveRequest) (model.ReservationResult, error) {
	return model.ReservationResult{Kind: model.KindSuccess}, nil
}

func (s stubOperator) CancelReservation(context.Context, model.ReservationID) (model.CancelReservationResult, error) {
	return model.CancelReservationResult{Kind: model.KindSuccess}, nil
}

func (s stubOperator) RemoteStart(context.Context, backend.RemoteStartRequest) (model.RemoteStartResult, error) {
	return model.RemoteStartResult{Kind: model.KindSuccess}, nil
}

func (s stubOperator) RemoteStop(context.Context, model.SessionID) (model.RemoteStopResult, error) {
	return model.RemoteStopResult{Kind: model.KindSuccess}, nil
}

func (s stubOperator) AuthorizeStart(context.Context, backend.AuthorizeRequest) (model.AuthResult, error) {
	return model.AuthResult{Decision: model.DecisionAuthorized}, nil
}

func (s stubOperator) AuthorizeStop(context.Context, backend.AuthorizeRequest) (model.AuthResult, error) {
	return model.AuthResult{Decision: model.DecisionAuthorized}, nil
}

type stubProvider struct{ id model.ProviderID }

func (s stubProvider) ID() model.ProviderID { return s.id }

func (s stubProvider) AuthorizeStart(context.Context, backend.AuthorizeRequest) (model.AuthResult, error) {
	return model.AuthResult{Decision: model.DecisionAuthorized, ProviderID: s.id}, nil
}

func (s stubProvider) AuthorizeStop(context.Context, backend.AuthorizeRequest) (model.AuthResult, error) {
	return model.AuthResult{Decision: model.DecisionAuthorized, ProviderID: s.id}, nil
}

func (s stubProvider) SendChargeDetailRecords(_ context.Context, cdrs []model.ChargeDetailRecord) ([]model.CDROutcome, error) {
	out := make([]model.CDROutcome, len(cdrs))
	for i, c := range cdrs {
		out[i] = model.CDROutcome{CDRID: c.ID, SessionID: c.SessionID, Kind: model.CDRForwarded, Target: string(s.id)}
	}
	return out, nil
}
