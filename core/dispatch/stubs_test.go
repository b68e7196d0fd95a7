package dispatch

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/directory"
	"github.com/chargenet/roaming/core/model"
	"github.com/chargenet/roaming/infra/logger"
)

// scriptedOperator answers every call with the configured results and counts
// invocations.
type scriptedOperator struct {
	id model.OperatorID

	reserveRes model.ReservationResult
	cancelRes  model.CancelReservationResult
	startRes   model.RemoteStartResult
	stopRes    model.RemoteStopResult
	authRes    model.AuthResult
	err        error

	reserveCalls int32
	cancelCalls  int32
	startCalls   int32
	stopCalls    int32
	authCalls    int32
}

func (o *scriptedOperator) ID() model.OperatorID { return o.id }

func (o *scriptedOperator) Reserve(context.Context, backend.ReserveRequest) (model.ReservationResult, error) {
	atomic.AddInt32(&o.reserveCalls, 1)
	return o.reserveRes, o.err
}

func (o *scriptedOperator) CancelReservation(context.Context, model.ReservationID) (model.CancelReservationResult, error) {
	atomic.AddInt32(&o.cancelCalls, 1)
	return o.cancelRes, o.err
}

func (o *scriptedOperator) RemoteStart(context.Context, backend.RemoteStartRequest) (model.RemoteStartResult, error) {
	atomic.AddInt32(&o.startCalls, 1)
	return o.startRes, o.err
}

func (o *scriptedOperator) RemoteStop(context.Context, model.SessionID) (model.RemoteStopResult, error) {
	atomic.AddInt32(&o.stopCalls, 1)
	return o.stopRes, o.err
}

func (o *scriptedOperator) AuthorizeStart(context.Context, backend.AuthorizeRequest) (model.AuthResult, error) {
	atomic.AddInt32(&o.authCalls, 1)
	return o.authRes, o.err
}

func (o *scriptedOperator) AuthorizeStop(ctx context.Context, req backend.AuthorizeRequest) (model.AuthResult, error) {
	return o.AuthorizeStart(ctx, req)
}

// scriptedRoaming mirrors scriptedOperator for the roaming side.
type scriptedRoaming struct {
	id model.RoamingProviderID

	reserveRes model.ReservationResult
	cancelRes  model.CancelReservationResult
	startRes   model.RemoteStartResult
	stopRes    model.RemoteStopResult
	authRes    model.AuthResult
	err        error

	reserveCalls int32
	cancelCalls  int32
	startCalls   int32
	stopCalls    int32
	authCalls    int32
}

func (r *scriptedRoaming) ID() model.RoamingProviderID { return r.id }

func (r *scriptedRoaming) Reserve(context.Context, backend.ReserveRequest) (model.ReservationResult, error) {
	atomic.AddInt32(&r.reserveCalls, 1)
	return r.reserveRes, r.err
}

func (r *scriptedRoaming) CancelReservation(context.Context, model.ReservationID) (model.CancelReservationResult, error) {
	atomic.AddInt32(&r.cancelCalls, 1)
	return r.cancelRes, r.err
}

func (r *scriptedRoaming) RemoteStart(context.Context, backend.RemoteStartRequest) (model.RemoteStartResult, error) {
	atomic.AddInt32(&r.startCalls, 1)
	return r.startRes, r.err
}

func (r *scriptedRoaming) RemoteStop(context.Context, model.SessionID) (model.RemoteStopResult, error) {
	atomic.AddInt32(&r.stopCalls, 1)
	return r.stopRes, r.err
}

func (r *scriptedRoaming) AuthorizeStart(context.Context, backend.AuthorizeRequest) (model.AuthResult, error) {
	atomic.AddInt32(&r.authCalls, 1)
	return r.authRes, r.err
}

func (r *scriptedRoaming) AuthorizeStop(ctx context.Context, req backend.AuthorizeRequest) (model.AuthResult, error) {
	return r.AuthorizeStart(ctx, req)
}

func (r *scriptedRoaming) SendChargeDetailRecords(_ context.Context, cdrs []model.ChargeDetailRecord) ([]model.CDROutcome, error) {
	out := make([]model.CDROutcome, len(cdrs))
	for i, c := range cdrs {
		out[i] = model.CDROutcome{CDRID: c.ID, SessionID: c.SessionID, Kind: model.CDRForwarded}
	}
	return out, nil
}

const testEVSE = model.EVSEID("DE*GEF*E1234*1")

type engineFixture struct {
	engine       *Engine
	providers    *directory.ProviderIndex
	reservations *directory.MemoryReservations
	sessions     *directory.MemorySessions
	operator     *scriptedOperator
}

func newEngineFixture(t *testing.T, cfg Config) *engineFixture {
	t.Helper()
	idx := directory.NewProviderIndex()
	op := &scriptedOperator{id: model.OperatorOfEVSE(testEVSE)}
	require.NoError(t, idx.AddOperator(op))

	reservations := directory.NewMemoryReservations()
	sessions := directory.NewMemorySessions()
	e, err := NewEngine(cfg, idx, NewRoamingRegistry(), reservations, sessions, nil, nil, nil, logger.NopLogger{})
	require.NoError(t, err)
	return &engineFixture{
		engine:       e,
		providers:    idx,
		reservations: reservations,
		sessions:     sessions,
		operator:     op,
	}
}

func (f *engineFixture) addRoaming(t *testing.T, rp *scriptedRoaming) {
	t.Helper()
	_, err := f.engine.Roaming().Add(string(rp.ID()), rp)
	require.NoError(t, err)
}
