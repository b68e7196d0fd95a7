package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/model"
)

func TestReserveEmptyLocation(t *testing.T) {
	f := newEngineFixture(t, Config{})
	res := f.engine.Reserve(context.Background(), backend.ReserveRequest{})
	assert.Equal(t, model.KindArgumentError, res.Kind)
	assert.Zero(t, f.operator.reserveCalls)
}

func TestReserveViaOperator(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.reserveRes = model.ReservationResult{Kind: model.KindSuccess}

	res := f.engine.Reserve(context.Background(), backend.ReserveRequest{
		Location: model.AtEVSE(testEVSE),
		Duration: 10 * time.Minute,
	})
	require.Equal(t, model.KindSuccess, res.Kind)
	require.NotNil(t, res.Reservation)
	assert.Equal(t, f.operator.id, res.Reservation.ResolvedOperatorID)
	assert.Empty(t, res.Reservation.ResolvedRoamingProviderID)
	assert.Equal(t, 10*time.Minute, res.Reservation.Duration)

	stored, ok := f.reservations.GetLatest(res.Reservation.ID)
	require.True(t, ok)
	assert.Equal(t, f.operator.id, stored.ResolvedOperatorID)
}

func TestReserveDurationClamped(t *testing.T) {
	f := newEngineFixture(t, Config{MaxReservationMinutes: 15})
	f.operator.reserveRes = model.ReservationResult{Kind: model.KindSuccess}

	res := f.engine.Reserve(context.Background(), backend.ReserveRequest{
		Location: model.AtEVSE(testEVSE),
		Duration: 2 * time.Hour,
	})
	require.NotNil(t, res.Reservation)
	assert.Equal(t, 15*time.Minute, res.Reservation.Duration)

	res = f.engine.Reserve(context.Background(), backend.ReserveRequest{
		Location: model.AtEVSE(testEVSE),
	})
	require.NotNil(t, res.Reservation)
	assert.Equal(t, 15*time.Minute, res.Reservation.Duration)
}

func TestReserveFallsBackToRoaming(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.reserveRes = model.ReservationResult{Kind: model.KindUnknownLocation}
	rp := &scriptedRoaming{id: "hub-1", reserveRes: model.ReservationResult{Kind: model.KindSuccess}}
	f.addRoaming(t, rp)

	res := f.engine.Reserve(context.Background(), backend.ReserveRequest{Location: model.AtEVSE(testEVSE)})
	require.Equal(t, model.KindSuccess, res.Kind)
	require.NotNil(t, res.Reservation)
	assert.Empty(t, res.Reservation.ResolvedOperatorID)
	assert.Equal(t, rp.id, res.Reservation.ResolvedRoamingProviderID)
	assert.EqualValues(t, 1, f.operator.reserveCalls)
	assert.EqualValues(t, 1, rp.reserveCalls)
}

func TestReserveRoamingPriorityOrder(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.reserveRes = model.ReservationResult{Kind: model.KindUnknownLocation}
	first := &scriptedRoaming{id: "hub-10", reserveRes: model.ReservationResult{Kind: model.KindUnknownLocation}}
	second := &scriptedRoaming{id: "hub-11", reserveRes: model.ReservationResult{Kind: model.KindSuccess}}
	f.addRoaming(t, first)
	f.addRoaming(t, second)

	res := f.engine.Reserve(context.Background(), backend.ReserveRequest{Location: model.AtEVSE(testEVSE)})
	require.Equal(t, model.KindSuccess, res.Kind)
	assert.Equal(t, second.id, res.Reservation.ResolvedRoamingProviderID)
	assert.EqualValues(t, 1, first.reserveCalls)
	assert.EqualValues(t, 1, second.reserveCalls)
}

func TestReserveExhaustedChain(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.reserveRes = model.ReservationResult{Kind: model.KindUnknownLocation}
	rp := &scriptedRoaming{id: "hub-1", reserveRes: model.ReservationResult{Kind: model.KindUnknownLocation}}
	f.addRoaming(t, rp)

	res := f.engine.Reserve(context.Background(), backend.ReserveRequest{Location: model.AtEVSE(testEVSE)})
	assert.Equal(t, model.KindUnknownOperator, res.Kind)

	res = f.engine.Reserve(context.Background(), backend.ReserveRequest{Location: model.AtStation("ST-1")})
	assert.Equal(t, model.KindUnknownLocation, res.Kind)
}

func TestReserveCanceledContext(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.reserveRes = model.ReservationResult{Kind: model.KindUnknownLocation}
	rp := &scriptedRoaming{id: "hub-1", reserveRes: model.ReservationResult{Kind: model.KindSuccess}}
	f.addRoaming(t, rp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := f.engine.Reserve(ctx, backend.ReserveRequest{Location: model.AtEVSE(testEVSE)})
	assert.Equal(t, model.KindTimeout, res.Kind)
	assert.Zero(t, rp.reserveCalls)
}

func TestCancelReservationAddressesRecordedBackend(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.reserveRes = model.ReservationResult{Kind: model.KindSuccess}
	f.operator.cancelRes = model.CancelReservationResult{Kind: model.KindSuccess}
	rp := &scriptedRoaming{id: "hub-1", cancelRes: model.CancelReservationResult{Kind: model.KindSuccess}}
	f.addRoaming(t, rp)

	res := f.engine.Reserve(context.Background(), backend.ReserveRequest{Location: model.AtEVSE(testEVSE)})
	require.Equal(t, model.KindSuccess, res.Kind)

	got := f.engine.CancelReservation(context.Background(), res.Reservation.ID)
	assert.Equal(t, model.KindSuccess, got.Kind)
	assert.Equal(t, res.Reservation.ID, got.ReservationID)
	assert.EqualValues(t, 1, f.operator.cancelCalls)
	assert.Zero(t, rp.cancelCalls)

	stored, ok := f.reservations.GetLatest(res.Reservation.ID)
	require.True(t, ok)
	assert.True(t, stored.Canceled())
}

func TestCancelReservationAlreadyCanceled(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.reserveRes = model.ReservationResult{Kind: model.KindSuccess}
	f.operator.cancelRes = model.CancelReservationResult{Kind: model.KindSuccess}

	res := f.engine.Reserve(context.Background(), backend.ReserveRequest{Location: model.AtEVSE(testEVSE)})
	require.Equal(t, model.KindSuccess, res.Kind)
	require.Equal(t, model.KindSuccess, f.engine.CancelReservation(context.Background(), res.Reservation.ID).Kind)

	got := f.engine.CancelReservation(context.Background(), res.Reservation.ID)
	assert.Equal(t, model.KindNoOperation, got.Kind)
	assert.EqualValues(t, 1, f.operator.cancelCalls)
}

func TestCancelReservationUnknownIDWalksRoaming(t *testing.T) {
	f := newEngineFixture(t, Config{})
	rp := &scriptedRoaming{id: "hub-1", cancelRes: model.CancelReservationResult{Kind: model.KindSuccess}}
	f.addRoaming(t, rp)

	got := f.engine.CancelReservation(context.Background(), "res-unknown")
	assert.Equal(t, model.KindSuccess, got.Kind)
	assert.EqualValues(t, model.ReservationID("res-unknown"), got.ReservationID)
	assert.Zero(t, f.operator.cancelCalls)
	assert.EqualValues(t, 1, rp.cancelCalls)
}

func TestCancelReservationEmptyID(t *testing.T) {
	f := newEngineFixture(t, Config{})
	got := f.engine.CancelReservation(context.Background(), "")
	assert.Equal(t, model.KindArgumentError, got.Kind)
}

func TestCancelReservationNothingRecognizes(t *testing.T) {
	f := newEngineFixture(t, Config{})
	rp := &scriptedRoaming{id: "hub-1", cancelRes: model.CancelReservationResult{Kind: model.KindUnknownOperator}}
	f.addRoaming(t, rp)

	got := f.engine.CancelReservation(context.Background(), "res-unknown")
	assert.Equal(t, model.KindUnknownOperator, got.Kind)
}
