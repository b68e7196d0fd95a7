package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargenet/roaming/core/model"
)

func TestReservationsLatestAndAll(t *testing.T) {
	d := NewMemoryReservations()
	id := model.ReservationID("res-1")
	first := model.Reservation{ID: id, ResolvedOperatorID: "DE*GEF"}
	require.NoError(t, d.Put(first))
	second := first.WithCancellation(time.Now())
	require.NoError(t, d.Put(second))

	latest, ok := d.GetLatest(id)
	require.True(t, ok)
	assert.True(t, latest.Canceled())

	all := d.GetAll(id)
	require.Len(t, all, 2)
	assert.False(t, all[0].Canceled())

	_, ok = d.GetLatest("missing")
	assert.False(t, ok)
}

func TestSessionsLifecycle(t *testing.T) {
	d := NewMemorySessions()
	id := model.NewSessionID()
	s := model.Session{
		ID:                      id,
		Location:                model.AtEVSE("DE*GEF*E1*1"),
		CSORoamingProviderStart: "hub-1",
	}
	require.NoError(t, d.RemoteStart(s))

	got, ok := d.Get(id)
	require.True(t, ok)
	assert.Equal(t, model.StateSessionStarted, got.State)
	assert.False(t, got.StartedAt.IsZero())
	assert.True(t, d.Exists(id))

	stoppedAt := time.Now()
	require.NoError(t, d.RemoteStop(id, model.LocalAuthentication{Token: "04A2B3C4"}, "DE-GDF", "hub-1", stoppedAt))
	got, _ = d.Get(id)
	assert.Equal(t, model.StateSessionStopped, got.State)
	assert.True(t, got.Stopped())
	assert.Equal(t, model.RoamingProviderID("hub-1"), got.CSORoamingProviderStop)

	require.NoError(t, d.CDRPending(id))
	got, _ = d.Get(id)
	assert.Equal(t, model.StateCDRPending, got.State)

	cdr := model.ChargeDetailRecord{ID: model.NewCDRID(), SessionID: id}
	require.NoError(t, d.CDRReceived(id, cdr))
	got, _ = d.Get(id)
	assert.Equal(t, model.StateCDRResolved, got.State)
	require.NotNil(t, got.CDR)
	assert.Equal(t, cdr.ID, got.CDR.ID)

	// A resolved session is terminal; a late pending mark must not regress it.
	require.NoError(t, d.CDRPending(id))
	got, _ = d.Get(id)
	assert.Equal(t, model.StateCDRResolved, got.State)
}

func TestSessionsUnknownID(t *testing.T) {
	d := NewMemorySessions()
	assert.ErrorIs(t, d.RemoteStop("nope", model.LocalAuthentication{}, "", "", time.Now()), ErrNotFound)
	assert.ErrorIs(t, d.AuthStop("nope", model.LocalAuthentication{}, "", ""), ErrNotFound)
	assert.ErrorIs(t, d.CDRReceived("nope", model.ChargeDetailRecord{}), ErrNotFound)
	assert.ErrorIs(t, d.CDRPending("nope"), ErrNotFound)
	assert.False(t, d.Exists("nope"))
}

func TestProviderIndexOperators(t *testing.T) {
	idx := NewProviderIndex()
	require.NoError(t, idx.AddOperator(stubOperator{id: "DE*GEF"}))
	op, ok := idx.OperatorByID("DE*GEF")
	require.True(t, ok)
	assert.Equal(t, model.OperatorID("DE*GEF"), op.ID())

	_, ok = idx.OperatorByID("DE*XYZ")
	assert.False(t, ok)

	require.NoError(t, idx.RemoveOperator("DE*GEF"))
	assert.ErrorIs(t, idx.RemoveOperator("DE*GEF"), ErrNotFound)
}

func TestProviderIndexProvidersOrdered(t *testing.T) {
	idx := NewProviderIndex()
	require.NoError(t, idx.AddProvider(stubProvider{id: "DE-AAA"}))
	require.NoError(t, idx.AddProvider(stubProvider{id: "DE-BBB"}))
	ps := idx.Providers()
	require.Len(t, ps, 2)
	assert.Equal(t, model.ProviderID("DE-AAA"), ps[0].ID())
	assert.Equal(t, model.ProviderID("DE-BBB"), ps[1].ID())

	p, ok := idx.ProviderByID("DE-BBB")
	require.True(t, ok)
	assert.Equal(t, model.ProviderID("DE-BBB"), p.ID())
}
