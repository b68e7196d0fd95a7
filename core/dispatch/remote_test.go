package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/model"
)

func TestRemoteStartViaOperator(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.startRes = model.RemoteStartResult{Kind: model.KindSuccess}

	res := f.engine.RemoteStart(context.Background(), backend.RemoteStartRequest{
		Location:   model.AtEVSE(testEVSE),
		Auth:       model.LocalAuthentication{Token: "04A2B3C4"},
		ProviderID: "DE-GDF",
	})
	require.Equal(t, model.KindSuccess, res.Kind)
	require.NotNil(t, res.Session)
	assert.NotEmpty(t, res.Session.ID)
	assert.Equal(t, f.operator.id, res.Session.OperatorStart)
	assert.Equal(t, model.StateSessionStarted, res.Session.State)

	sess, ok := f.sessions.Get(res.Session.ID)
	require.True(t, ok)
	assert.Equal(t, f.operator.id, sess.OperatorStart)
	assert.EqualValues(t, "DE-GDF", sess.ProviderStart)
}

func TestRemoteStartFallbackRecordsRoamingLineage(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.startRes = model.RemoteStartResult{Kind: model.KindUnknownLocation}
	first := &scriptedRoaming{id: "hub-10", startRes: model.RemoteStartResult{Kind: model.KindUnknownLocation}}
	second := &scriptedRoaming{id: "hub-11", startRes: model.RemoteStartResult{Kind: model.KindSuccess}}
	f.addRoaming(t, first)
	f.addRoaming(t, second)

	res := f.engine.RemoteStart(context.Background(), backend.RemoteStartRequest{Location: model.AtEVSE(testEVSE)})
	require.Equal(t, model.KindSuccess, res.Kind)
	require.NotNil(t, res.Session)
	assert.Empty(t, res.Session.OperatorStart)
	assert.Equal(t, second.id, res.Session.CSORoamingProviderStart)

	sess, ok := f.sessions.Get(res.Session.ID)
	require.True(t, ok)
	assert.Equal(t, second.id, sess.CSORoamingProviderStart)
}

func TestRemoteStartDuplicateSessionID(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.startRes = model.RemoteStartResult{Kind: model.KindSuccess}

	req := backend.RemoteStartRequest{Location: model.AtEVSE(testEVSE), SessionID: "sess-1"}
	require.Equal(t, model.KindSuccess, f.engine.RemoteStart(context.Background(), req).Kind)

	res := f.engine.RemoteStart(context.Background(), req)
	assert.Equal(t, model.KindAlreadyExists, res.Kind)
	assert.EqualValues(t, 1, f.operator.startCalls)
}

func TestRemoteStopUnknownSession(t *testing.T) {
	f := newEngineFixture(t, Config{})
	res := f.engine.RemoteStop(context.Background(), "sess-missing")
	assert.Equal(t, model.KindInvalidSessionID, res.Kind)
	assert.Zero(t, f.operator.stopCalls)
}

func TestRemoteStopPrefersStartBackend(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.startRes = model.RemoteStartResult{Kind: model.KindSuccess}
	f.operator.stopRes = model.RemoteStopResult{Kind: model.KindSuccess}
	rp := &scriptedRoaming{id: "hub-1", stopRes: model.RemoteStopResult{Kind: model.KindSuccess}}
	f.addRoaming(t, rp)

	res := f.engine.RemoteStart(context.Background(), backend.RemoteStartRequest{Location: model.AtEVSE(testEVSE)})
	require.Equal(t, model.KindSuccess, res.Kind)

	got := f.engine.RemoteStop(context.Background(), res.Session.ID)
	assert.Equal(t, model.KindSuccess, got.Kind)
	assert.EqualValues(t, 1, f.operator.stopCalls)
	assert.Zero(t, rp.stopCalls)

	sess, ok := f.sessions.Get(res.Session.ID)
	require.True(t, ok)
	assert.True(t, sess.Stopped())
	assert.Equal(t, model.StateCDRPending, sess.State)
}

func TestRemoteStopRoamingAffinitySkipsRetry(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.startRes = model.RemoteStartResult{Kind: model.KindUnknownLocation}
	starter := &scriptedRoaming{
		id:       "hub-1",
		startRes: model.RemoteStartResult{Kind: model.KindSuccess},
		stopRes:  model.RemoteStopResult{Kind: model.KindUnknownOperator},
	}
	other := &scriptedRoaming{id: "hub-2", stopRes: model.RemoteStopResult{Kind: model.KindSuccess}}
	f.addRoaming(t, starter)
	f.addRoaming(t, other)

	res := f.engine.RemoteStart(context.Background(), backend.RemoteStartRequest{Location: model.AtEVSE(testEVSE)})
	require.Equal(t, model.KindSuccess, res.Kind)

	got := f.engine.RemoteStop(context.Background(), res.Session.ID)
	assert.Equal(t, model.KindSuccess, got.Kind)
	// The starter is asked once for affinity and not retried in the fallback
	// walk.
	assert.EqualValues(t, 1, starter.stopCalls)
	assert.EqualValues(t, 1, other.stopCalls)
}

func TestRemoteStopAlreadyStopped(t *testing.T) {
	f := newEngineFixture(t, Config{})
	f.operator.startRes = model.RemoteStartResult{Kind: model.KindSuccess}
	f.operator.stopRes = model.RemoteStopResult{Kind: model.KindSuccess}

	res := f.engine.RemoteStart(context.Background(), backend.RemoteStartRequest{Location: model.AtEVSE(testEVSE)})
	require.Equal(t, model.KindSuccess, res.Kind)
	require.Equal(t, model.KindSuccess, f.engine.RemoteStop(context.Background(), res.Session.ID).Kind)

	got := f.engine.RemoteStop(context.Background(), res.Session.ID)
	assert.Equal(t, model.KindAlreadyStopped, got.Kind)
	assert.EqualValues(t, 1, f.operator.stopCalls)
}
