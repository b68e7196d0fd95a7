package dispatch

import (
	"context"
	"time"

	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/events"
	"github.com/chargenet/roaming/core/model"
)

// RemoteStart starts a charging session at the requested location. The
// backend that accepted the start is recorded as the session's start
// provider; every later lifecycle call for the session prefers it.
func (e *Engine) RemoteStart(ctx context.Context, req backend.RemoteStartRequest) model.RemoteStartResult {
	start := time.Now()
	fail := func(kind model.ResultKind, desc string) model.RemoteStartResult {
		res := model.RemoteStartResult{Kind: kind, Description: desc, Runtime: time.Since(start)}
		e.observe(events.OpRemoteStart, kind, req.Location.String(), req.SessionID, "", res.Runtime)
		return res
	}

	if req.Location.IsEmpty() {
		return fail(model.KindArgumentError, "empty charging location")
	}
	if req.SessionID == "" {
		req.SessionID = model.NewSessionID()
	} else if e.sessions.Exists(req.SessionID) {
		return fail(model.KindAlreadyExists, "session id already in use")
	}

	if op, ok := e.operatorFor(req.Location); ok {
		res, err := op.RemoteStart(ctx, req)
		if err != nil {
			e.logger.Warnf("remote start: operator %s failed: %v", op.ID(), err)
		} else if res.Kind.Decisive() {
			return e.finishRemoteStart(req, res, op.ID(), "", start)
		}
	}

	for _, en := range e.roamingSnapshot("") {
		if ctx.Err() != nil {
			return fail(model.KindTimeout, "canceled before fallback completed")
		}
		res, err := en.Handle.RemoteStart(ctx, req)
		if err != nil {
			e.logger.Warnf("remote start: roaming provider %s failed: %v", en.ID, err)
			continue
		}
		if res.Kind.Decisive() {
			return e.finishRemoteStart(req, res, "", en.Handle.ID(), start)
		}
	}

	return fail(unknownKind(req.Location), "no backend could start the session")
}

// finishRemoteStart records the session with its start lineage and emits
// observability records.
func (e *Engine) finishRemoteStart(req backend.RemoteStartRequest, res model.RemoteStartResult, opID model.OperatorID, rpID model.RoamingProviderID, start time.Time) model.RemoteStartResult {
	backendID := string(opID)
	if backendID == "" {
		backendID = string(rpID)
	}
	if res.Kind == model.KindSuccess {
		s := res.Session
		if s == nil {
			s = &model.Session{ID: req.SessionID}
		}
		if s.ID == "" {
			s.ID = req.SessionID
		}
		s.Location = req.Location
		s.StartAuth = req.Auth
		s.ProviderStart = req.ProviderID
		s.OperatorStart = opID
		s.CSORoamingProviderStart = rpID
		s.ReservationID = req.ReservationID
		s.StartedAt = start
		if err := e.sessions.RemoteStart(*s); err != nil {
			e.logger.Errorf("remote start: persisting session %s: %v", s.ID, err)
		}
		s.State = model.StateSessionStarted
		res.Session = s
	}
	res.Runtime = time.Since(start)
	e.observe(events.OpRemoteStart, res.Kind, req.Location.String(), req.SessionID, backendID, res.Runtime)
	return res
}

// RemoteStop stops a running charging session. The session's recorded start
// backend is addressed first; only when it declines does the call walk the
// remaining roaming-provider chain. A charge detail record returned with the
// stop confirmation is handed to the CDR router.
func (e *Engine) RemoteStop(ctx context.Context, id model.SessionID) model.RemoteStopResult {
	start := time.Now()
	fail := func(kind model.ResultKind, desc string) model.RemoteStopResult {
		res := model.RemoteStopResult{Kind: kind, SessionID: id, Description: desc, Runtime: time.Since(start)}
		e.observe(events.OpRemoteStop, kind, "", id, "", res.Runtime)
		return res
	}

	if id == "" {
		return fail(model.KindArgumentError, "empty session id")
	}
	sess, ok := e.sessions.Get(id)
	if !ok {
		return fail(model.KindInvalidSessionID, "unknown session id")
	}
	if sess.Stopped() {
		return fail(model.KindAlreadyStopped, "session already stopped")
	}

	var triedRoaming model.RoamingProviderID
	switch {
	case sess.OperatorStart != "":
		if op, ok := e.providers.OperatorByID(sess.OperatorStart); ok {
			res, err := op.RemoteStop(ctx, id)
			if err != nil {
				e.logger.Warnf("remote stop: operator %s failed: %v", op.ID(), err)
			} else if res.Kind.Decisive() {
				return e.finishRemoteStop(ctx, sess, res, string(op.ID()), "", start)
			}
		}
	case sess.CSORoamingProviderStart != "":
		if rp, ok := e.roaming.Get(string(sess.CSORoamingProviderStart)); ok {
			triedRoaming = sess.CSORoamingProviderStart
			res, err := rp.RemoteStop(ctx, id)
			if err != nil {
				e.logger.Warnf("remote stop: roaming provider %s failed: %v", rp.ID(), err)
			} else if res.Kind.Decisive() {
				return e.finishRemoteStop(ctx, sess, res, string(rp.ID()), rp.ID(), start)
			}
		}
	}

	for _, en := range e.roamingSnapshot(triedRoaming) {
		if ctx.Err() != nil {
			return fail(model.KindTimeout, "canceled before fallback completed")
		}
		res, err := en.Handle.RemoteStop(ctx, id)
		if err != nil {
			e.logger.Warnf("remote stop: roaming provider %s failed: %v", en.ID, err)
			continue
		}
		if res.Kind.Decisive() {
			return e.finishRemoteStop(ctx, sess, res, string(en.Handle.ID()), en.Handle.ID(), start)
		}
	}

	return fail(model.KindUnknownOperator, "no backend recognized the session")
}

// finishRemoteStop records the stop lineage, forwards a synthesized CDR when
// present, and emits observability records.
func (e *Engine) finishRemoteStop(ctx context.Context, sess model.Session, res model.RemoteStopResult, backendID string, rpID model.RoamingProviderID, start time.Time) model.RemoteStopResult {
	if res.Kind == model.KindSuccess {
		if err := e.sessions.RemoteStop(sess.ID, sess.StopAuth, sess.ProviderStart, rpID, time.Now()); err != nil {
			e.logger.Errorf("remote stop: persisting session %s: %v", sess.ID, err)
		}
		// The stopped session now awaits its charge detail record; routing a
		// CDR below advances it further.
		if err := e.sessions.CDRPending(sess.ID); err != nil {
			e.logger.Errorf("remote stop: marking session %s cdr-pending: %v", sess.ID, err)
		}
		if res.CDR != nil && e.router != nil {
			c := *res.CDR
			if c.SessionID == "" {
				c.SessionID = sess.ID
			}
			batch := e.router.Route(ctx, []model.ChargeDetailRecord{c})
			e.logger.Infof("remote stop: forwarded synthesized cdr for %s: %s", sess.ID, batch.Overall)
		}
	}
	res.SessionID = sess.ID
	res.Runtime = time.Since(start)
	e.observe(events.OpRemoteStop, res.Kind, sess.Location.String(), sess.ID, backendID, res.Runtime)
	return res
}
