package dispatch

import (
	"context"
	"time"

	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/events"
	"github.com/chargenet/roaming/core/model"
)

// Reserve reserves a charge point. The request is first offered to the
// operator owning the location; when that operator is unknown or answers with
// an unknown-location class result, the roaming providers are tried
// sequentially in priority order. The backend that accepted is persisted on
// the reservation so CancelReservation can address it directly.
func (e *Engine) Reserve(ctx context.Context, req backend.ReserveRequest) model.ReservationResult {
	start := time.Now()
	fail := func(kind model.ResultKind, desc string) model.ReservationResult {
		res := model.ReservationResult{Kind: kind, Description: desc, Runtime: time.Since(start)}
		e.observe(events.OpReserve, kind, req.Location.String(), "", "", res.Runtime)
		return res
	}

	if req.Location.IsEmpty() {
		return fail(model.KindArgumentError, "empty charging location")
	}
	if max := e.cfg.MaxReservationDuration(); req.Duration <= 0 || req.Duration > max {
		req.Duration = max
	}
	if req.StartsAt.IsZero() {
		req.StartsAt = start
	}

	if op, ok := e.operatorFor(req.Location); ok {
		res, err := op.Reserve(ctx, req)
		if err != nil {
			e.logger.Warnf("reserve: operator %s failed: %v", op.ID(), err)
		} else if res.Kind.Decisive() {
			return e.finishReserve(req, res, op.ID(), "", start)
		}
	}

	for _, en := range e.roamingSnapshot("") {
		if ctx.Err() != nil {
			return fail(model.KindTimeout, "canceled before fallback completed")
		}
		res, err := en.Handle.Reserve(ctx, req)
		if err != nil {
			e.logger.Warnf("reserve: roaming provider %s failed: %v", en.ID, err)
			continue
		}
		if res.Kind.Decisive() {
			return e.finishReserve(req, res, "", en.Handle.ID(), start)
		}
	}

	return fail(unknownKind(req.Location), "no backend could serve the reservation")
}

// finishReserve persists the resolution metadata and emits observability
// records for a decisive reservation result.
func (e *Engine) finishReserve(req backend.ReserveRequest, res model.ReservationResult, opID model.OperatorID, rpID model.RoamingProviderID, start time.Time) model.ReservationResult {
	backendID := string(opID)
	if backendID == "" {
		backendID = string(rpID)
	}
	if res.Kind == model.KindSuccess {
		r := res.Reservation
		if r == nil {
			r = &model.Reservation{ID: model.NewReservationID()}
		}
		if r.ID == "" {
			r.ID = model.NewReservationID()
		}
		r.Location = req.Location
		r.StartsAt = req.StartsAt
		r.Duration = req.Duration
		r.ProviderID = req.ProviderID
		r.Auth = req.Auth
		r.LinkedReservationID = req.ReservationID
		r.ResolvedOperatorID = opID
		r.ResolvedRoamingProviderID = rpID
		r.CreatedAt = start
		if err := e.reservations.Put(*r); err != nil {
			e.logger.Errorf("reserve: persisting %s: %v", r.ID, err)
		}
		res.Reservation = r
	}
	res.Runtime = time.Since(start)
	e.observe(events.OpReserve, res.Kind, req.Location.String(), "", backendID, res.Runtime)
	return res
}

// CancelReservation cancels a reservation. The backend recorded on the
// reservation is addressed first; only when the reservation is unknown or its
// backend declines does the call walk the roaming-provider chain.
func (e *Engine) CancelReservation(ctx context.Context, id model.ReservationID) model.CancelReservationResult {
	start := time.Now()
	fail := func(kind model.ResultKind, desc string) model.CancelReservationResult {
		res := model.CancelReservationResult{Kind: kind, ReservationID: id, Description: desc, Runtime: time.Since(start)}
		e.observe(events.OpCancelReservation, kind, "", "", "", res.Runtime)
		return res
	}

	if id == "" {
		return fail(model.KindArgumentError, "empty reservation id")
	}

	stored, known := e.reservations.GetLatest(id)
	var triedRoaming model.RoamingProviderID
	if known {
		if stored.Canceled() {
			return fail(model.KindNoOperation, "reservation already canceled")
		}
		switch {
		case stored.ResolvedOperatorID != "":
			if op, ok := e.providers.OperatorByID(stored.ResolvedOperatorID); ok {
				res, err := op.CancelReservation(ctx, id)
				if err != nil {
					e.logger.Warnf("cancel: operator %s failed: %v", op.ID(), err)
				} else if res.Kind.Decisive() {
					return e.finishCancel(id, stored, res, string(op.ID()), start)
				}
			}
		case stored.ResolvedRoamingProviderID != "":
			if rp, ok := e.roaming.Get(string(stored.ResolvedRoamingProviderID)); ok {
				triedRoaming = stored.ResolvedRoamingProviderID
				res, err := rp.CancelReservation(ctx, id)
				if err != nil {
					e.logger.Warnf("cancel: roaming provider %s failed: %v", rp.ID(), err)
				} else if res.Kind.Decisive() {
					return e.finishCancel(id, stored, res, string(rp.ID()), start)
				}
			}
		}
	}

	for _, en := range e.roamingSnapshot(triedRoaming) {
		if ctx.Err() != nil {
			return fail(model.KindTimeout, "canceled before fallback completed")
		}
		res, err := en.Handle.CancelReservation(ctx, id)
		if err != nil {
			e.logger.Warnf("cancel: roaming provider %s failed: %v", en.ID, err)
			continue
		}
		if res.Kind.Decisive() {
			return e.finishCancel(id, stored, res, string(en.Handle.ID()), start)
		}
	}

	return fail(model.KindUnknownOperator, "no backend recognized the reservation")
}

// finishCancel persists the cancellation snapshot and emits observability
// records.
func (e *Engine) finishCancel(id model.ReservationID, stored model.Reservation, res model.CancelReservationResult, backendID string, start time.Time) model.CancelReservationResult {
	if res.Kind == model.KindSuccess && stored.ID != "" {
		if err := e.reservations.Put(stored.WithCancellation(time.Now())); err != nil {
			e.logger.Errorf("cancel: persisting %s: %v", stored.ID, err)
		}
	}
	res.ReservationID = id
	res.Runtime = time.Since(start)
	e.observe(events.OpCancelReservation, res.Kind, stored.Location.String(), "", backendID, res.Runtime)
	return res
}
