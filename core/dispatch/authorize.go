package dispatch

import (
	"context"
	"time"

	"github.com/chargenet/roaming/core/auth"
	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/events"
	"github.com/chargenet/roaming/core/model"
	"github.com/chargenet/roaming/core/registry"
)

// AuthorizeStart authorizes a charging start. Known-invalid sentinel tokens
// are rejected before anything else, a fresh cache hit short-circuits the
// backends entirely, and the per-location rate limiter gates what remains.
// Only then is the owning operator asked, followed by a sequential race
// across the roaming providers.
func (e *Engine) AuthorizeStart(ctx context.Context, req backend.AuthorizeRequest) model.AuthResult {
	return e.authorize(ctx, events.OpAuthorizeStart, req)
}

// AuthorizeStop authorizes a charging stop. The backend recorded as the
// session's start provider is preferred before any fallback.
func (e *Engine) AuthorizeStop(ctx context.Context, req backend.AuthorizeRequest) model.AuthResult {
	return e.authorize(ctx, events.OpAuthorizeStop, req)
}

//gocyclo:ignore
func (e *Engine) authorize(ctx context.Context, op events.Operation, req backend.AuthorizeRequest) model.AuthResult {
	start := time.Now()
	token := req.Auth.Token

	if req.Auth.IsEmpty() {
		res := model.AuthResult{Decision: model.DecisionNotAuthorized, Description: "no authentication presented", Runtime: time.Since(start)}
		e.observeAuth(op, token, res, false, "", res.Runtime)
		return res
	}
	if auth.Blacklisted(token) {
		res := model.AuthResult{Decision: model.DecisionInvalidToken, Description: "blacklisted token", Runtime: time.Since(start)}
		e.observeAuth(op, token, res, false, "", res.Runtime)
		return res
	}
	if res, ok := e.cache.Lookup(token); ok {
		res.Runtime = time.Since(start)
		e.observeAuth(op, token, res, true, string(res.ProviderID), res.Runtime)
		return res
	}
	if !e.limiter.Admit(req.Location.String()) {
		res := model.AuthResult{Decision: model.DecisionRateLimited, Description: "rate limit reached for location", Runtime: time.Since(start)}
		e.observeAuth(op, token, res, false, "", res.Runtime)
		return res
	}

	// Session affinity: a stop authorization for a session started through a
	// known backend asks that backend first.
	if op == events.OpAuthorizeStop && req.SessionID != "" {
		if sess, ok := e.sessions.Get(req.SessionID); ok && sess.StartBackendKnown() {
			if res, ok := e.authorizeAffine(ctx, op, req, sess); ok {
				return e.finishAuthorize(op, req, res, true, start)
			}
		}
	}

	if operator, ok := e.operatorFor(req.Location); ok {
		res, err := e.callAuthorize(ctx, op, operator, req)
		if err != nil {
			e.logger.Warnf("%s: operator %s failed: %v", op, operator.ID(), err)
		} else if res.Decision.Decisive() {
			return e.finishAuthorize(op, req, res, true, start)
		}
	}

	defaulted := false
	res := registry.RaceUntilAccepted(ctx, e.roaming,
		func(ctx context.Context, rp backend.RoamingProvider) (model.AuthResult, error) {
			return e.callAuthorize(ctx, op, rp, req)
		},
		func(r model.AuthResult) bool { return r.Authorized() },
		e.cfg.AuthRaceTimeout(),
		func(elapsed time.Duration) model.AuthResult {
			defaulted = true
			return model.AuthResult{
				Decision:    model.DecisionNotAuthorized,
				Description: "no provider accepted the token",
				Runtime:     elapsed,
			}
		},
		e.logger,
	)
	return e.finishAuthorize(op, req, res, !defaulted, start)
}

// authorizeAffine asks the session's recorded start backend. The second
// return value reports whether that backend produced a decisive answer.
func (e *Engine) authorizeAffine(ctx context.Context, op events.Operation, req backend.AuthorizeRequest, sess model.Session) (model.AuthResult, bool) {
	var (
		svc backend.AuthorizationService
		id  string
	)
	switch {
	case sess.OperatorStart != "":
		if operator, ok := e.providers.OperatorByID(sess.OperatorStart); ok {
			svc, id = operator, string(operator.ID())
		}
	case sess.CSORoamingProviderStart != "":
		if rp, ok := e.roaming.Get(string(sess.CSORoamingProviderStart)); ok {
			svc, id = rp, string(rp.ID())
		}
	}
	if svc == nil {
		return model.AuthResult{}, false
	}
	res, err := e.callAuthorize(ctx, op, svc, req)
	if err != nil {
		e.logger.Warnf("%s: affine backend %s failed: %v", op, id, err)
		return model.AuthResult{}, false
	}
	if !res.Decision.Decisive() {
		return model.AuthResult{}, false
	}
	return res, true
}

func (e *Engine) callAuthorize(ctx context.Context, op events.Operation, svc backend.AuthorizationService, req backend.AuthorizeRequest) (model.AuthResult, error) {
	if op == events.OpAuthorizeStop {
		return svc.AuthorizeStop(ctx, req)
	}
	return svc.AuthorizeStart(ctx, req)
}

// finishAuthorize writes the result back to the cache, records session
// lineage, and emits observability records. Only results a backend actually
// produced are cached: a verdict synthesized because no provider answered
// must not deny the token for a full TTL once providers come back.
func (e *Engine) finishAuthorize(op events.Operation, req backend.AuthorizeRequest, res model.AuthResult, fromBackend bool, start time.Time) model.AuthResult {
	if fromBackend && res.Decision != model.DecisionRateLimited {
		e.cache.Store(req.Auth.Token, res)
	}
	if res.Authorized() && req.SessionID != "" {
		switch op {
		case events.OpAuthorizeStart:
			opStart := req.Location.Operator()
			if res.RoamingProviderID != "" {
				// The roaming provider authorized; affinity binds to it, not
				// to the owning operator.
				opStart = ""
			}
			if err := e.sessions.AuthStart(model.Session{
				ID:                      req.SessionID,
				Location:                req.Location,
				StartAuth:               req.Auth,
				ProviderStart:           res.ProviderID,
				OperatorStart:           opStart,
				CSORoamingProviderStart: res.RoamingProviderID,
			}); err != nil {
				e.logger.Errorf("%s: recording session %s: %v", op, req.SessionID, err)
			}
		case events.OpAuthorizeStop:
			if err := e.sessions.AuthStop(req.SessionID, req.Auth, res.ProviderID, res.RoamingProviderID); err != nil {
				e.logger.Errorf("%s: recording session %s: %v", op, req.SessionID, err)
			}
		}
	}
	backendID := string(res.ProviderID)
	if backendID == "" {
		backendID = string(res.RoamingProviderID)
	}
	res.Runtime = time.Since(start)
	e.observeAuth(op, req.Auth.Token, res, false, backendID, res.Runtime)
	return res
}
