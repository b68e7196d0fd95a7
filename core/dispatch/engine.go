// Package dispatch implements the five charging operations against a
// dynamically registered set of backends: reserve, cancel-reservation,
// remote-start, remote-stop and authorize-start/stop. Every operation follows
// the same shape: resolve a directly addressable backend from the request,
// fall back across the roaming-provider registry in priority order when the
// direct backend is absent or does not know the location, and synthesize a
// terminal failure only when every avenue is exhausted.
package dispatch

import (
	"fmt"
	"time"

	"github.com/chargenet/roaming/core/auth"
	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/cdr"
	"github.com/chargenet/roaming/core/directory"
	"github.com/chargenet/roaming/core/events"
	"github.com/chargenet/roaming/core/logger"
	"github.com/chargenet/roaming/core/metrics"
	"github.com/chargenet/roaming/core/model"
	"github.com/chargenet/roaming/core/monitoring"
	"github.com/chargenet/roaming/core/registry"
	"github.com/chargenet/roaming/internal/eventbus"
)

// Engine dispatches charging operations to operators and roaming providers.
type Engine struct {
	cfg          Config
	providers    *directory.ProviderIndex
	roaming      *registry.PriorityRegistry[backend.RoamingProvider]
	reservations directory.ReservationDirectory
	sessions     directory.SessionDirectory
	cache        *auth.TokenCache
	limiter      *auth.RateLimiter
	router       *cdr.Router
	latency      *monitoring.LatencyTracker
	logger       logger.Logger
	metrics      metrics.MetricsSink
	bus          eventbus.EventBus
}

// NewEngine creates a dispatch engine. The roaming registry must use base
// priority 10; construct it with NewRoamingRegistry. A nil sink, bus or
// router disables the respective wiring.
func NewEngine(
	cfg Config,
	providers *directory.ProviderIndex,
	roaming *registry.PriorityRegistry[backend.RoamingProvider],
	reservations directory.ReservationDirectory,
	sessions directory.SessionDirectory,
	router *cdr.Router,
	sink metrics.MetricsSink,
	bus eventbus.EventBus,
	log logger.Logger,
) (*Engine, error) {
	if providers == nil || roaming == nil || reservations == nil || sessions == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewEngine")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{
		cfg:          cfg,
		providers:    providers,
		roaming:      roaming,
		reservations: reservations,
		sessions:     sessions,
		cache:        auth.NewTokenCache(cfg.Auth),
		limiter:      auth.NewRateLimiter(cfg.Auth),
		router:       router,
		latency:      monitoring.NewLatencyTracker(),
		logger:       log,
		metrics:      sink,
		bus:          bus,
	}, nil
}

// NewRoamingRegistry creates the priority registry roaming providers are
// registered in. Sequencing starts at 10 to leave headroom for manual
// overrides below the automatically assigned range.
func NewRoamingRegistry() *registry.PriorityRegistry[backend.RoamingProvider] {
	return registry.New[backend.RoamingProvider](registry.WithBasePriority(10))
}

// Roaming exposes the roaming-provider registry for registration.
func (e *Engine) Roaming() *registry.PriorityRegistry[backend.RoamingProvider] {
	return e.roaming
}

// Latency exposes the per-operation latency tracker.
func (e *Engine) Latency() *monitoring.LatencyTracker { return e.latency }

// operatorFor resolves the directly addressable operator for a location.
func (e *Engine) operatorFor(loc model.ChargingLocation) (backend.Operator, bool) {
	id := loc.Operator()
	if id == "" {
		return nil, false
	}
	return e.providers.OperatorByID(id)
}

// roamingSnapshot returns the fallback chain in priority order, skipping the
// provider with the given id when already attempted.
func (e *Engine) roamingSnapshot(skip model.RoamingProviderID) []registry.Entry[backend.RoamingProvider] {
	entries := e.roaming.Snapshot()
	if skip == "" {
		return entries
	}
	out := entries[:0]
	for _, en := range entries {
		if en.ID != string(skip) {
			out = append(out, en)
		}
	}
	return out
}

// observe records one operation outcome across the latency tracker, the
// metrics sink and the event bus.
func (e *Engine) observe(op events.Operation, kind model.ResultKind, location string, sessionID model.SessionID, backendID string, runtime time.Duration) {
	e.latency.Record(string(op), runtime)
	if err := e.metrics.RecordOperation([]metrics.OperationRecord{{
		Operation: string(op),
		Kind:      kind,
		Backend:   backendID,
		Location:  location,
		Runtime:   runtime,
		Time:      time.Now(),
	}}); err != nil {
		e.logger.Errorf("metrics: %v", err)
	}
	if e.bus != nil {
		e.bus.Publish(events.OperationEvent{
			Operation: op,
			Kind:      kind,
			Location:  location,
			SessionID: sessionID,
			Backend:   backendID,
			Runtime:   runtime,
		})
	}
}

// observeAuth records one authorization outcome.
func (e *Engine) observeAuth(op events.Operation, token model.AuthToken, res model.AuthResult, cached bool, backendID string, runtime time.Duration) {
	e.latency.Record(string(op), runtime)
	if rec, ok := e.metrics.(metrics.AuthRecorder); ok {
		if err := rec.RecordAuthorization([]metrics.AuthRecord{{
			Operation: string(op),
			Decision:  res.Decision,
			Cached:    cached,
			Backend:   backendID,
			Runtime:   runtime,
			Time:      time.Now(),
		}}); err != nil {
			e.logger.Errorf("metrics: %v", err)
		}
	}
	if e.bus != nil {
		e.bus.Publish(events.AuthEvent{
			Operation: op,
			Token:     token,
			Decision:  res.Decision,
			Cached:    cached,
			Backend:   backendID,
			Runtime:   runtime,
		})
	}
}

// unknownKind picks the terminal failure kind for an unresolvable location.
func unknownKind(loc model.ChargingLocation) model.ResultKind {
	if loc.Operator() == "" {
		return model.KindUnknownLocation
	}
	return model.KindUnknownOperator
}
