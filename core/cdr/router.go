// Package cdr routes inbound charge detail records to the single backend
// entitled to bill them. Each record runs through a cascade of identity
// strategies; resolved records are dispatched in per-target batches and all
// per-record outcomes are merged into one closed result: every input record
// produces exactly one outcome, whatever happens to its target.
package cdr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/directory"
	"github.com/chargenet/roaming/core/events"
	"github.com/chargenet/roaming/core/logger"
	"github.com/chargenet/roaming/core/metrics"
	"github.com/chargenet/roaming/core/model"
	"github.com/chargenet/roaming/core/registry"
	"github.com/chargenet/roaming/internal/eventbus"
)

// FilterFunc marks records to exclude from delivery. Filtered records are
// reported as a distinct outcome, not as an error.
type FilterFunc func(model.ChargeDetailRecord) bool

// Router resolves the downstream target for each charge detail record and
// dispatches per-target batches.
type Router struct {
	providers *directory.ProviderIndex
	roaming   *registry.PriorityRegistry[backend.RoamingProvider]
	sessions  directory.SessionDirectory
	observers *registry.PriorityRegistry[backend.CDRReceiver]
	filter    FilterFunc
	logger    logger.Logger
	metrics   metrics.MetricsSink
	bus       eventbus.EventBus
}

// NewRouter creates a CDR router. filter, sink and bus may be nil.
func NewRouter(
	providers *directory.ProviderIndex,
	roaming *registry.PriorityRegistry[backend.RoamingProvider],
	sessions directory.SessionDirectory,
	filter FilterFunc,
	sink metrics.MetricsSink,
	bus eventbus.EventBus,
	log logger.Logger,
) (*Router, error) {
	if providers == nil || roaming == nil || sessions == nil || log == nil {
		return nil, fmt.Errorf("cdr: nil parameter provided to NewRouter")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Router{
		providers: providers,
		roaming:   roaming,
		sessions:  sessions,
		observers: registry.New[backend.CDRReceiver](),
		filter:    filter,
		logger:    log,
		metrics:   sink,
		bus:       bus,
	}, nil
}

// Observers exposes the registry of passive CDR observers. Every inbound
// batch is broadcast to them concurrently, outcomes ignored.
func (r *Router) Observers() *registry.PriorityRegistry[backend.CDRReceiver] {
	return r.observers
}

// target pairs a resolved receiver with the records routed to it.
type target struct {
	receiver backend.CDRReceiver
	name     string
	indices  []int
}

// Route resolves, dispatches and aggregates one batch of charge detail
// records. The returned result holds exactly one outcome per input record,
// in input order.
func (r *Router) Route(ctx context.Context, cdrs []model.ChargeDetailRecord) model.CDRBatchResult {
	start := time.Now()
	if len(cdrs) == 0 {
		return r.finish(model.CDRBatchResult{Overall: model.CDRForwarded}, start)
	}

	outcomes := make([]model.CDROutcome, len(cdrs))
	targets := make(map[string]*target)
	for i, c := range cdrs {
		recv, name, kind := r.resolve(ctx, c)
		if recv == nil {
			outcomes[i] = model.CDROutcome{CDRID: c.ID, SessionID: c.SessionID, Kind: kind}
			continue
		}
		t, ok := targets[name]
		if !ok {
			t = &target{receiver: recv, name: name}
			targets[name] = t
		}
		t.indices = append(t.indices, i)
	}

	r.dispatch(ctx, cdrs, targets, outcomes)
	r.broadcast(ctx, cdrs)

	res := model.CDRBatchResult{Outcomes: outcomes}
	res.Overall = rollup(outcomes)
	for i, o := range outcomes {
		if o.Kind == model.CDRForwarded && o.SessionID != "" && r.sessions.Exists(o.SessionID) {
			if err := r.sessions.CDRReceived(o.SessionID, cdrs[i]); err != nil {
				r.logger.Errorf("cdr: recording receipt for session %s: %v", o.SessionID, err)
			}
		}
	}
	return r.finish(res, start)
}

// dispatch sends each target's group and fills the outcome slots. A target
// failing outright yields a synthesized error outcome per record so that no
// record is silently lost.
func (r *Router) dispatch(ctx context.Context, cdrs []model.ChargeDetailRecord, targets map[string]*target, outcomes []model.CDROutcome) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, t := range targets {
		wg.Add(1)
		go func(t *target) {
			defer wg.Done()
			group := make([]model.ChargeDetailRecord, len(t.indices))
			for gi, i := range t.indices {
				group[gi] = cdrs[i]
			}
			got, err := t.receiver.SendChargeDetailRecords(ctx, group)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warnf("cdr: target %s failed: %v", t.name, err)
				for _, i := range t.indices {
					outcomes[i] = model.CDROutcome{
						CDRID:       cdrs[i].ID,
						SessionID:   cdrs[i].SessionID,
						Kind:        model.CDRError,
						Target:      t.name,
						Description: err.Error(),
					}
				}
				return
			}
			byID := make(map[model.CDRID]model.CDROutcome, len(got))
			for _, o := range got {
				byID[o.CDRID] = o
			}
			for _, i := range t.indices {
				if o, ok := byID[cdrs[i].ID]; ok {
					o.Target = t.name
					outcomes[i] = o
					continue
				}
				// The target answered but skipped this record.
				outcomes[i] = model.CDROutcome{
					CDRID:       cdrs[i].ID,
					SessionID:   cdrs[i].SessionID,
					Kind:        model.CDRError,
					Target:      t.name,
					Description: "target produced no outcome for record",
				}
			}
		}(t)
	}
	wg.Wait()
}

// broadcast fans the full batch out to the passive observers.
func (r *Router) broadcast(ctx context.Context, cdrs []model.ChargeDetailRecord) {
	if r.observers.Len() == 0 {
		return
	}
	results := registry.FanOutCollect(ctx, r.observers, func(ctx context.Context, o backend.CDRReceiver) ([]model.CDROutcome, error) {
		return o.SendChargeDetailRecords(ctx, cdrs)
	})
	for _, res := range results {
		if res.Err != nil {
			r.logger.Warnf("cdr: observer %s failed: %v", res.Entry.ID, res.Err)
		}
	}
}

// resolve runs the identity cascade for one record; first match wins.
func (r *Router) resolve(ctx context.Context, c model.ChargeDetailRecord) (backend.CDRReceiver, string, model.CDROutcomeKind) {
	// 1. External pre-filter.
	if r.filter != nil && r.filter(c) {
		return nil, "", model.CDRFiltered
	}
	// 2. Start or stop e-mobility provider recorded on the record.
	for _, pid := range []model.ProviderID{c.ProviderIDStart, c.ProviderIDStop} {
		if pid == "" {
			continue
		}
		if emp, ok := r.providers.ProviderByID(pid); ok {
			return emp, string(pid), model.CDRForwarded
		}
	}
	// 3. Roaming provider recorded on the record.
	for _, rid := range []model.RoamingProviderID{c.RoamingProviderIDStart, c.RoamingProviderIDStop} {
		if rid == "" {
			continue
		}
		if rp, ok := r.roaming.Get(string(rid)); ok {
			return rp, string(rid), model.CDRForwarded
		}
	}
	// 4. Session lineage.
	if c.SessionID != "" {
		if sess, ok := r.sessions.Get(c.SessionID); ok && sess.CSORoamingProviderStart != "" {
			if rp, ok := r.roaming.Get(string(sess.CSORoamingProviderStart)); ok {
				return rp, string(sess.CSORoamingProviderStart), model.CDRForwarded
			}
		}
	}
	// 5. Identity-based resolution: the first provider that accepts one of
	// the record's authentication identities claims it.
	if recv, name := r.resolveByIdentity(ctx, c); recv != nil {
		return recv, name, model.CDRForwarded
	}
	// 6. Terminal: nothing recognized the record.
	return nil, "", model.CDRUnknownSession
}

// resolveByIdentity tries each registered e-mobility provider against the
// record's start and stop authentications, one identity method at a time in
// cascade order.
func (r *Router) resolveByIdentity(ctx context.Context, c model.ChargeDetailRecord) (backend.CDRReceiver, string) {
	for _, emp := range r.providers.Providers() {
		for _, a := range []model.LocalAuthentication{c.StartAuth, c.StopAuth} {
			for _, method := range a.Methods() {
				res, err := emp.AuthorizeStart(ctx, backend.AuthorizeRequest{
					Auth:     isolateMethod(a, method),
					Location: c.Location,
				})
				if err != nil {
					r.logger.Debugf("cdr: identity probe at %s failed: %v", emp.ID(), err)
					continue
				}
				if res.Authorized() {
					return emp, string(emp.ID())
				}
			}
		}
	}
	return nil, ""
}

// isolateMethod reduces an authentication to a single identity method.
func isolateMethod(a model.LocalAuthentication, m model.AuthMethod) model.LocalAuthentication {
	switch m {
	case model.AuthMethodToken:
		return model.LocalAuthentication{Token: a.Token}
	case model.AuthMethodQRCode:
		return model.LocalAuthentication{QRCodeID: a.QRCodeID}
	case model.AuthMethodPlugAndCharge:
		return model.LocalAuthentication{PnCID: a.PnCID}
	case model.AuthMethodRemote:
		return model.LocalAuthentication{RemoteID: a.RemoteID}
	case model.AuthMethodPublicKey:
		return model.LocalAuthentication{PublicKey: a.PublicKey}
	default:
		return a
	}
}

// finish attaches timing and emits observability records.
func (r *Router) finish(res model.CDRBatchResult, start time.Time) model.CDRBatchResult {
	res.Runtime = time.Since(start)
	counts := make(map[model.CDROutcomeKind]int)
	for _, o := range res.Outcomes {
		counts[o.Kind]++
	}
	if rec, ok := r.metrics.(metrics.CDRRecorder); ok {
		if err := rec.RecordCDRRouting(metrics.CDRRecord{
			Overall:  res.Overall,
			Outcomes: counts,
			Runtime:  res.Runtime,
			Time:     time.Now(),
		}); err != nil {
			r.logger.Errorf("cdr: metrics: %v", err)
		}
	}
	if r.bus != nil {
		r.bus.Publish(events.CDREvent{
			Overall:  res.Overall,
			Records:  len(res.Outcomes),
			Outcomes: counts,
			Runtime:  res.Runtime,
		})
	}
	return res
}
