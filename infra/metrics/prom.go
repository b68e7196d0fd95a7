package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/chargenet/roaming/core/metrics"
)

// PromSink records dispatch outcomes in Prometheus metrics.
type PromSink struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	auth       *prometheus.CounterVec
	cdr        *prometheus.CounterVec
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roaming_operations_total",
		Help: "Total number of dispatch operations by outcome",
	}, []string{"operation", "kind", "backend"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roaming_operation_duration_seconds",
		Help:    "Wall time of one dispatch operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "kind"})
	auth := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roaming_authorizations_total",
		Help: "Total number of authorization decisions",
	}, []string{"operation", "decision", "cached"})
	cdr := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roaming_cdr_outcomes_total",
		Help: "Total number of per-record charge detail record outcomes",
	}, []string{"kind"})

	if err := reg.Register(operations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			operations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(auth); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			auth = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(cdr); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			cdr = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{operations: operations, latency: latency, auth: auth, cdr: cdr}, nil
}

// RecordOperation increments the counter and observes the latency for each
// dispatched operation.
func (s *PromSink) RecordOperation(recs []coremetrics.OperationRecord) error {
	for _, r := range recs {
		s.operations.WithLabelValues(r.Operation, r.Kind.String(), r.Backend).Inc()
		s.latency.WithLabelValues(r.Operation, r.Kind.String()).Observe(r.Runtime.Seconds())
	}
	return nil
}

// RecordAuthorization increments the authorization decision counter.
func (s *PromSink) RecordAuthorization(recs []coremetrics.AuthRecord) error {
	for _, r := range recs {
		s.auth.WithLabelValues(r.Operation, r.Decision.String(), strconv.FormatBool(r.Cached)).Inc()
	}
	return nil
}

// RecordCDRRouting increments the per-record outcome counters of one routing
// pass.
func (s *PromSink) RecordCDRRouting(rec coremetrics.CDRRecord) error {
	for kind, n := range rec.Outcomes {
		s.cdr.WithLabelValues(kind.String()).Add(float64(n))
	}
	return nil
}
