// Package metrics defines the interfaces used to record dispatch
// observability data. Sinks like the Prometheus and InfluxDB implementations
// under infra/metrics record operation outcomes, authorization decisions and
// CDR routing rollups, and can be combined with NewMultiSink. The factory
// helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics

import (
	"time"

	"github.com/chargenet/roaming/core/model"
)

// OperationRecord represents one dispatch operation outcome to be recorded.
type OperationRecord struct {
	Operation string
	Kind      model.ResultKind
	Backend   string
	Location  string
	Runtime   time.Duration
	Time      time.Time
}

// MetricsSink records dispatch outcomes for observability purposes.
type MetricsSink interface {
	RecordOperation(recs []OperationRecord) error
}

// AuthRecord represents one authorization decision to be recorded.
type AuthRecord struct {
	Operation string
	Decision  model.AuthDecision
	Cached    bool
	Backend   string
	Runtime   time.Duration
	Time      time.Time
}

// AuthRecorder is implemented by sinks able to record authorization
// decisions.
type AuthRecorder interface {
	RecordAuthorization(recs []AuthRecord) error
}

// CDRRecord represents the rollup of one CDR routing pass.
type CDRRecord struct {
	Overall  model.CDROutcomeKind
	Outcomes map[model.CDROutcomeKind]int
	Runtime  time.Duration
	Time     time.Time
}

// CDRRecorder is implemented by sinks able to record CDR routing rollups.
type CDRRecorder interface {
	RecordCDRRouting(rec CDRRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordOperation([]OperationRecord) error { return nil }
func (NopSink) RecordAuthorization([]AuthRecord) error  { return nil }
func (NopSink) RecordCDRRouting(CDRRecord) error        { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOperation forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordOperation(recs []OperationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordOperation(recs); err != nil {
			return err
		}
	}
	return nil
}

// RecordAuthorization forwards authorization records to capable sinks.
func (m *MultiSink) RecordAuthorization(recs []AuthRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AuthRecorder); ok {
			if err := rec.RecordAuthorization(recs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordCDRRouting forwards CDR rollups to capable sinks.
func (m *MultiSink) RecordCDRRouting(rec CDRRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(CDRRecorder); ok {
			if err := r.RecordCDRRouting(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
