// Package monitoring tracks per-operation dispatch runtimes and derives
// latency quantiles from a bounded sample window.
package monitoring

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// maxSamples bounds the per-operation sample window.
const maxSamples = 1024

// Quantiles summarizes the recent latency distribution of one operation.
type Quantiles struct {
	P50     time.Duration
	P95     time.Duration
	P99     time.Duration
	Samples int
}

// LatencyTracker records operation runtimes and computes quantiles over the
// most recent samples.
type LatencyTracker struct {
	mu      sync.Mutex
	samples map[string][]float64
}

// NewLatencyTracker creates an empty tracker.
func NewLatencyTracker() *LatencyTracker {
	return &LatencyTracker{samples: make(map[string][]float64)}
}

// Record adds one runtime sample for the operation, evicting the oldest
// sample once the window is full.
func (t *LatencyTracker) Record(op string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := append(t.samples[op], d.Seconds())
	if len(s) > maxSamples {
		s = s[len(s)-maxSamples:]
	}
	t.samples[op] = s
}

// Snapshot returns the quantile summary for the operation.
func (t *LatencyTracker) Snapshot(op string) Quantiles {
	t.mu.Lock()
	s := append([]float64(nil), t.samples[op]...)
	t.mu.Unlock()
	if len(s) == 0 {
		return Quantiles{}
	}
	sort.Float64s(s)
	q := func(p float64) time.Duration {
		return time.Duration(stat.Quantile(p, stat.Empirical, s, nil) * float64(time.Second))
	}
	return Quantiles{P50: q(0.5), P95: q(0.95), P99: q(0.99), Samples: len(s)}
}

// Operations returns the names of all operations with recorded samples.
func (t *LatencyTracker) Operations() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ops := make([]string, 0, len(t.samples))
	for op := range t.samples {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
