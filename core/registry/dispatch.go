package registry

import (
	"context"
	"sync"
	"time"

	"github.com/chargenet/roaming/core/logger"
)

// FanOutResult holds the outcome of one handle's work call.
type FanOutResult[T, U any] struct {
	Entry Entry[T]
	Value U
	Err   error
}

// FanOutCollect invokes work against every registered handle concurrently and
// returns the full collection of results in priority order. A failing call is
// reported in its slot and does not cancel sibling calls.
func FanOutCollect[T, U any](ctx context.Context, r *PriorityRegistry[T], work func(context.Context, T) (U, error)) []FanOutResult[T, U] {
	entries := r.Snapshot()
	results := make([]FanOutResult[T, U], len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, e Entry[T]) {
			defer wg.Done()
			v, err := work(ctx, e.Handle)
			results[i] = FanOutResult[T, U]{Entry: e, Value: v, Err: err}
		}(i, e)
	}
	wg.Wait()
	return results
}

// RaceUntilAccepted iterates the handles sequentially in priority order and
// returns the first result accept approves of. Backend calls may have side
// effects, so handles are never raced concurrently. Per-handle errors are
// logged and skipped. When the iteration completes, the timeout elapses, or
// the context is canceled without an accepted result, onDefault is invoked
// with the elapsed wall time. RaceUntilAccepted never returns an error.
func RaceUntilAccepted[T, U any](
	ctx context.Context,
	r *PriorityRegistry[T],
	work func(context.Context, T) (U, error),
	accept func(U) bool,
	timeout time.Duration,
	onDefault func(elapsed time.Duration) U,
	log logger.Logger,
) U {
	start := time.Now()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	for _, e := range r.Snapshot() {
		if ctx.Err() != nil {
			break
		}
		v, err := work(ctx, e.Handle)
		if err != nil {
			if log != nil {
				log.Warnf("race: handle %s failed: %v", e.ID, err)
			}
			continue
		}
		if accept(v) {
			return v
		}
	}
	return onDefault(time.Since(start))
}
