package metrics

import (
	"context"

	"github.com/chargenet/roaming/core/events"
	coremetrics "github.com/chargenet/roaming/core/metrics"
	"github.com/chargenet/roaming/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// dispatch events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.OperationEvent:
					_ = sink.RecordOperation([]coremetrics.OperationRecord{{
						Operation: string(e.Operation),
						Kind:      e.Kind,
						Backend:   e.Backend,
						Location:  e.Location,
						Runtime:   e.Runtime,
					}})
				case events.AuthEvent:
					if r, ok := sink.(coremetrics.AuthRecorder); ok {
						_ = r.RecordAuthorization([]coremetrics.AuthRecord{{
							Operation: string(e.Operation),
							Decision:  e.Decision,
							Cached:    e.Cached,
							Backend:   e.Backend,
							Runtime:   e.Runtime,
						}})
					}
				case events.CDREvent:
					if r, ok := sink.(coremetrics.CDRRecorder); ok {
						_ = r.RecordCDRRouting(coremetrics.CDRRecord{
							Overall:  e.Overall,
							Outcomes: e.Outcomes,
							Runtime:  e.Runtime,
						})
					}
				}
			}
		}
	}()
}
