package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chargenet/roaming/core/events"
	"github.com/chargenet/roaming/infra/logger"
	"github.com/chargenet/roaming/internal/eventbus"
)

// Publisher is the transport the event publisher writes to.
type Publisher interface {
	Publish(topic, class string, payload []byte) error
}

// operationMessage is the wire form of one dispatched operation.
type operationMessage struct {
	Operation string `json:"operation"`
	Kind      string `json:"kind"`
	Location  string `json:"location,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Backend   string `json:"backend,omitempty"`
	RuntimeMS int64  `json:"runtime_ms"`
	Timestamp int64  `json:"timestamp"`
}

// authMessage is the wire form of one authorization decision. The token
// itself never leaves the process.
type authMessage struct {
	Operation string `json:"operation"`
	Decision  string `json:"decision"`
	Cached    bool   `json:"cached"`
	Backend   string `json:"backend,omitempty"`
	RuntimeMS int64  `json:"runtime_ms"`
	Timestamp int64  `json:"timestamp"`
}

// cdrMessage is the wire form of one CDR routing rollup.
type cdrMessage struct {
	Overall   string         `json:"overall"`
	Records   int            `json:"records"`
	Outcomes  map[string]int `json:"outcomes"`
	RuntimeMS int64          `json:"runtime_ms"`
	Timestamp int64          `json:"timestamp"`
}

// StartEventPublisher subscribes to the event bus and republishes dispatch
// events on MQTT topics under the given prefix. It stops when the context is
// canceled.
func StartEventPublisher(ctx context.Context, bus eventbus.EventBus, pub Publisher, prefix string, log logger.Logger) {
	if bus == nil || pub == nil {
		return
	}
	if prefix == "" {
		prefix = "roaming"
	}
	if log == nil {
		log = logger.New("mqtt_publisher")
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
				topic, class, payload := encodeEvent(prefix, ev)
				if payload == nil {
					continue
				}
				if err := pub.Publish(topic, class, payload); err != nil {
					log.Errorf("publish %s: %v", topic, err)
				}
			}
		}
	}()
}

func encodeEvent(prefix string, ev events.Event) (topic, class string, payload []byte) {
	now := time.Now().UnixMilli()
	class = ev.Class()
	switch e := ev.(type) {
	case events.OperationEvent:
		payload, _ = json.Marshal(operationMessage{
			Operation: string(e.Operation),
			Kind:      e.Kind.String(),
			Location:  e.Location,
			SessionID: string(e.SessionID),
			Backend:   e.Backend,
			RuntimeMS: e.Runtime.Milliseconds(),
			Timestamp: now,
		})
		return prefix + "/operations", class, payload
	case events.AuthEvent:
		payload, _ = json.Marshal(authMessage{
			Operation: string(e.Operation),
			Decision:  e.Decision.String(),
			Cached:    e.Cached,
			Backend:   e.Backend,
			RuntimeMS: e.Runtime.Milliseconds(),
			Timestamp: now,
		})
		return prefix + "/authorizations", class, payload
	case events.CDREvent:
		outcomes := make(map[string]int, len(e.Outcomes))
		for k, n := range e.Outcomes {
			outcomes[k.String()] = n
		}
		payload, _ = json.Marshal(cdrMessage{
			Overall:   e.Overall.String(),
			Records:   e.Records,
			Outcomes:  outcomes,
			RuntimeMS: e.Runtime.Milliseconds(),
			Timestamp: now,
		})
		return prefix + "/cdrs", class, payload
	default:
		return "", "", nil
	}
}
