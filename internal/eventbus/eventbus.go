// Package eventbus fans dispatch events out to in-process observers such as
// the metrics collector and the MQTT publisher.
package eventbus

import (
	"sync"

	"github.com/chargenet/roaming/core/events"
)

// subscriberBuffer bounds how far a subscriber may fall behind before it
// starts losing events.
const subscriberBuffer = 8

// EventBus decouples the dispatch pipeline from its observers. Publishing
// never blocks: a subscriber that cannot keep up loses events rather than
// stalling an operation.
type EventBus interface {
	Publish(events.Event)
	Subscribe() <-chan events.Event
	Unsubscribe(<-chan events.Event)
	Close()
}

// Bus is the default EventBus implementation.
type Bus struct {
	mu     sync.RWMutex
	subs   map[<-chan events.Event]chan events.Event
	closed bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[<-chan events.Event]chan events.Event)}
}

// Publish delivers the event to every subscriber whose buffer has room.
func (b *Bus) Publish(e events.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel. Subscribing
// to a closed bus returns an already closed channel.
func (b *Bus) Subscribe() <-chan events.Event {
	ch := make(chan events.Event, subscriberBuffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs[ch] = ch
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[sub]
	if !ok {
		return
	}
	delete(b.subs, sub)
	if !b.closed {
		close(ch)
	}
}

// Close closes every subscriber channel and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
