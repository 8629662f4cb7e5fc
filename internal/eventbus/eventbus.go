// Package eventbus provides the in-process fan-out bus carrying sweep
// lifecycle events to observers such as the MQTT bridge.
package eventbus

import (
	"sync"

	"github.com/ngworks1909/pulse-backend/core/events"
)

// EventBus distributes sweep events to any number of subscribers.
type EventBus interface {
	Publish(events.Event)
	Subscribe() <-chan events.Event
	Unsubscribe(<-chan events.Event)
	Close()
}

// subscriber channel buffer; slow consumers drop events rather than stall a
// sweep.
const subBuffer = 16

// Bus is the default EventBus implementation.
type Bus struct {
	mu     sync.RWMutex
	subs   map[chan events.Event]struct{}
	closed bool
}

// New creates a new Bus.
func New() *Bus {
	return &Bus{subs: make(map[chan events.Event]struct{})}
}

// Publish sends the event to all subscribers. Delivery is non-blocking: a
// subscriber whose buffer is full misses the event.
func (b *Bus) Publish(e events.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel. Subscribing
// to a closed bus yields an already-closed channel.
func (b *Bus) Subscribe() <-chan events.Event {
	ch := make(chan events.Event, subBuffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs[ch] = struct{}{}
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		if ch == sub {
			delete(b.subs, ch)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the registry.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
