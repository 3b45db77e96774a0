// Package events provides a lightweight pub/sub event bus for interview observability.
//
// Events are delivered in publish order by a single dispatcher goroutine, so a
// listener never sees state.changed for a turn before the turn.completed that
// preceded it. Publish never blocks the caller: when the queue is full the
// event is dropped and counted.
package events

import (
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the dispatcher queue depth used by NewEventBus.
const DefaultQueueSize = 256

// Listener is a function that handles events.
type Listener func(*Event)

// EventBus manages event distribution to listeners.
type EventBus struct {
	mu              sync.RWMutex
	listeners       map[EventType][]Listener
	globalListeners []Listener

	queue     chan *Event
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Uint64
}

// NewEventBus creates a new event bus with the default queue size.
func NewEventBus() *EventBus {
	return NewEventBusWithQueue(DefaultQueueSize)
}

// NewEventBusWithQueue creates an event bus whose dispatcher buffers up to size events.
func NewEventBusWithQueue(size int) *EventBus {
	if size <= 0 {
		size = DefaultQueueSize
	}
	eb := &EventBus{
		listeners: make(map[EventType][]Listener),
		queue:     make(chan *Event, size),
		done:      make(chan struct{}),
	}
	go eb.dispatch()
	return eb
}

// Subscribe registers a listener for a specific event type.
func (eb *EventBus) Subscribe(eventType EventType, listener Listener) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.listeners[eventType] = append(eb.listeners[eventType], listener)
}

// SubscribeAll registers a listener for all event types.
func (eb *EventBus) SubscribeAll(listener Listener) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.globalListeners = append(eb.globalListeners, listener)
}

// Publish queues an event for delivery. It is a no-op after Close.
func (eb *EventBus) Publish(event *Event) {
	if eb == nil || event == nil || eb.closed.Load() {
		return
	}
	select {
	case eb.queue <- event:
	case <-eb.done:
	default:
		eb.dropped.Add(1)
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (eb *EventBus) Dropped() uint64 {
	return eb.dropped.Load()
}

// Close stops the dispatcher. Events still queued are discarded.
func (eb *EventBus) Close() {
	eb.closeOnce.Do(func() {
		eb.closed.Store(true)
		close(eb.done)
	})
}

func (eb *EventBus) dispatch() {
	for {
		select {
		case <-eb.done:
			return
		case event := <-eb.queue:
			eb.deliver(event)
		}
	}
}

func (eb *EventBus) deliver(event *Event) {
	eb.mu.RLock()
	specific := append([]Listener(nil), eb.listeners[event.Type]...)
	global := append([]Listener(nil), eb.globalListeners...)
	eb.mu.RUnlock()

	for _, listener := range specific {
		safeInvoke(listener, event)
	}
	for _, listener := range global {
		safeInvoke(listener, event)
	}
}

func safeInvoke(listener Listener, event *Event) {
	defer func() { _ = recover() }()
	listener(event)
}
