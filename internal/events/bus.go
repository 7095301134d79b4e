package events

import (
	"sync"
	"sync/atomic"
)

// Event is a generic type placeholder for any event type
type Event any

// Subscriber is a channel that transports events of type T
type Subscriber[T Event] chan T

// DefaultBuffer is the capacity of a subscriber channel
const DefaultBuffer = 100

type EventBus[T Event] struct {
	subscribers map[Subscriber[T]]struct{}
	mutex       sync.RWMutex
	dropped     atomic.Uint64
}

func NewEventBus[T Event]() *EventBus[T] {
	return &EventBus[T]{
		subscribers: make(map[Subscriber[T]]struct{}),
	}
}

func (bus *EventBus[T]) Subscribe() Subscriber[T] {
	return bus.SubscribeBuffered(DefaultBuffer)
}

// SubscribeBuffered registers a subscriber whose channel holds up to size
// undelivered events
func (bus *EventBus[T]) SubscribeBuffered(size int) Subscriber[T] {
	ch := make(Subscriber[T], size)
	bus.mutex.Lock()
	bus.subscribers[ch] = struct{}{}
	bus.mutex.Unlock()
	return ch
}

// Unsubscribe removes ch and closes it. Unknown channels are ignored.
func (bus *EventBus[T]) Unsubscribe(ch Subscriber[T]) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	if _, ok := bus.subscribers[ch]; !ok {
		return
	}
	delete(bus.subscribers, ch)
	close(ch)
}

// Publish broadcasts an event of type T to all registered subscribers.
// A subscriber with a full buffer misses the event. A nil bus drops it.
func (bus *EventBus[T]) Publish(event T) {
	if bus == nil {
		return
	}
	bus.mutex.RLock()
	defer bus.mutex.RUnlock()
	for subscriber := range bus.subscribers {
		select {
		case subscriber <- event:
		default:
			bus.dropped.Add(1)
		}
	}
}

// Len returns the number of subscribers
func (bus *EventBus[T]) Len() int {
	bus.mutex.RLock()
	defer bus.mutex.RUnlock()
	return len(bus.subscribers)
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (bus *EventBus[T]) Dropped() uint64 {
	return bus.dropped.Load()
}
