package telemetry

import "sync"

// Listener reacts to incoming events.
type Listener func(Event)

type typedListener struct {
	handle   int
	callback Listener
}

// EventBus is a synchronous publish/subscribe fan-out with type filtering.
// Wrap it in an AsyncSink before handing it to the AI.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]typedListener
	nextHandle     int
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]typedListener),
	}
}

// Subscribe registers a listener for all events and returns its handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for one event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback Listener) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], typedListener{handle: handle, callback: callback})
	return handle
}

// Unsubscribe removes the listener identified by handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to every matching listener synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.callback(event)
	}
}

// Notify implements Sink.
func (bus *EventBus) Notify(event Event) {
	bus.Publish(event)
}
