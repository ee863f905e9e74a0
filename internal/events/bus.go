package events

import "sync"

// Handler consumes a published event.
type Handler func(data EventData)

// Bus is a minimal synchronous publish/subscribe hub. Handlers run on the
// publisher's goroutine; subscribers must not block.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers data to every handler registered for its event type.
func (b *Bus) Publish(data EventData) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := b.handlers[data.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(data)
	}
}
