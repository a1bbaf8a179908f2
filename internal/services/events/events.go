// Package events carries state-change notifications out of the core services.
// The services publish; the rendering boundary (CLI, tests) subscribes. The
// bus is synchronous: a handler runs before the publishing call returns.
package events

import "sync"

type Type string

const (
	AssistantsRefreshed Type = "assistants.refreshed"
	AssistantActivated  Type = "assistant.activated"
	SelectionCleared    Type = "selection.cleared"
	KnowledgeLoaded     Type = "knowledge.loaded"
	KnowledgeAdded      Type = "knowledge.added"
	SessionStarted      Type = "session.started"
	SessionReset        Type = "session.reset"
	TranscriptAppended  Type = "transcript.appended"
)

// Event identifies what changed and which assistant/session it concerns.
type Event struct {
	Type        Type
	AssistantID string
	SessionID   string
}

type Handler func(Event)

type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all future events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers the event to every subscriber in registration order.
// Safe to call on a nil bus, so services work without one.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
