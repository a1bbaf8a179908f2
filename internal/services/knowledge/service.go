// Package knowledge caches each assistant's grounding documents. Only the
// active assistant's entry is guaranteed fresh; loads resolving after the
// active assistant has changed are dropped, never merged into the wrong entry.
package knowledge

import (
	"context"
	"strings"
	"sync"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/parleyhq/parley/internal/services/events"
	"github.com/rs/zerolog/log"
)

// ActiveSource reports the currently active assistant id. The directory
// implements it; the cache only ever reads.
type ActiveSource interface {
	ActiveID() string
}

type Service struct {
	mu          sync.RWMutex
	client      *backend.Service
	active      ActiveSource
	bus         *events.Bus
	byAssistant map[string][]backend.KnowledgeDocument
}

func NewService(client *backend.Service, active ActiveSource, bus *events.Bus) *Service {
	return &Service{
		client:      client,
		active:      active,
		bus:         bus,
		byAssistant: make(map[string][]backend.KnowledgeDocument),
	}
}

// LoadFor fetches and replaces the entry for the given assistant. A response
// arriving after the active assistant has changed again is discarded: the
// request carries the id it was issued for, and that id is compared against
// the current active id at resolution time.
func (s *Service) LoadFor(ctx context.Context, assistantID string) ([]backend.KnowledgeDocument, error) {
	docs, err := s.client.ListKnowledge(ctx, assistantID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if current := s.active.ActiveID(); current != assistantID {
		s.mu.Unlock()
		log.Debug().
			Str("requested_for", assistantID).
			Str("active", current).
			Msg("Dropping stale knowledge load")
		return nil, nil
	}
	s.byAssistant[assistantID] = docs
	s.mu.Unlock()

	s.bus.Publish(events.Event{Type: events.KnowledgeLoaded, AssistantID: assistantID})
	return docs, nil
}

// Add stores a new document for the assistant and appends it to the local
// entry. Title and content must be non-empty after trimming; that check never
// reaches the server.
func (s *Service) Add(ctx context.Context, assistantID, title, content string) (*backend.KnowledgeDocument, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &backend.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &backend.ValidationError{Field: "content", Reason: "must not be empty"}
	}

	doc, err := s.client.AddKnowledge(ctx, assistantID, backend.AddKnowledgeRequest{
		Title:   title,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.byAssistant[assistantID] = append(s.byAssistant[assistantID], *doc)
	s.mu.Unlock()

	s.bus.Publish(events.Event{Type: events.KnowledgeAdded, AssistantID: assistantID})
	return doc, nil
}

// Documents returns a copy of the cached entry for the assistant.
func (s *Service) Documents(assistantID string) []backend.KnowledgeDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.byAssistant[assistantID]
	out := make([]backend.KnowledgeDocument, len(docs))
	copy(out, docs)
	return out
}
