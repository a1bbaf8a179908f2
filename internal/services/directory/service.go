// Package directory owns the set of known assistants and the active
// selection. It is the only writer of the active id; the knowledge cache and
// the conversation controller read it through ActiveID.
package directory

import (
	"context"
	"sync"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/parleyhq/parley/internal/services/events"
	"github.com/rs/zerolog/log"
)

type Service struct {
	mu         sync.RWMutex
	client     *backend.Service
	bus        *events.Bus
	assistants []backend.Assistant
	activeID   string
	onActivate []func(assistantID string)
}

func NewService(client *backend.Service, bus *events.Bus) *Service {
	return &Service{
		client: client,
		bus:    bus,
	}
}

// OnActivationChange registers a hook fired whenever the active assistant
// changes, with the new active id (empty when the selection is cleared).
// Hooks run synchronously, before any later response for the previous
// assistant can be applied.
func (s *Service) OnActivationChange(fn func(assistantID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onActivate = append(s.onActivate, fn)
}

// Refresh fetches the full assistant list, replaces the local sequence in
// server order, and reconciles the active selection:
//   - nothing active and the list is non-empty: activate the first entry
//   - the active id is still present: keep it, now backed by the fresh record
//   - the active id is gone (deleted): clear the selection
func (s *Service) Refresh(ctx context.Context) error {
	assistants, err := s.client.ListAssistants(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.assistants = assistants

	previous := s.activeID
	switch {
	case s.activeID == "" && len(assistants) > 0:
		s.activeID = assistants[0].ID
	case s.activeID != "":
		if _, found := lookup(assistants, s.activeID); !found {
			s.activeID = ""
		}
	}
	current := s.activeID
	hooks := s.hooksLocked()
	s.mu.Unlock()

	s.bus.Publish(events.Event{Type: events.AssistantsRefreshed})
	if current != previous {
		s.fireActivation(hooks, current)
	}
	return nil
}

// Activate sets the active assistant directly, on explicit selection or right
// after creation. An assistant not yet in the list (a freshly created one) is
// prepended so the selection never points outside the sequence.
func (s *Service) Activate(assistant backend.Assistant) {
	s.mu.Lock()
	if _, found := lookup(s.assistants, assistant.ID); !found {
		s.assistants = append([]backend.Assistant{assistant}, s.assistants...)
	}
	changed := s.activeID != assistant.ID
	s.activeID = assistant.ID
	hooks := s.hooksLocked()
	s.mu.Unlock()

	if changed {
		log.Debug().Str("assistant_id", assistant.ID).Msg("Active assistant changed")
		s.fireActivation(hooks, assistant.ID)
	}
}

// Remove deletes the assistant and refreshes so the selection re-reconciles.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.client.DeleteAssistant(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Assistants returns a copy of the current sequence, in server order.
func (s *Service) Assistants() []backend.Assistant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]backend.Assistant, len(s.assistants))
	copy(out, s.assistants)
	return out
}

// ActiveID returns the id of the active assistant, or "" when none is.
func (s *Service) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns the active assistant's record, if any.
func (s *Service) Active() (backend.Assistant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return backend.Assistant{}, false
	}
	return lookup(s.assistants, s.activeID)
}

func (s *Service) hooksLocked() []func(string) {
	hooks := make([]func(string), len(s.onActivate))
	copy(hooks, s.onActivate)
	return hooks
}

func (s *Service) fireActivation(hooks []func(string), assistantID string) {
	for _, fn := range hooks {
		fn(assistantID)
	}
	if assistantID == "" {
		s.bus.Publish(events.Event{Type: events.SelectionCleared})
		return
	}
	s.bus.Publish(events.Event{Type: events.AssistantActivated, AssistantID: assistantID})
}

func lookup(assistants []backend.Assistant, id string) (backend.Assistant, bool) {
	for _, a := range assistants {
		if a.ID == id {
			return a, true
		}
	}
	return backend.Assistant{}, false
}
