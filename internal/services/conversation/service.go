// Package conversation owns the current session and transcript, and the send
// protocol that decides between starting a new session and continuing the
// existing one.
//
// The controller has two states: no session (initial, and re-entered on every
// assistant change) and an active session identified by the id the server
// returned last. The transcript always belongs to exactly one session.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/parleyhq/parley/internal/services/events"
	"github.com/rs/zerolog/log"
)

// ErrSendInFlight is returned when a send is attempted while another one is
// outstanding. Concurrent sends racing on the same session risk duplicate or
// out-of-order transcript entries, so the second one is rejected.
var ErrSendInFlight = errors.New("a send is already in flight")

// ActiveSource reports the currently active assistant id.
type ActiveSource interface {
	ActiveID() string
}

type Service struct {
	mu         sync.Mutex
	client     *backend.Service
	active     ActiveSource
	bus        *events.Bus
	sessionID  string
	transcript []backend.Message
	inFlight   bool
	epoch      uint64
}

func NewService(client *backend.Service, active ActiveSource, bus *events.Bus) *Service {
	return &Service{
		client: client,
		active: active,
		bus:    bus,
	}
}

// Reset clears the session id and transcript, and bumps the epoch so any
// response still in flight is detected as stale and dropped. Called
// synchronously whenever the active assistant changes.
func (s *Service) Reset() {
	s.mu.Lock()
	s.sessionID = ""
	s.transcript = nil
	s.epoch++
	s.mu.Unlock()

	s.bus.Publish(events.Event{Type: events.SessionReset})
}

// Send submits one user message. With no session it starts a new one; with an
// active session it continues it. The returned batch is appended to the
// transcript in server order and the session id is adopted from the response,
// the server being the source of truth for session identity.
//
// No active assistant or blank text is a no-op, not an error. A failed send
// leaves session id and transcript exactly as they were; the error propagates
// verbatim so the caller can surface it and keep the input for retry.
func (s *Service) Send(ctx context.Context, text string) (*backend.ChatResponse, error) {
	s.mu.Lock()
	assistantID := s.active.ActiveID()
	if assistantID == "" || strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return nil, nil
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSendInFlight
	}
	s.inFlight = true
	epoch := s.epoch
	sessionID := s.sessionID
	s.mu.Unlock()

	var resp *backend.ChatResponse
	var err error
	turn := backend.ChatTurn{UserMessage: text}
	if sessionID == "" {
		resp, err = s.client.StartSession(ctx, assistantID, turn)
	} else {
		resp, err = s.client.ContinueSession(ctx, assistantID, sessionID, turn)
	}

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.epoch != epoch {
		s.mu.Unlock()
		log.Debug().
			Str("requested_for", assistantID).
			Str("session_id", resp.Session.ID).
			Msg("Dropping chat response that resolved after a reset")
		return nil, nil
	}

	started := sessionID == ""
	if started {
		// A fresh session must never coexist with old messages.
		s.transcript = nil
	}
	s.sessionID = resp.Session.ID
	s.transcript = append(s.transcript, resp.Messages...)
	s.mu.Unlock()

	if started {
		s.bus.Publish(events.Event{Type: events.SessionStarted, AssistantID: assistantID, SessionID: resp.Session.ID})
	}
	s.bus.Publish(events.Event{Type: events.TranscriptAppended, AssistantID: assistantID, SessionID: resp.Session.ID})
	return resp, nil
}

// SessionID returns the current session id, or "" when no session exists.
func (s *Service) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Transcript returns a copy of the current session's messages in order.
func (s *Service) Transcript() []backend.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backend.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}
