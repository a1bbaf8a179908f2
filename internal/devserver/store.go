// Package devserver is an in-process implementation of the assistant backend
// contract, for local development and client tests. Storage and the reply
// generator are pluggable: Redis and OpenAI when configured, in-memory and
// canned replies otherwise.
package devserver

import (
	"context"
	"errors"
	"sync"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/parleyhq/parley/internal/infrastructure/redis"
)

// ErrNotFound is returned by stores for missing assistants and sessions.
var ErrNotFound = errors.New("not found")

// Store persists assistants, knowledge, sessions and messages.
type Store interface {
	ListAssistants(ctx context.Context) ([]backend.Assistant, error)
	GetAssistant(ctx context.Context, id string) (backend.Assistant, error)
	CreateAssistant(ctx context.Context, a backend.Assistant) error
	UpdateAssistant(ctx context.Context, a backend.Assistant) error
	DeleteAssistant(ctx context.Context, id string) error

	ListKnowledge(ctx context.Context, assistantID string) ([]backend.KnowledgeDocument, error)
	AddKnowledge(ctx context.Context, doc backend.KnowledgeDocument) error

	GetSession(ctx context.Context, id string) (backend.ConversationSession, error)
	CreateSession(ctx context.Context, session backend.ConversationSession) error
	SessionMessages(ctx context.Context, sessionID string) ([]backend.Message, error)
	AppendMessages(ctx context.Context, sessionID string, msgs []backend.Message) error
}

// NewStore picks the Redis store when a working Redis service is available
// and falls back to the in-memory store otherwise.
func NewStore(redisService *redis.Service) Store {
	if redisService != nil {
		if err := redisService.Ping(context.Background()); err == nil {
			return &RedisStore{redisService: redisService}
		}
	}
	return NewMemoryStore()
}

type MemoryStore struct {
	mu         sync.RWMutex
	order      []string
	assistants map[string]backend.Assistant
	knowledge  map[string][]backend.KnowledgeDocument
	sessions   map[string]backend.ConversationSession
	messages   map[string][]backend.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assistants: make(map[string]backend.Assistant),
		knowledge:  make(map[string][]backend.KnowledgeDocument),
		sessions:   make(map[string]backend.ConversationSession),
		messages:   make(map[string][]backend.Message),
	}
}

func (m *MemoryStore) ListAssistants(ctx context.Context) ([]backend.Assistant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]backend.Assistant, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.assistants[id])
	}
	return out, nil
}

func (m *MemoryStore) GetAssistant(ctx context.Context, id string) (backend.Assistant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assistants[id]
	if !ok {
		return backend.Assistant{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryStore) CreateAssistant(ctx context.Context, a backend.Assistant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assistants[a.ID] = a
	m.order = append(m.order, a.ID)
	return nil
}

func (m *MemoryStore) UpdateAssistant(ctx context.Context, a backend.Assistant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assistants[a.ID]; !ok {
		return ErrNotFound
	}
	m.assistants[a.ID] = a
	return nil
}

func (m *MemoryStore) DeleteAssistant(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assistants[id]; !ok {
		return ErrNotFound
	}
	delete(m.assistants, id)
	delete(m.knowledge, id)
	for sid, session := range m.sessions {
		if session.AssistantID == id {
			delete(m.sessions, sid)
			delete(m.messages, sid)
		}
	}
	kept := m.order[:0]
	for _, existing := range m.order {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	m.order = kept
	return nil
}

func (m *MemoryStore) ListKnowledge(ctx context.Context, assistantID string) ([]backend.KnowledgeDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.knowledge[assistantID]
	out := make([]backend.KnowledgeDocument, len(docs))
	copy(out, docs)
	return out, nil
}

func (m *MemoryStore) AddKnowledge(ctx context.Context, doc backend.KnowledgeDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.knowledge[doc.AssistantID] = append(m.knowledge[doc.AssistantID], doc)
	return nil
}

func (m *MemoryStore) GetSession(ctx context.Context, id string) (backend.ConversationSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return backend.ConversationSession{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) CreateSession(ctx context.Context, session backend.ConversationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *MemoryStore) SessionMessages(ctx context.Context, sessionID string) ([]backend.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[sessionID]
	out := make([]backend.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *MemoryStore) AppendMessages(ctx context.Context, sessionID string, msgs []backend.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[sessionID] = append(m.messages[sessionID], msgs...)
	return nil
}
