package devserver

import (
	"context"
	"encoding/json"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/parleyhq/parley/internal/infrastructure/redis"
)

const (
	keyAssistantIndex  = "parley:assistants"
	keyAssistantPrefix = "parley:assistant:"
	keyKnowledgePrefix = "parley:knowledge:"
	keySessionPrefix   = "parley:session:"
	keySessionIndex    = "parley:sessions:" // per-assistant session id list
	keyMessagesPrefix  = "parley:messages:"
)

// RedisStore keeps records as JSON values; the assistant index and the
// per-assistant and per-session collections are Redis lists, which preserve
// server order.
type RedisStore struct {
	redisService *redis.Service
}

func (rs *RedisStore) ListAssistants(ctx context.Context) ([]backend.Assistant, error) {
	ids, err := rs.redisService.LRange(ctx, keyAssistantIndex)
	if err != nil {
		return nil, err
	}

	out := make([]backend.Assistant, 0, len(ids))
	for _, id := range ids {
		a, err := rs.GetAssistant(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (rs *RedisStore) GetAssistant(ctx context.Context, id string) (backend.Assistant, error) {
	data, err := rs.redisService.Get(ctx, keyAssistantPrefix+id)
	if err != nil {
		return backend.Assistant{}, err
	}
	if data == "" {
		return backend.Assistant{}, ErrNotFound
	}

	var a backend.Assistant
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return backend.Assistant{}, err
	}
	return a, nil
}

func (rs *RedisStore) CreateAssistant(ctx context.Context, a backend.Assistant) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := rs.redisService.Set(ctx, keyAssistantPrefix+a.ID, string(data)); err != nil {
		return err
	}
	return rs.redisService.RPush(ctx, keyAssistantIndex, a.ID)
}

func (rs *RedisStore) UpdateAssistant(ctx context.Context, a backend.Assistant) error {
	if _, err := rs.GetAssistant(ctx, a.ID); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return rs.redisService.Set(ctx, keyAssistantPrefix+a.ID, string(data))
}

// DeleteAssistant removes the assistant together with its knowledge,
// sessions and transcripts, mirroring the cascade a relational backend gets
// from its foreign keys.
func (rs *RedisStore) DeleteAssistant(ctx context.Context, id string) error {
	if _, err := rs.GetAssistant(ctx, id); err != nil {
		return err
	}
	if err := rs.redisService.LRem(ctx, keyAssistantIndex, id); err != nil {
		return err
	}

	sessionIDs, err := rs.redisService.LRange(ctx, keySessionIndex+id)
	if err != nil {
		return err
	}
	keys := []string{keyAssistantPrefix + id, keyKnowledgePrefix + id, keySessionIndex + id}
	for _, sid := range sessionIDs {
		keys = append(keys, keySessionPrefix+sid, keyMessagesPrefix+sid)
	}
	return rs.redisService.Delete(ctx, keys...)
}

func (rs *RedisStore) ListKnowledge(ctx context.Context, assistantID string) ([]backend.KnowledgeDocument, error) {
	entries, err := rs.redisService.LRange(ctx, keyKnowledgePrefix+assistantID)
	if err != nil {
		return nil, err
	}

	out := make([]backend.KnowledgeDocument, 0, len(entries))
	for _, entry := range entries {
		var doc backend.KnowledgeDocument
		if err := json.Unmarshal([]byte(entry), &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (rs *RedisStore) AddKnowledge(ctx context.Context, doc backend.KnowledgeDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return rs.redisService.RPush(ctx, keyKnowledgePrefix+doc.AssistantID, string(data))
}

func (rs *RedisStore) GetSession(ctx context.Context, id string) (backend.ConversationSession, error) {
	data, err := rs.redisService.Get(ctx, keySessionPrefix+id)
	if err != nil {
		return backend.ConversationSession{}, err
	}
	if data == "" {
		return backend.ConversationSession{}, ErrNotFound
	}

	var session backend.ConversationSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return backend.ConversationSession{}, err
	}
	return session, nil
}

func (rs *RedisStore) CreateSession(ctx context.Context, session backend.ConversationSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := rs.redisService.Set(ctx, keySessionPrefix+session.ID, string(data)); err != nil {
		return err
	}
	return rs.redisService.RPush(ctx, keySessionIndex+session.AssistantID, session.ID)
}

func (rs *RedisStore) SessionMessages(ctx context.Context, sessionID string) ([]backend.Message, error) {
	entries, err := rs.redisService.LRange(ctx, keyMessagesPrefix+sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]backend.Message, 0, len(entries))
	for _, entry := range entries {
		var msg backend.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func (rs *RedisStore) AppendMessages(ctx context.Context, sessionID string, msgs []backend.Message) error {
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := rs.redisService.RPush(ctx, keyMessagesPrefix+sessionID, string(data)); err != nil {
			return err
		}
	}
	return nil
}
