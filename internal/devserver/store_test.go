package devserver

import (
	"context"
	"testing"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDeleteAssistantCascades(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateAssistant(ctx, backend.Assistant{ID: "a1", Name: "Helper"}))
	require.NoError(t, store.CreateAssistant(ctx, backend.Assistant{ID: "a2", Name: "Other"}))
	require.NoError(t, store.AddKnowledge(ctx, backend.KnowledgeDocument{ID: "k1", AssistantID: "a1", Title: "Doc", Content: "text"}))
	require.NoError(t, store.CreateSession(ctx, backend.ConversationSession{ID: "s1", AssistantID: "a1"}))
	require.NoError(t, store.CreateSession(ctx, backend.ConversationSession{ID: "s2", AssistantID: "a2"}))
	require.NoError(t, store.AppendMessages(ctx, "s1", []backend.Message{
		{ID: "m1", Role: backend.RoleUser, Content: "hi", SessionID: "s1"},
	}))

	require.NoError(t, store.DeleteAssistant(ctx, "a1"))

	_, err := store.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound, "the deleted assistant's sessions go with it")
	msgs, err := store.SessionMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// The other assistant's session is untouched.
	_, err = store.GetSession(ctx, "s2")
	require.NoError(t, err)
}
