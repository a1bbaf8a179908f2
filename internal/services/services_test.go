package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend implements just enough of the REST contract for the cascade:
// a fixed assistant list, per-assistant knowledge, and the two chat endpoints.
func stubBackend() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/assistants/":
			json.NewEncoder(w).Encode([]backend.Assistant{
				{ID: "a1", Name: "First"},
				{ID: "a2", Name: "Second"},
			})
		case strings.HasSuffix(r.URL.Path, "/knowledge/"):
			json.NewEncoder(w).Encode([]backend.KnowledgeDocument{
				{ID: "k1", Title: "Doc", Content: "text"},
			})
		case strings.HasPrefix(r.URL.Path, "/chat/assistants/"):
			json.NewEncoder(w).Encode(backend.ChatResponse{
				AssistantMessage: "hello",
				Session:          backend.ConversationSession{ID: "s1"},
				Messages: []backend.Message{
					{Role: backend.RoleUser, Content: "hi", SessionID: "s1"},
					{Role: backend.RoleAssistant, Content: "hello", SessionID: "s1"},
				},
			})
		default:
			http.NotFound(w, r)
		}
	})
}

func TestActivationCascadeResetsSessionAndReloadsKnowledge(t *testing.T) {
	server := httptest.NewServer(stubBackend())
	defer server.Close()
	defer config.SetBackendBaseURL(server.URL)()

	svc := InitializeServices()
	ctx := context.Background()

	require.NoError(t, svc.GetDirectoryService().Refresh(ctx))
	require.Equal(t, "a1", svc.GetDirectoryService().ActiveID())

	// The reload triggered by the default activation lands eventually.
	assert.Eventually(t, func() bool {
		return len(svc.GetKnowledgeService().Documents("a1")) == 1
	}, time.Second, 10*time.Millisecond)

	_, err := svc.GetConversationService().Send(ctx, "hi")
	require.NoError(t, err)
	require.Equal(t, "s1", svc.GetConversationService().SessionID())
	require.Len(t, svc.GetConversationService().Transcript(), 2)

	// Switching assistants clears session and transcript unconditionally.
	svc.GetDirectoryService().Activate(backend.Assistant{ID: "a2", Name: "Second"})
	assert.Equal(t, "", svc.GetConversationService().SessionID())
	assert.Empty(t, svc.GetConversationService().Transcript())
}
