package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAssistants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/assistants/", r.URL.Path)
		json.NewEncoder(w).Encode([]Assistant{
			{ID: "a1", Name: "Helper"},
			{ID: "a2", Name: "Researcher"},
		})
	}))
	defer server.Close()

	svc := NewService(server.URL)
	assistants, err := svc.ListAssistants(context.Background())
	require.NoError(t, err)
	require.Len(t, assistants, 2)
	assert.Equal(t, "a1", assistants[0].ID)
	assert.Equal(t, "Researcher", assistants[1].Name)
}

func TestChatEndpointPaths(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		var turn ChatTurn
		require.NoError(t, json.NewDecoder(r.Body).Decode(&turn))
		assert.Equal(t, "hi", turn.UserMessage)

		json.NewEncoder(w).Encode(ChatResponse{
			AssistantMessage: "hello",
			Session:          ConversationSession{ID: "s1", AssistantID: "a1"},
			Messages: []Message{
				{Role: RoleUser, Content: "hi", SessionID: "s1"},
				{Role: RoleAssistant, Content: "hello", SessionID: "s1"},
			},
		})
	}))
	defer server.Close()

	svc := NewService(server.URL)

	resp, err := svc.StartSession(context.Background(), "a1", ChatTurn{UserMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "/chat/assistants/a1", gotPath)
	assert.Equal(t, "s1", resp.Session.ID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, RoleUser, resp.Messages[0].Role)

	_, err = svc.ContinueSession(context.Background(), "a1", "s1", ChatTurn{UserMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "/chat/assistants/a1/sessions/s1", gotPath)
}

func TestRequestErrorCarriesBody(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"body text becomes the message", http.StatusNotFound, "Session not found", "Session not found"},
		{"empty body falls back to status text", http.StatusBadGateway, "", "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewService(server.URL)
			_, err := svc.ListAssistants(context.Background())

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.wantMessage, reqErr.Error())
		})
	}
}

func TestNetworkErrorOnTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	svc := NewService(server.URL)
	_, err := svc.ListAssistants(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Error(t, errors.Unwrap(netErr))
}

func TestValidationFailuresNeverReachTheServer(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	svc := NewService(server.URL)
	ctx := context.Background()

	var valErr *ValidationError

	_, err := svc.CreateAssistant(ctx, CreateAssistantRequest{Name: "   "})
	require.ErrorAs(t, err, &valErr)

	_, err = svc.AddKnowledge(ctx, "a1", AddKnowledgeRequest{Title: "t"})
	require.ErrorAs(t, err, &valErr)

	_, err = svc.StartSession(ctx, "", ChatTurn{UserMessage: "hi"})
	require.ErrorAs(t, err, &valErr)

	_, err = svc.ContinueSession(ctx, "a1", "", ChatTurn{UserMessage: "hi"})
	require.ErrorAs(t, err, &valErr)

	assert.Equal(t, int64(0), calls.Load(), "validation failures must not produce network calls")
}

func TestDeleteAssistantAcceptsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	svc := NewService(server.URL)
	require.NoError(t, svc.DeleteAssistant(context.Background(), "a1"))
}
