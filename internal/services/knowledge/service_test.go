package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/parleyhq/parley/internal/services/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type activeFunc func() string

func (f activeFunc) ActiveID() string { return f() }

func fixedActive(id string) activeFunc {
	return func() string { return id }
}

func TestLoadForReplacesEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assistants/a1/knowledge/", r.URL.Path)
		json.NewEncoder(w).Encode([]backend.KnowledgeDocument{
			{ID: "k1", AssistantID: "a1", Title: "Doc", Content: "text"},
		})
	}))
	defer server.Close()

	svc := NewService(backend.NewService(server.URL), fixedActive("a1"), events.NewBus())

	docs, err := svc.LoadFor(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "k1", svc.Documents("a1")[0].ID)
}

func TestLoadForDropsStaleResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]backend.KnowledgeDocument{
			{ID: "k1", AssistantID: "a1", Title: "Doc", Content: "text"},
		})
	}))
	defer server.Close()

	// The active assistant is already b2 by the time the a1 load resolves.
	svc := NewService(backend.NewService(server.URL), fixedActive("b2"), events.NewBus())

	docs, err := svc.LoadFor(context.Background(), "a1")
	require.NoError(t, err)
	assert.Nil(t, docs)
	assert.Empty(t, svc.Documents("a1"), "stale response must not be written to a1's entry")
	assert.Empty(t, svc.Documents("b2"), "stale response must not be written to b2's entry")
}

func TestAddValidatesTitleAndContent(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewService(backend.NewService(server.URL), fixedActive("a1"), events.NewBus())

	tests := []struct {
		name    string
		title   string
		content string
	}{
		{"empty title", "", "content"},
		{"whitespace title", "   ", "content"},
		{"empty content", "title", ""},
		{"whitespace content", "title", "\n\t "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), "a1", tt.title, tt.content)
			var valErr *backend.ValidationError
			require.ErrorAs(t, err, &valErr)
		})
	}
	assert.False(t, called, "validation failures must not reach the server")
}

func TestAddAppendsToLocalEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req backend.AddKnowledgeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(backend.KnowledgeDocument{
			ID: "k9", AssistantID: "a1", Title: req.Title, Content: req.Content,
		})
	}))
	defer server.Close()

	bus := events.NewBus()
	var added bool
	bus.Subscribe(func(e events.Event) {
		if e.Type == events.KnowledgeAdded {
			added = true
		}
	})

	svc := NewService(backend.NewService(server.URL), fixedActive("a1"), bus)

	doc, err := svc.Add(context.Background(), "a1", "Title", "Content")
	require.NoError(t, err)
	assert.Equal(t, "k9", doc.ID)

	docs := svc.Documents("a1")
	require.Len(t, docs, 1)
	assert.Equal(t, "Title", docs[0].Title)
	assert.True(t, added)
}
