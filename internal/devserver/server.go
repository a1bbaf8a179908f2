package devserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/parleyhq/parley/pkg/httpext"
	"github.com/rs/zerolog/log"
)

type Server struct {
	store    Store
	replier  Replier
	validate *validator.Validate
}

func NewServer(store Store, replier Replier) *Server {
	return &Server{
		store:    store,
		replier:  replier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// apiPrefix matches the path component of the client's default base URL, so
// a stock client and a stock dev server agree without configuration.
const apiPrefix = "/api/v1"

// Router exposes the REST contract the client is built against, mounted
// under the versioned API prefix.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix(apiPrefix).Subrouter()
	api.HandleFunc("/assistants/", s.handleListAssistants).Methods(http.MethodGet)
	api.HandleFunc("/assistants/", s.handleCreateAssistant).Methods(http.MethodPost)
	api.HandleFunc("/assistants/{id}", s.handleUpdateAssistant).Methods(http.MethodPut)
	api.HandleFunc("/assistants/{id}", s.handleDeleteAssistant).Methods(http.MethodDelete)
	api.HandleFunc("/assistants/{id}/knowledge/", s.handleListKnowledge).Methods(http.MethodGet)
	api.HandleFunc("/assistants/{id}/knowledge/", s.handleAddKnowledge).Methods(http.MethodPost)
	api.HandleFunc("/chat/assistants/{id}", s.handleChatNewSession).Methods(http.MethodPost)
	api.HandleFunc("/chat/assistants/{id}/sessions/{sessionId}", s.handleChatContinueSession).Methods(http.MethodPost)
	return r
}

func (s *Server) handleListAssistants(w http.ResponseWriter, r *http.Request) {
	assistants, err := s.store.ListAssistants(r.Context())
	if err != nil {
		httpext.JsonError(w, "Failed to list assistants", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, assistants)
}

func (s *Server) handleCreateAssistant(w http.ResponseWriter, r *http.Request) {
	var req backend.CreateAssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		httpext.JsonError(w, "name is required", http.StatusUnprocessableEntity)
		return
	}

	now := nowToken()
	assistant := backend.Assistant{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAssistant(r.Context(), assistant); err != nil {
		httpext.JsonError(w, "Failed to create assistant", http.StatusInternalServerError)
		return
	}
	log.Info().Str("assistant_id", assistant.ID).Str("name", assistant.Name).Msg("Assistant created")
	writeJSON(w, http.StatusCreated, assistant)
}

func (s *Server) handleUpdateAssistant(w http.ResponseWriter, r *http.Request) {
	assistant, err := s.store.GetAssistant(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpext.JsonError(w, "Assistant not found", http.StatusNotFound)
		return
	}

	var req backend.UpdateAssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		assistant.Name = *req.Name
	}
	if req.Description != nil {
		assistant.Description = *req.Description
	}
	if req.SystemPrompt != nil {
		assistant.SystemPrompt = *req.SystemPrompt
	}
	assistant.UpdatedAt = nowToken()

	if err := s.store.UpdateAssistant(r.Context(), assistant); err != nil {
		httpext.JsonError(w, "Failed to update assistant", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, assistant)
}

func (s *Server) handleDeleteAssistant(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAssistant(r.Context(), mux.Vars(r)["id"]); err != nil {
		httpext.JsonError(w, "Assistant not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListKnowledge(w http.ResponseWriter, r *http.Request) {
	assistantID := mux.Vars(r)["id"]
	if _, err := s.store.GetAssistant(r.Context(), assistantID); err != nil {
		httpext.JsonError(w, "Assistant not found", http.StatusNotFound)
		return
	}

	docs, err := s.store.ListKnowledge(r.Context(), assistantID)
	if err != nil {
		httpext.JsonError(w, "Failed to list knowledge", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleAddKnowledge(w http.ResponseWriter, r *http.Request) {
	assistantID := mux.Vars(r)["id"]
	if _, err := s.store.GetAssistant(r.Context(), assistantID); err != nil {
		httpext.JsonError(w, "Assistant not found", http.StatusNotFound)
		return
	}

	var req backend.AddKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		httpext.JsonError(w, "title and content are required", http.StatusUnprocessableEntity)
		return
	}

	doc := backend.KnowledgeDocument{
		ID:          uuid.New().String(),
		AssistantID: assistantID,
		Title:       req.Title,
		Content:     req.Content,
		CreatedAt:   nowToken(),
	}
	if err := s.store.AddKnowledge(r.Context(), doc); err != nil {
		httpext.JsonError(w, "Failed to store knowledge", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleChatNewSession(w http.ResponseWriter, r *http.Request) {
	s.chatTurn(w, r, true)
}

func (s *Server) handleChatContinueSession(w http.ResponseWriter, r *http.Request) {
	s.chatTurn(w, r, false)
}

// chatTurn runs one exchange: store the user message, generate the reply,
// store it, and return both in order along with the session.
func (s *Server) chatTurn(w http.ResponseWriter, r *http.Request, newSession bool) {
	ctx := r.Context()
	vars := mux.Vars(r)

	assistant, err := s.store.GetAssistant(ctx, vars["id"])
	if err != nil {
		httpext.JsonError(w, "Assistant not found", http.StatusNotFound)
		return
	}

	var turn backend.ChatTurn
	if err := json.NewDecoder(r.Body).Decode(&turn); err != nil {
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(turn); err != nil {
		httpext.JsonError(w, "user_message is required", http.StatusUnprocessableEntity)
		return
	}

	var session backend.ConversationSession
	if newSession {
		session = backend.ConversationSession{
			ID:          uuid.New().String(),
			AssistantID: assistant.ID,
			Title:       "New Session",
			CreatedAt:   nowToken(),
		}
		if err := s.store.CreateSession(ctx, session); err != nil {
			httpext.JsonError(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
	} else {
		session, err = s.store.GetSession(ctx, vars["sessionId"])
		if err != nil || session.AssistantID != assistant.ID {
			httpext.JsonError(w, "Session not found", http.StatusNotFound)
			return
		}
	}

	history, err := s.store.SessionMessages(ctx, session.ID)
	if err != nil {
		httpext.JsonError(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	docs, err := s.store.ListKnowledge(ctx, assistant.ID)
	if err != nil {
		httpext.JsonError(w, "Failed to load knowledge", http.StatusInternalServerError)
		return
	}

	reply, err := s.replier.Reply(ctx, ReplyRequest{
		Assistant:   assistant,
		History:     history,
		Knowledge:   docs,
		UserMessage: turn.UserMessage,
	})
	if err != nil {
		log.Error().Err(err).Str("assistant_id", assistant.ID).Msg("Reply generation failed")
		httpext.JsonError(w, "Failed to generate reply", http.StatusInternalServerError)
		return
	}

	userMsg := backend.Message{
		ID:        uuid.New().String(),
		Role:      backend.RoleUser,
		Content:   turn.UserMessage,
		CreatedAt: nowToken(),
		SessionID: session.ID,
	}
	assistantMsg := backend.Message{
		ID:        uuid.New().String(),
		Role:      backend.RoleAssistant,
		Content:   reply,
		CreatedAt: nowToken(),
		SessionID: session.ID,
	}
	if err := s.store.AppendMessages(ctx, session.ID, []backend.Message{userMsg, assistantMsg}); err != nil {
		httpext.JsonError(w, "Failed to store messages", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, backend.ChatResponse{
		AssistantMessage: reply,
		Session:          session,
		Messages:         []backend.Message{userMsg, assistantMsg},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func nowToken() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
