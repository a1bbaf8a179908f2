package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Service is the typed request/response boundary to the assistant backend.
// It holds no state beyond the transport; every operation is a single network
// call with no retries and no side effects.
type Service struct {
	client   *http.Client
	baseURL  string
	validate *validator.Validate
}

func NewService(baseURL string) *Service {
	return &Service{
		client:   &http.Client{},
		baseURL:  strings.TrimRight(baseURL, "/"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ListAssistants fetches the full assistant list in server order.
func (s *Service) ListAssistants(ctx context.Context) ([]Assistant, error) {
	var assistants []Assistant
	if err := s.do(ctx, http.MethodGet, "/assistants/", nil, &assistants); err != nil {
		return nil, err
	}
	return assistants, nil
}

// CreateAssistant creates a new assistant. Name is required.
func (s *Service) CreateAssistant(ctx context.Context, req CreateAssistantRequest) (*Assistant, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Field: "name", Reason: err.Error()}
	}

	var assistant Assistant
	if err := s.do(ctx, http.MethodPost, "/assistants/", req, &assistant); err != nil {
		return nil, err
	}
	return &assistant, nil
}

// UpdateAssistant applies a partial update to an assistant.
func (s *Service) UpdateAssistant(ctx context.Context, id string, req UpdateAssistantRequest) (*Assistant, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "must not be empty"}
	}

	var assistant Assistant
	if err := s.do(ctx, http.MethodPut, "/assistants/"+id, req, &assistant); err != nil {
		return nil, err
	}
	return &assistant, nil
}

// DeleteAssistant deletes an assistant by id.
func (s *Service) DeleteAssistant(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	return s.do(ctx, http.MethodDelete, "/assistants/"+id, nil, nil)
}

// ListKnowledge fetches the knowledge documents of one assistant.
func (s *Service) ListKnowledge(ctx context.Context, assistantID string) ([]KnowledgeDocument, error) {
	if assistantID == "" {
		return nil, &ValidationError{Field: "assistant_id", Reason: "must not be empty"}
	}

	var docs []KnowledgeDocument
	if err := s.do(ctx, http.MethodGet, "/assistants/"+assistantID+"/knowledge/", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// AddKnowledge stores a knowledge document for an assistant.
func (s *Service) AddKnowledge(ctx context.Context, assistantID string, req AddKnowledgeRequest) (*KnowledgeDocument, error) {
	if assistantID == "" {
		return nil, &ValidationError{Field: "assistant_id", Reason: "must not be empty"}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Field: "knowledge", Reason: err.Error()}
	}

	var doc KnowledgeDocument
	if err := s.do(ctx, http.MethodPost, "/assistants/"+assistantID+"/knowledge/", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// StartSession sends the first message of a new conversation session.
func (s *Service) StartSession(ctx context.Context, assistantID string, turn ChatTurn) (*ChatResponse, error) {
	if assistantID == "" {
		return nil, &ValidationError{Field: "assistant_id", Reason: "must not be empty"}
	}
	if err := s.validate.Struct(turn); err != nil {
		return nil, &ValidationError{Field: "user_message", Reason: err.Error()}
	}

	var resp ChatResponse
	if err := s.do(ctx, http.MethodPost, "/chat/assistants/"+assistantID, turn, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ContinueSession sends a message into an existing conversation session.
func (s *Service) ContinueSession(ctx context.Context, assistantID, sessionID string, turn ChatTurn) (*ChatResponse, error) {
	if assistantID == "" {
		return nil, &ValidationError{Field: "assistant_id", Reason: "must not be empty"}
	}
	if sessionID == "" {
		return nil, &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}
	if err := s.validate.Struct(turn); err != nil {
		return nil, &ValidationError{Field: "user_message", Reason: err.Error()}
	}

	var resp ChatResponse
	if err := s.do(ctx, http.MethodPost, "/chat/assistants/"+assistantID+"/sessions/"+sessionID, turn, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do performs a single JSON request against the backend. Transport failures
// surface as *NetworkError, non-2xx responses as *RequestError; neither is
// retried.
func (s *Service) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Debug().Str("method", method).Str("path", path).Msg("Backend request")

	resp, err := s.client.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			data = nil
		}
		log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("Backend request failed")
		return &RequestError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
