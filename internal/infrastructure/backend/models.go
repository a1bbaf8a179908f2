package backend

// Assistant is a configured persona that chat sessions are created against.
// Timestamps are opaque ordering tokens assigned by the server.
type Assistant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// KnowledgeDocument is a free-text grounding snippet owned by one assistant.
type KnowledgeDocument struct {
	ID          string `json:"id"`
	AssistantID string `json:"assistant_id,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ConversationSession is a server-tracked conversation thread. Immutable once
// created; only superseded by starting a new one.
type ConversationSession struct {
	ID          string `json:"id"`
	AssistantID string `json:"assistant_id"`
	Title       string `json:"title"`
	CreatedAt   string `json:"created_at"`
}

// Message roles form a closed set.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single transcript entry within a session.
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the server's reply to a chat turn. Messages carries the
// stored user message and the assistant reply in server-assigned order.
type ChatResponse struct {
	AssistantMessage string              `json:"assistant_message"`
	Session          ConversationSession `json:"session"`
	Messages         []Message           `json:"messages"`
}

// CreateAssistantRequest is the payload for creating an assistant.
type CreateAssistantRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// UpdateAssistantRequest carries partial assistant fields; nil fields are
// omitted from the request body and left unchanged by the server.
type UpdateAssistantRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
}

// AddKnowledgeRequest is the payload for adding a knowledge document.
type AddKnowledgeRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// ChatTurn is the payload for both chat endpoints.
type ChatTurn struct {
	UserMessage string `json:"user_message" validate:"required"`
}
