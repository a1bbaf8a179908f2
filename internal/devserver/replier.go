package devserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	openaiinfra "github.com/parleyhq/parley/internal/infrastructure/openai"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const maxContextDocs = 4

// ReplyRequest carries everything a replier may ground its answer on.
type ReplyRequest struct {
	Assistant   backend.Assistant
	History     []backend.Message
	Knowledge   []backend.KnowledgeDocument
	UserMessage string
}

// Replier produces the assistant's reply for one chat turn.
type Replier interface {
	Reply(ctx context.Context, req ReplyRequest) (string, error)
}

// NewReplier uses OpenAI when the service is configured and canned replies
// otherwise.
func NewReplier(openaiService *openaiinfra.Service) Replier {
	if openaiService == nil {
		log.Info().Msg("Using canned replier")
		return &cannedReplier{}
	}
	return &openaiReplier{client: openaiService.GetClient()}
}

type openaiReplier struct {
	client *openai.Client
}

func (r *openaiReplier) Reply(ctx context.Context, req ReplyRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: buildSystemPrompt(req),
	})
	for _, msg := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserMessage,
	})

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    openai.GPT4oMini,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildSystemPrompt(req ReplyRequest) string {
	var b strings.Builder
	if req.Assistant.SystemPrompt != "" {
		b.WriteString(req.Assistant.SystemPrompt)
	} else {
		fmt.Fprintf(&b, "You are %s, a helpful assistant.", req.Assistant.Name)
	}

	docs := relevantDocs(req.Knowledge, req.UserMessage)
	if len(docs) > 0 {
		b.WriteString("\n\nUse the following reference material when it helps:\n")
		for _, doc := range docs {
			fmt.Fprintf(&b, "\n## %s\n%s\n", doc.Title, doc.Content)
		}
	}
	return b.String()
}

// relevantDocs is a stand-in for the real backend's vector retrieval: score
// documents by shared words with the query and keep the best few. With no
// overlap at all, fall back to the first documents so small knowledge bases
// are always in play.
func relevantDocs(docs []backend.KnowledgeDocument, query string) []backend.KnowledgeDocument {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) > 3 {
			words[w] = true
		}
	}

	var scored []backend.KnowledgeDocument
	for _, doc := range docs {
		text := strings.ToLower(doc.Title + " " + doc.Content)
		for w := range words {
			if strings.Contains(text, w) {
				scored = append(scored, doc)
				break
			}
		}
	}
	if len(scored) == 0 {
		scored = docs
	}
	if len(scored) > maxContextDocs {
		scored = scored[:maxContextDocs]
	}
	return scored
}

type cannedReplier struct{}

func (r *cannedReplier) Reply(ctx context.Context, req ReplyRequest) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] I heard: %s", req.Assistant.Name, req.UserMessage)

	if docs := relevantDocs(req.Knowledge, req.UserMessage); len(docs) > 0 && len(req.Knowledge) > 0 {
		titles := make([]string, len(docs))
		for i, doc := range docs {
			titles[i] = doc.Title
		}
		fmt.Fprintf(&b, " (consulted: %s)", strings.Join(titles, ", "))
	}
	return b.String(), nil
}
