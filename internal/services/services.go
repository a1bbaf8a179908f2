package services

import (
	"context"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/parleyhq/parley/internal/services/conversation"
	"github.com/parleyhq/parley/internal/services/directory"
	"github.com/parleyhq/parley/internal/services/events"
	"github.com/parleyhq/parley/internal/services/knowledge"
	"github.com/rs/zerolog/log"
)

type Services struct {
	backendService      *backend.Service
	directoryService    *directory.Service
	knowledgeService    *knowledge.Service
	conversationService *conversation.Service
	bus                 *events.Bus
}

// InitializeServices wires the core. The directory's activation is the single
// cascade trigger: it resets the conversation synchronously, then kicks off
// the knowledge reload for the newly active assistant.
func InitializeServices() *Services {
	log.Info().Msg("Initializing core services")

	bus := events.NewBus()
	backendService := backend.NewService(config.GetBackendBaseURL())
	directoryService := directory.NewService(backendService, bus)
	knowledgeService := knowledge.NewService(backendService, directoryService, bus)
	conversationService := conversation.NewService(backendService, directoryService, bus)

	directoryService.OnActivationChange(func(assistantID string) {
		// Reset first: no in-flight request for the previous assistant may
		// be applied after this point.
		conversationService.Reset()
		if assistantID == "" {
			return
		}
		go func() {
			if _, err := knowledgeService.LoadFor(context.Background(), assistantID); err != nil {
				log.Warn().Err(err).Str("assistant_id", assistantID).Msg("Knowledge reload failed")
			}
		}()
	})

	return &Services{
		backendService:      backendService,
		directoryService:    directoryService,
		knowledgeService:    knowledgeService,
		conversationService: conversationService,
		bus:                 bus,
	}
}

// GetBackendService returns the backend API client
func (s *Services) GetBackendService() *backend.Service {
	return s.backendService
}

// GetDirectoryService returns the assistant directory
func (s *Services) GetDirectoryService() *directory.Service {
	return s.directoryService
}

// GetKnowledgeService returns the knowledge cache
func (s *Services) GetKnowledgeService() *knowledge.Service {
	return s.knowledgeService
}

// GetConversationService returns the conversation session controller
func (s *Services) GetConversationService() *conversation.Service {
	return s.conversationService
}

// GetEventBus returns the state-change event bus
func (s *Services) GetEventBus() *events.Bus {
	return s.bus
}
