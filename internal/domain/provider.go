package domain

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"chat-widget/services/relay-api/internal/config"
	"chat-widget/services/relay-api/internal/domain/assistant"
	"chat-widget/services/relay-api/internal/domain/conversation"
)

// ProvideConversationService provides a conversation service.
func ProvideConversationService(
	registry *assistant.Registry,
	conversationStore conversation.Store,
	client conversation.AssistantClient,
	cfg *config.Config,
	log zerolog.Logger,
) conversation.Service {
	return conversation.NewService(
		registry,
		conversationStore,
		client,
		cfg.RunPollInterval,
		cfg.RunTimeout,
		log,
	)
}

// ServiceProvider provides all domain services.
var ServiceProvider = wire.NewSet(
	ProvideConversationService,
)
