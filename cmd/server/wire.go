//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"chat-widget/services/relay-api/internal/config"
	"chat-widget/services/relay-api/internal/domain/assistant"
	"chat-widget/services/relay-api/internal/domain/conversation"
	"chat-widget/services/relay-api/internal/infrastructure/assistantclient"
	"chat-widget/services/relay-api/internal/infrastructure/auth"
	"chat-widget/services/relay-api/internal/infrastructure/store"
	"chat-widget/services/relay-api/internal/interfaces/httpserver"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvideAssistantRegistry,
	ProvideAssistantClient,
	ProvideConversationStore,
	ProvideJanitor,
	ProvideAuthenticator,

	// Domain providers
	ProvideConversationService,

	// Interface providers
	httpserver.New,

	// Application
	NewApplication,
)

// ProvideAssistantRegistry provides the assistant registry.
func ProvideAssistantRegistry(cfg *config.Config) *assistant.Registry {
	return assistant.NewRegistry(cfg.Assistants)
}

// ProvideAssistantClient provides the remote assistant client.
func ProvideAssistantClient(cfg *config.Config) conversation.AssistantClient {
	return assistantclient.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
}

// ProvideConversationStore provides a conversation store.
func ProvideConversationStore(log zerolog.Logger) conversation.Store {
	return store.NewMemoryStore(log)
}

// ProvideJanitor provides the retention janitor.
func ProvideJanitor(
	conversationStore conversation.Store,
	cfg *config.Config,
	log zerolog.Logger,
) *store.Janitor {
	return store.NewJanitor(conversationStore, cfg.ConversationTTL, cfg.ConversationCleanupInterval, log)
}

// ProvideAuthenticator provides the caller identity resolver.
func ProvideAuthenticator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Authenticator, error) {
	return auth.NewAuthenticator(ctx, cfg, log)
}

// ProvideConversationService provides the conversation service.
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

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
