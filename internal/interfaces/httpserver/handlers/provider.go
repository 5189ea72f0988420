package handlers

import (
	"github.com/google/wire"

	"chat-widget/services/relay-api/internal/domain/conversation"
)

// Provider holds all HTTP handlers.
type Provider struct {
	Conversation *ConversationHandler
}

// NewProvider creates a new handler provider.
func NewProvider(conversationService conversation.Service) *Provider {
	return &Provider{
		Conversation: NewConversationHandler(conversationService),
	}
}

// HandlerProvider provides all handlers for wire.
var HandlerProvider = wire.NewSet(
	NewConversationHandler,
	NewProvider,
)
