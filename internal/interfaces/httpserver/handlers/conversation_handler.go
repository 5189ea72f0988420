package handlers

import (
	"context"

	"chat-widget/services/relay-api/internal/domain/assistant"
	"chat-widget/services/relay-api/internal/domain/conversation"
)

// ConversationHandler handles conversation-related HTTP requests.
type ConversationHandler struct {
	service conversation.Service
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(service conversation.Service) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// CreateConversation opens a new conversation for an assistant.
func (h *ConversationHandler) CreateConversation(ctx context.Context, assistantKey, origin string, identity assistant.Identity) (*conversation.Handle, error) {
	return h.service.CreateConversation(ctx, assistantKey, origin, identity)
}

// SendMessage relays a user message and returns the assistant's reply.
func (h *ConversationHandler) SendMessage(ctx context.Context, conversationID, text string) (string, error) {
	return h.service.SendMessage(ctx, conversationID, text)
}
