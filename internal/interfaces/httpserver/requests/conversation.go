// Package requests contains HTTP request DTOs for the relay-api.
package requests

// CreateConversationRequest is the body for creating a conversation.
type CreateConversationRequest struct {
	// AssistantKey selects which configured assistant backs the conversation.
	AssistantKey string `json:"assistant_key" binding:"required" example:"customer-support"`
	// Origin is the page origin of the embedding site. Optional; when the
	// Origin header is present it takes precedence.
	Origin string `json:"origin,omitempty" example:"https://example.com"`
}

// SendMessageRequest is the body for sending a message to a conversation.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required" example:"What are your opening hours?"`
}
