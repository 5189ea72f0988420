package responses

import "chat-widget/services/relay-api/internal/domain/conversation"

// ConversationResponse is returned when a conversation is created. It
// carries the public conversation ID plus the display metadata the widget
// renders; remote identifiers never appear here.
type ConversationResponse struct {
	ConversationID string `json:"conversation_id"`
	Name           string `json:"name"`
	WelcomeMessage string `json:"welcome_message"`
	Placeholder    string `json:"placeholder"`
	Color          string `json:"color"`
}

// NewConversationResponse builds the creation response from a handle.
func NewConversationResponse(handle *conversation.Handle) *ConversationResponse {
	return &ConversationResponse{
		ConversationID: handle.ID,
		Name:           handle.Name,
		WelcomeMessage: handle.WelcomeMessage,
		Placeholder:    handle.Placeholder,
		Color:          handle.Color,
	}
}

// MessageResponse carries the assistant's reply to one message.
type MessageResponse struct {
	Reply string `json:"reply"`
}

// NewMessageResponse builds the message response.
func NewMessageResponse(reply string) *MessageResponse {
	return &MessageResponse{Reply: reply}
}
