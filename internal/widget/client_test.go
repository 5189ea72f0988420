package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelayTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		var req createConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AssistantKey == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "assistant_key is required", "type": "validation_error"},
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(conversationResponse{
			ConversationID: "conv_abc",
			Name:           "Customer Support",
			WelcomeMessage: "Hi! How can we help?",
			Placeholder:    "Type your message...",
			Color:          "#dc2626",
		})
	})

	mux.HandleFunc("POST /v1/conversations/conv_abc/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageResponse{Reply: "We open at 9am."})
	})

	mux.HandleFunc("POST /v1/conversations/conv_gone/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "conversation not found", "type": "not_found_error"},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRelayClientCreateConversation(t *testing.T) {
	server := newRelayTestServer(t)
	client := NewRelayClient(NewHTTPClient(5*time.Second, zerolog.Nop()), server.URL)

	info, err := client.CreateConversation(context.Background(), "customer-support")
	require.NoError(t, err)
	assert.Equal(t, "conv_abc", info.ID)
	assert.Equal(t, "Customer Support", info.Name)
	assert.Equal(t, "#dc2626", info.Color)
}

func TestRelayClientCreateConversationError(t *testing.T) {
	server := newRelayTestServer(t)
	client := NewRelayClient(NewHTTPClient(5*time.Second, zerolog.Nop()), server.URL)

	_, err := client.CreateConversation(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assistant_key is required")
}

func TestRelayClientSendMessage(t *testing.T) {
	server := newRelayTestServer(t)
	client := NewRelayClient(NewHTTPClient(5*time.Second, zerolog.Nop()), server.URL)

	reply, err := client.SendMessage(context.Background(), "conv_abc", "When do you open?")
	require.NoError(t, err)
	assert.Equal(t, "We open at 9am.", reply)
}

func TestRelayClientSendMessageNotFound(t *testing.T) {
	server := newRelayTestServer(t)
	client := NewRelayClient(NewHTTPClient(5*time.Second, zerolog.Nop()), server.URL)

	_, err := client.SendMessage(context.Background(), "conv_gone", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation not found")
}

func TestSessionAgainstRelayClient(t *testing.T) {
	server := newRelayTestServer(t)
	client := NewRelayClient(NewHTTPClient(5*time.Second, zerolog.Nop()), server.URL)
	s := NewSession(client, "customer-support", zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Submit(context.Background(), "When do you open?"))

	messages := s.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "We open at 9am.", messages[2].Text)
}
