// Package widget implements the client-side conversation state machine an
// embedded chat widget runs against the relay, plus the HTTP client it
// talks through.
package widget

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

// ConversationInfo is the widget's view of a created conversation.
type ConversationInfo struct {
	ID             string
	Name           string
	WelcomeMessage string
	Placeholder    string
	Color          string
}

// Relay is the transport the widget session depends on. The production
// implementation is RelayClient; tests substitute fakes.
type Relay interface {
	CreateConversation(ctx context.Context, assistantKey string) (*ConversationInfo, error)
	SendMessage(ctx context.Context, conversationID, text string) (string, error)
}

// RelayClient is the HTTP implementation of Relay.
type RelayClient struct {
	client  *resty.Client
	baseURL string
}

// NewRelayClient creates a relay client against baseURL.
func NewRelayClient(client *resty.Client, baseURL string) *RelayClient {
	return &RelayClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type requestStartsAt struct{}

// NewHTTPClient builds the resty client the widget uses. Every request
// is timed and logged at debug level.
func NewHTTPClient(timeout time.Duration, log zerolog.Logger) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), requestStartsAt{}, time.Now()))
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		start, _ := r.Request.Context().Value(requestStartsAt{}).(time.Time)
		log.Debug().
			Int("status", r.StatusCode()).
			Str("method", r.Request.RawRequest.Method).
			Str("path", r.Request.RawRequest.URL.Path).
			Dur("latency", time.Since(start)).
			Msg("relay request")
		return nil
	})
	return client
}

type createConversationRequest struct {
	AssistantKey string `json:"assistant_key"`
}

type conversationResponse struct {
	ConversationID string `json:"conversation_id"`
	Name           string `json:"name"`
	WelcomeMessage string `json:"welcome_message"`
	Placeholder    string `json:"placeholder"`
	Color          string `json:"color"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CreateConversation opens a conversation for the assistant key.
func (c *RelayClient) CreateConversation(ctx context.Context, assistantKey string) (*ConversationInfo, error) {
	var body conversationResponse
	var errBody errorResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(createConversationRequest{AssistantKey: assistantKey}).
		SetResult(&body).
		SetError(&errBody).
		Post(c.baseURL + "/v1/conversations")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, responseError(resp, errBody, "create conversation failed")
	}

	return &ConversationInfo{
		ID:             body.ConversationID,
		Name:           body.Name,
		WelcomeMessage: body.WelcomeMessage,
		Placeholder:    body.Placeholder,
		Color:          body.Color,
	}, nil
}

// SendMessage relays one user message and returns the assistant reply.
func (c *RelayClient) SendMessage(ctx context.Context, conversationID, text string) (string, error) {
	var body messageResponse
	var errBody errorResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{Text: text}).
		SetResult(&body).
		SetError(&errBody).
		Post(c.baseURL + "/v1/conversations/" + conversationID + "/messages")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", responseError(resp, errBody, "send message failed")
	}

	return body.Reply, nil
}

func responseError(resp *resty.Response, errBody errorResponse, message string) error {
	if errBody.Error.Message != "" {
		return fmt.Errorf("%s (%d): %s", message, resp.StatusCode(), errBody.Error.Message)
	}
	return fmt.Errorf("%s with status %d", message, resp.StatusCode())
}
