// Package assistantclient adapts the OpenAI Assistants API to the
// conversation domain's client contract.
package assistantclient

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"chat-widget/services/relay-api/internal/domain/conversation"
)

// OpenAIClient implements conversation.AssistantClient on top of the
// OpenAI Assistants API (threads, messages, runs).
type OpenAIClient struct {
	api *openai.Client
}

// New creates an OpenAI-backed assistant client. baseURL overrides the
// default API endpoint when non-empty (compatible gateways, test servers).
func New(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{api: openai.NewClientWithConfig(cfg)}
}

// CreateThread allocates a new remote thread.
func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

// AppendMessage adds a message to a thread.
func (c *OpenAIClient) AppendMessage(ctx context.Context, threadID string, role conversation.MessageRole, text string) error {
	_, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    string(role),
		Content: text,
	})
	return err
}

// StartRun begins an asynchronous run on the thread.
func (c *OpenAIClient) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: assistantID,
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// GetRunStatus maps the upstream run state onto the domain's three-way
// pending/completed/failed view. Anything terminal that is not a clean
// completion counts as failed, including runs that stop for tool input
// the relay never provides.
func (c *OpenAIClient) GetRunStatus(ctx context.Context, threadID, runID string) (conversation.RunStatus, error) {
	run, err := c.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return "", err
	}

	switch run.Status {
	case openai.RunStatusCompleted:
		return conversation.RunStatusCompleted, nil
	case openai.RunStatusFailed,
		openai.RunStatusCancelled,
		openai.RunStatusExpired,
		openai.RunStatusIncomplete,
		openai.RunStatusRequiresAction:
		return conversation.RunStatusFailed, nil
	default:
		return conversation.RunStatusPending, nil
	}
}

// ListMessages returns the thread's messages, most recent first, which is
// the upstream default ordering.
func (c *OpenAIClient) ListMessages(ctx context.Context, threadID string) ([]conversation.RemoteMessage, error) {
	list, err := c.api.ListMessage(ctx, threadID, nil, nil, nil, nil, nil)
	if err != nil {
		return nil, err
	}

	messages := make([]conversation.RemoteMessage, 0, len(list.Messages))
	for _, msg := range list.Messages {
		messages = append(messages, conversation.RemoteMessage{
			ID:        msg.ID,
			Role:      conversation.MessageRole(msg.Role),
			Text:      firstTextContent(msg),
			CreatedAt: time.Unix(int64(msg.CreatedAt), 0),
		})
	}
	return messages, nil
}

// CancelRun asks the service to abandon a run.
func (c *OpenAIClient) CancelRun(ctx context.Context, threadID, runID string) error {
	_, err := c.api.CancelRun(ctx, threadID, runID)
	return err
}

func firstTextContent(msg openai.Message) string {
	for _, part := range msg.Content {
		if part.Text != nil {
			return part.Text.Value
		}
	}
	return ""
}
