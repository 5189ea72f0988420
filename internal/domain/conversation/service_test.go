package conversation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-widget/services/relay-api/internal/config"
	"chat-widget/services/relay-api/internal/domain/assistant"
	"chat-widget/services/relay-api/internal/domain/conversation"
	"chat-widget/services/relay-api/internal/infrastructure/store"
	"chat-widget/services/relay-api/internal/utils/platformerrors"
)

const (
	testPollInterval = 5 * time.Millisecond
	testRunTimeout   = 30 * time.Millisecond
)

// fakeClient is a scriptable AssistantClient.
type fakeClient struct {
	mu sync.Mutex

	threadErr error
	appendErr error
	startErr  error
	listErr   error
	statusErr error

	// statusFn maps the 1-based poll number to a run status.
	statusFn func(poll int) conversation.RunStatus
	messages []conversation.RemoteMessage

	polls       int
	cancelCalls int
	appended    []string
}

func (f *fakeClient) CreateThread(ctx context.Context) (string, error) {
	if f.threadErr != nil {
		return "", f.threadErr
	}
	return "thread_test", nil
}

func (f *fakeClient) AppendMessage(ctx context.Context, threadID string, role conversation.MessageRole, text string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	f.appended = append(f.appended, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return "run_test", nil
}

func (f *fakeClient) GetRunStatus(ctx context.Context, threadID, runID string) (conversation.RunStatus, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	f.mu.Lock()
	f.polls++
	poll := f.polls
	f.mu.Unlock()
	if f.statusFn == nil {
		return conversation.RunStatusCompleted, nil
	}
	return f.statusFn(poll), nil
}

func (f *fakeClient) ListMessages(ctx context.Context, threadID string) ([]conversation.RemoteMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.messages, nil
}

func (f *fakeClient) CancelRun(ctx context.Context, threadID, runID string) error {
	f.mu.Lock()
	f.cancelCalls++
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func testRegistry(t *testing.T) *assistant.Registry {
	t.Helper()
	return assistant.NewRegistry([]config.AssistantEntry{
		{
			Key:            "customer-support",
			Name:           "Customer Support",
			WelcomeMessage: "Hi! How can we help?",
			Placeholder:    "Type your question...",
			Color:          "#dc2626",
			AssistantID:    "asst_support",
		},
		{
			Key:            "locked-down",
			Name:           "Locked Down",
			AllowedOrigins: []string{"https://example.com"},
			AssistantID:    "asst_locked",
		},
		{
			Key:          "hr-internal",
			Name:         "HR Assistant",
			RequiresAuth: true,
			AssistantID:  "asst_hr",
		},
	})
}

func newTestService(t *testing.T, client conversation.AssistantClient) (conversation.Service, conversation.Store) {
	t.Helper()
	st := store.NewMemoryStore(zerolog.Nop())
	svc := conversation.NewService(testRegistry(t), st, client, testPollInterval, testRunTimeout, zerolog.Nop())
	return svc, st
}

func TestCreateConversation(t *testing.T) {
	svc, st := newTestService(t, &fakeClient{})

	handle, err := svc.CreateConversation(context.Background(), "customer-support", "https://example.com", assistant.Identity{})
	require.NoError(t, err)
	assert.NotEmpty(t, handle.ID)
	assert.Equal(t, "Customer Support", handle.Name)
	assert.Equal(t, "Hi! How can we help?", handle.WelcomeMessage)
	assert.Equal(t, "Type your question...", handle.Placeholder)
	assert.Equal(t, "#dc2626", handle.Color)

	conv, err := st.Get(context.Background(), handle.ID)
	require.NoError(t, err)
	assert.Equal(t, "customer-support", conv.AssistantKey)
	assert.Equal(t, "thread_test", conv.RemoteThreadID)
}

func TestCreateConversationUnknownAssistant(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	_, err := svc.CreateConversation(context.Background(), "nope", "", assistant.Identity{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestCreateConversationOriginDenied(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	_, err := svc.CreateConversation(context.Background(), "locked-down", "https://evil.example.net", assistant.Identity{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
}

func TestCreateConversationAuthRequired(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	_, err := svc.CreateConversation(context.Background(), "hr-internal", "", assistant.Identity{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))

	_, err = svc.CreateConversation(context.Background(), "hr-internal", "", assistant.Identity{Subject: "user-1", Verified: true})
	require.NoError(t, err)
}

func TestCreateConversationUpstreamDown(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{threadErr: errors.New("connection refused")})

	_, err := svc.CreateConversation(context.Background(), "customer-support", "", assistant.Identity{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestSendMessageCompletesOnSecondPoll(t *testing.T) {
	client := &fakeClient{
		statusFn: func(poll int) conversation.RunStatus {
			if poll < 2 {
				return conversation.RunStatusPending
			}
			return conversation.RunStatusCompleted
		},
		messages: []conversation.RemoteMessage{
			{ID: "m2", Role: conversation.RoleAssistant, Text: "We open at 9am."},
			{ID: "m1", Role: conversation.RoleUser, Text: "When do you open?"},
		},
	}
	svc, _ := newTestService(t, client)

	handle, err := svc.CreateConversation(context.Background(), "customer-support", "", assistant.Identity{})
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), handle.ID, "When do you open?")
	require.NoError(t, err)
	assert.Equal(t, "We open at 9am.", reply)
	assert.Equal(t, 2, client.pollCount())
	assert.Equal(t, []string{"When do you open?"}, client.appended)
}

func TestSendMessageTimeout(t *testing.T) {
	client := &fakeClient{
		statusFn: func(poll int) conversation.RunStatus {
			return conversation.RunStatusPending
		},
	}
	svc, _ := newTestService(t, client)

	handle, err := svc.CreateConversation(context.Background(), "customer-support", "", assistant.Identity{})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), handle.ID, "hello?")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeTimeout))

	// The poll count is bounded by the budget, and polling stops once the
	// timeout is reported.
	polls := client.pollCount()
	maxPolls := int(testRunTimeout/testPollInterval) + 2
	assert.LessOrEqual(t, polls, maxPolls)

	time.Sleep(3 * testPollInterval)
	assert.Equal(t, polls, client.pollCount())

	client.mu.Lock()
	cancels := client.cancelCalls
	client.mu.Unlock()
	assert.Equal(t, 1, cancels)
}

func TestSendMessageRunFailed(t *testing.T) {
	client := &fakeClient{
		statusFn: func(poll int) conversation.RunStatus {
			return conversation.RunStatusFailed
		},
	}
	svc, _ := newTestService(t, client)

	handle, err := svc.CreateConversation(context.Background(), "customer-support", "", assistant.Identity{})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), handle.ID, "hello?")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestSendMessagePollTransportError(t *testing.T) {
	client := &fakeClient{statusErr: errors.New("connection reset")}
	svc, _ := newTestService(t, client)

	handle, err := svc.CreateConversation(context.Background(), "customer-support", "", assistant.Identity{})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), handle.ID, "hello?")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestSendMessageUnknownConversation(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	_, err := svc.SendMessage(context.Background(), "conv_missing", "hello?")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestSendMessageValidation(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	_, err := svc.SendMessage(context.Background(), "", "hello?")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, err = svc.SendMessage(context.Background(), "conv_x", "   ")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestSendMessageNoAssistantReply(t *testing.T) {
	client := &fakeClient{
		messages: []conversation.RemoteMessage{
			{ID: "m1", Role: conversation.RoleUser, Text: "hello?"},
		},
	}
	svc, _ := newTestService(t, client)

	handle, err := svc.CreateConversation(context.Background(), "customer-support", "", assistant.Identity{})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), handle.ID, "hello?")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestSendMessageTouchesConversation(t *testing.T) {
	client := &fakeClient{
		messages: []conversation.RemoteMessage{
			{ID: "m2", Role: conversation.RoleAssistant, Text: "ok"},
		},
	}
	svc, st := newTestService(t, client)

	handle, err := svc.CreateConversation(context.Background(), "customer-support", "", assistant.Identity{})
	require.NoError(t, err)

	before, err := st.Get(context.Background(), handle.ID)
	require.NoError(t, err)
	createdActivity := before.LastActivityAt

	time.Sleep(2 * time.Millisecond)
	_, err = svc.SendMessage(context.Background(), handle.ID, "hello?")
	require.NoError(t, err)

	after, err := st.Get(context.Background(), handle.ID)
	require.NoError(t, err)
	assert.True(t, after.LastActivityAt.After(createdActivity))
}
