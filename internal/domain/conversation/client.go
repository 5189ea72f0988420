package conversation

import (
	"context"
	"time"
)

// MessageRole identifies who authored a remote message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// RemoteMessage is one message as reported by the assistant service.
type RemoteMessage struct {
	ID        string
	Role      MessageRole
	Text      string
	CreatedAt time.Time
}

// AssistantClient is the contract with the remote assistant computation
// service. The orchestrator treats it as a black box: threads hold
// messages, runs are asynchronous and reach a terminal state on their own.
type AssistantClient interface {
	// CreateThread allocates a new remote conversation thread.
	CreateThread(ctx context.Context) (threadID string, err error)

	// AppendMessage adds a message to a thread.
	AppendMessage(ctx context.Context, threadID string, role MessageRole, text string) error

	// StartRun begins an asynchronous computation on the thread.
	StartRun(ctx context.Context, threadID, assistantID string) (runID string, err error)

	// GetRunStatus reports whether a run is still pending or has reached
	// a terminal state.
	GetRunStatus(ctx context.Context, threadID, runID string) (RunStatus, error)

	// ListMessages returns the thread's messages, most recent first.
	ListMessages(ctx context.Context, threadID string) ([]RemoteMessage, error)

	// CancelRun asks the service to abandon a run. Best effort; the
	// orchestrator ignores failures.
	CancelRun(ctx context.Context, threadID, runID string) error
}
