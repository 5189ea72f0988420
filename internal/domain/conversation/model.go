// Package conversation implements the conversation lifecycle and the run
// orchestration against the remote assistant service.
package conversation

import "time"

// Conversation associates a public conversation ID with the assistant it
// was created for and the remote thread backing it.
type Conversation struct {
	ID             string    `json:"id"`
	AssistantKey   string    `json:"assistant_key"`
	Origin         string    `json:"origin,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`

	// RemoteThreadID is the upstream thread identifier. It never leaves
	// the server.
	RemoteThreadID string `json:"-"`
}

// Handle is what a widget client gets back from conversation creation:
// the public ID plus display metadata, nothing upstream-internal.
type Handle struct {
	ID             string
	Name           string
	WelcomeMessage string
	Placeholder    string
	Color          string
}

// RunStatus is the state of one remote run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusTimedOut  RunStatus = "timed-out"
)

// RunAttempt tracks one bounded attempt to produce a reply. It exists only
// for the duration of the orchestration call and is never persisted.
type RunAttempt struct {
	ConversationID string
	RunID          string
	SubmittedAt    time.Time
	Status         RunStatus
	Polls          int
}

// Elapsed returns the wall-clock time since the run was submitted.
func (r *RunAttempt) Elapsed() time.Duration {
	return time.Since(r.SubmittedAt)
}
