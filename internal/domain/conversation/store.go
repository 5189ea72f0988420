package conversation

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a conversation ID is not in the store.
	ErrNotFound = errors.New("conversation not found")
	// ErrAlreadyExists is returned when a conversation ID is reused.
	ErrAlreadyExists = errors.New("conversation already exists")
)

// Store is the narrow persistence contract the orchestrator depends on.
// Implementations must support concurrent access keyed by conversation ID
// with row-level granularity; the default implementation is in-memory.
type Store interface {
	// Put stores a new conversation.
	Put(ctx context.Context, conv *Conversation) error

	// Get retrieves a conversation by public ID.
	Get(ctx context.Context, id string) (*Conversation, error)

	// Touch updates the conversation's last-activity timestamp.
	Touch(ctx context.Context, id string) error

	// Delete removes a conversation by public ID.
	Delete(ctx context.Context, id string) error

	// List returns all conversations (for retention sweeps).
	List(ctx context.Context) ([]*Conversation, error)
}
