// Package store provides the in-memory conversation store and its
// retention janitor.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chat-widget/services/relay-api/internal/domain/conversation"
)

// MemoryStore is a mutex-based in-memory conversation store.
// Thread-safe via sync.RWMutex. Touch mutates LastActivityAt under the
// lock, so entries are copied on the way in and out rather than shared.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*conversation.Conversation
	log           zerolog.Logger
}

// NewMemoryStore creates a new in-memory conversation store.
func NewMemoryStore(log zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*conversation.Conversation),
		log:           log.With().Str("component", "conversation-store").Logger(),
	}
}

// Put stores a new conversation.
func (s *MemoryStore) Put(ctx context.Context, conv *conversation.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[conv.ID]; exists {
		return conversation.ErrAlreadyExists
	}

	stored := *conv
	s.conversations[conv.ID] = &stored
	return nil
}

// Get retrieves a conversation by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*conversation.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, conversation.ErrNotFound
	}
	copied := *conv
	return &copied, nil
}

// Touch updates the conversation's last-activity timestamp.
func (s *MemoryStore) Touch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return conversation.ErrNotFound
	}
	conv.LastActivityAt = time.Now()
	return nil
}

// Delete removes a conversation by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return conversation.ErrNotFound
	}

	delete(s.conversations, id)
	return nil
}

// List returns a snapshot of all conversations.
func (s *MemoryStore) List(ctx context.Context) ([]*conversation.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*conversation.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		copied := *conv
		result = append(result, &copied)
	}
	return result, nil
}
