package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrBusy is returned when a submit arrives while a reply is pending.
	ErrBusy = errors.New("a message is already in flight")
	// ErrBlankMessage is returned for empty or whitespace-only input.
	ErrBlankMessage = errors.New("message text is blank")
)

// MessageKind classifies entries in the widget transcript.
type MessageKind string

const (
	KindUser      MessageKind = "user"
	KindAssistant MessageKind = "assistant"
	KindError     MessageKind = "error"
	// KindPending is the typing placeholder shown while a reply is awaited.
	KindPending MessageKind = "pending"
)

// Message is one transcript entry.
type Message struct {
	ID        string
	Kind      MessageKind
	Text      string
	CreatedAt time.Time
}

// Session is the widget-side conversation state machine. All state changes
// go through one mutex; the transcript order is append order, and a
// pending placeholder always directly follows the user message it answers.
type Session struct {
	mu sync.Mutex

	relay        Relay
	assistantKey string
	log          zerolog.Logger

	open           bool
	busy           bool
	pendingReset   bool
	conversationID string
	info           *ConversationInfo
	messages       []Message
	nextID         int
}

// NewSession creates a widget session for one assistant.
func NewSession(relay Relay, assistantKey string, log zerolog.Logger) *Session {
	return &Session{
		relay:        relay,
		assistantKey: assistantKey,
		log:          log.With().Str("component", "widget-session").Str("assistant_key", assistantKey).Logger(),
	}
}

// Start ensures a conversation exists, creating one and seeding the
// welcome message on first call. The embedder calls this once when the
// widget mounts; if it never does, the first Submit starts lazily.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	started := s.conversationID != ""
	s.mu.Unlock()

	if started {
		return nil
	}
	return s.startConversation(ctx)
}

// Open marks the widget visible. Toggling visibility has no network
// effect; the conversation comes from Start or the first Submit.
func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
}

// Close hides the widget. State is retained for the next Open.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.pendingReset = false
}

// IsOpen reports whether the widget is visible.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Busy reports whether a reply is currently awaited.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Info returns the conversation display metadata, nil before first Open.
func (s *Session) Info() *ConversationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Submit sends one user message. The user entry and a pending placeholder
// are appended immediately; the placeholder is replaced in place by the
// reply, or by an error entry if the relay fails. Rejected without side
// effects when blank or when a reply is already in flight.
func (s *Session) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrBlankMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.conversationID == "" {
		s.mu.Unlock()
		if err := s.startConversation(ctx); err != nil {
			return err
		}
		s.mu.Lock()
		if s.busy {
			s.mu.Unlock()
			return ErrBusy
		}
	}

	s.busy = true
	conversationID := s.conversationID
	s.appendLocked(KindUser, text)
	placeholderID := s.appendLocked(KindPending, "")
	s.mu.Unlock()

	reply, err := s.relay.SendMessage(ctx, conversationID, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("message failed")
		s.replaceLocked(placeholderID, KindError, "Sorry, something went wrong. Please try again.")
		return err
	}

	s.replaceLocked(placeholderID, KindAssistant, reply)
	return nil
}

// RequestReset arms the reset confirmation. The conversation stays fully
// usable until ConfirmReset.
func (s *Session) RequestReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingReset = true
}

// CancelReset disarms a requested reset.
func (s *Session) CancelReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingReset = false
}

// ResetPending reports whether a reset awaits confirmation.
func (s *Session) ResetPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingReset
}

// ConfirmReset clears the transcript and starts a fresh conversation.
// A confirm without a preceding request is a no-op, so confirming twice
// is equivalent to confirming once.
func (s *Session) ConfirmReset(ctx context.Context) error {
	s.mu.Lock()
	if !s.pendingReset {
		s.mu.Unlock()
		return nil
	}
	s.pendingReset = false
	s.conversationID = ""
	s.info = nil
	s.messages = nil
	s.mu.Unlock()

	return s.startConversation(ctx)
}

func (s *Session) startConversation(ctx context.Context) error {
	info, err := s.relay.CreateConversation(ctx, s.assistantKey)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create conversation")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = info.ID
	s.info = info
	if info.WelcomeMessage != "" {
		s.appendLocked(KindAssistant, info.WelcomeMessage)
	}
	return nil
}

// appendLocked appends a transcript entry and returns its ID. Caller holds mu.
func (s *Session) appendLocked(kind MessageKind, text string) string {
	s.nextID++
	id := fmt.Sprintf("m%d", s.nextID)
	s.messages = append(s.messages, Message{
		ID:        id,
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now(),
	})
	return id
}

// replaceLocked swaps the entry with the given ID in place, keeping its
// transcript position. Caller holds mu.
func (s *Session) replaceLocked(id string, kind MessageKind, text string) {
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Kind = kind
			s.messages[i].Text = text
			return
		}
	}
}
