package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chat-widget/services/relay-api/internal/domain/assistant"
	"chat-widget/services/relay-api/internal/infrastructure/metrics"
	"chat-widget/services/relay-api/internal/utils/idgen"
	"chat-widget/services/relay-api/internal/utils/platformerrors"
)

// Service defines the conversation orchestration operations exposed to the
// HTTP layer.
type Service interface {
	// CreateConversation opens a new conversation for an assistant after
	// checking the access policy.
	CreateConversation(ctx context.Context, assistantKey, origin string, identity assistant.Identity) (*Handle, error)

	// SendMessage appends a user message, starts a run, and waits for the
	// reply within the poll budget.
	SendMessage(ctx context.Context, conversationID, text string) (string, error)
}

type service struct {
	registry     *assistant.Registry
	store        Store
	client       AssistantClient
	pollInterval time.Duration
	runTimeout   time.Duration
	locks        *keyedLocks
	log          zerolog.Logger
}

// NewService creates the conversation orchestrator.
func NewService(
	registry *assistant.Registry,
	store Store,
	client AssistantClient,
	pollInterval time.Duration,
	runTimeout time.Duration,
	log zerolog.Logger,
) Service {
	return &service{
		registry:     registry,
		store:        store,
		client:       client,
		pollInterval: pollInterval,
		runTimeout:   runTimeout,
		locks:        newKeyedLocks(),
		log:          log.With().Str("component", "conversation-service").Logger(),
	}
}

func (s *service) CreateConversation(ctx context.Context, assistantKey, origin string, identity assistant.Identity) (*Handle, error) {
	if strings.TrimSpace(assistantKey) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "assistant_key is required", nil)
	}

	cfg, err := s.registry.Lookup(assistantKey)
	if err != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "unknown assistant", err,
			map[string]any{"assistant_key": assistantKey})
	}

	if decision := assistant.Authorize(cfg, origin, identity); !decision.Allowed {
		errType := platformerrors.ErrorTypeForbidden
		if decision.AuthRequired {
			errType = platformerrors.ErrorTypeUnauthorized
		}
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			errType, decision.Reason, nil,
			map[string]any{"assistant_key": assistantKey, "origin": origin})
	}

	threadID, err := s.client.CreateThread(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("assistant_key", assistantKey).Msg("failed to create remote thread")
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal, "assistant service unavailable", err,
			map[string]any{"assistant_key": assistantKey})
	}

	conversationID, err := idgen.GenerateConversationID()
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to generate conversation id", err)
	}

	now := time.Now()
	conv := &Conversation{
		ID:             conversationID,
		AssistantKey:   assistantKey,
		Origin:         origin,
		RemoteThreadID: threadID,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := s.store.Put(ctx, conv); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to store conversation", err)
	}

	metrics.RecordConversationCreated()
	s.log.Info().
		Str("conversation_id", conversationID).
		Str("assistant_key", assistantKey).
		Str("origin", origin).
		Msg("conversation created")

	return &Handle{
		ID:             conversationID,
		Name:           cfg.Name,
		WelcomeMessage: cfg.WelcomeMessage,
		Placeholder:    cfg.Placeholder,
		Color:          cfg.Color,
	}, nil
}

func (s *service) SendMessage(ctx context.Context, conversationID, text string) (string, error) {
	if strings.TrimSpace(conversationID) == "" || strings.TrimSpace(text) == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "conversation id and text are required", nil)
	}

	// Serialize sends on the same conversation so runs never interleave,
	// even with multiple clients on one conversation ID.
	unlock := s.locks.lock(conversationID)
	defer unlock()

	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "conversation not found", err,
				map[string]any{"conversation_id": conversationID})
		}
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to load conversation", err)
	}

	cfg, err := s.registry.Lookup(conv.AssistantKey)
	if err != nil {
		// Registry changed across a restart; the stored binding is stale.
		return "", platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "conversation assistant no longer available", err,
			map[string]any{"conversation_id": conversationID, "assistant_key": conv.AssistantKey})
	}

	if err := s.client.AppendMessage(ctx, conv.RemoteThreadID, RoleUser, text); err != nil {
		return "", s.upstreamError(ctx, conv, "failed to append message", err)
	}

	runID, err := s.client.StartRun(ctx, conv.RemoteThreadID, cfg.AssistantID)
	if err != nil {
		return "", s.upstreamError(ctx, conv, "failed to start run", err)
	}

	attempt := &RunAttempt{
		ConversationID: conversationID,
		RunID:          runID,
		SubmittedAt:    time.Now(),
		Status:         RunStatusPending,
	}

	reply, err := s.awaitRun(ctx, conv, attempt)

	if touchErr := s.store.Touch(ctx, conversationID); touchErr != nil && !errors.Is(touchErr, ErrNotFound) {
		s.log.Warn().Err(touchErr).Str("conversation_id", conversationID).Msg("failed to touch conversation")
	}

	return reply, err
}

// awaitRun polls the run until it reaches a terminal state or the poll
// budget is exhausted. The poll cadence is the only retry mechanism:
// transport errors are surfaced immediately, never retried here.
func (s *service) awaitRun(ctx context.Context, conv *Conversation, attempt *RunAttempt) (string, error) {
	for {
		status, err := s.client.GetRunStatus(ctx, conv.RemoteThreadID, attempt.RunID)
		if err != nil {
			metrics.RecordRunFinished(string(RunStatusFailed), attempt.Elapsed())
			return "", s.upstreamError(ctx, conv, "failed to poll run status", err)
		}
		attempt.Polls++

		switch status {
		case RunStatusCompleted:
			attempt.Status = RunStatusCompleted
			metrics.RecordRunFinished(string(RunStatusCompleted), attempt.Elapsed())
			return s.fetchReply(ctx, conv, attempt)
		case RunStatusFailed:
			attempt.Status = RunStatusFailed
			metrics.RecordRunFinished(string(RunStatusFailed), attempt.Elapsed())
			s.log.Error().
				Str("conversation_id", conv.ID).
				Str("assistant_key", conv.AssistantKey).
				Dur("elapsed", attempt.Elapsed()).
				Int("polls", attempt.Polls).
				Msg("assistant run failed")
			return "", platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeExternal, "assistant run failed", nil,
				map[string]any{"conversation_id": conv.ID})
		}

		if attempt.Elapsed() >= s.runTimeout {
			attempt.Status = RunStatusTimedOut
			metrics.RecordRunFinished(string(RunStatusTimedOut), attempt.Elapsed())
			s.log.Error().
				Str("conversation_id", conv.ID).
				Str("assistant_key", conv.AssistantKey).
				Dur("elapsed", attempt.Elapsed()).
				Int("polls", attempt.Polls).
				Msg("assistant run timed out")
			// Best effort; the run is abandoned either way.
			if cancelErr := s.client.CancelRun(ctx, conv.RemoteThreadID, attempt.RunID); cancelErr != nil {
				s.log.Debug().Err(cancelErr).Str("conversation_id", conv.ID).Msg("run cancel failed")
			}
			return "", platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeTimeout, "assistant response timed out", nil,
				map[string]any{"conversation_id": conv.ID})
		}

		select {
		case <-ctx.Done():
			attempt.Status = RunStatusTimedOut
			metrics.RecordRunFinished(string(RunStatusTimedOut), attempt.Elapsed())
			return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeTimeout, "request cancelled while awaiting run", ctx.Err())
		case <-time.After(s.pollInterval):
		}
	}
}

func (s *service) fetchReply(ctx context.Context, conv *Conversation, attempt *RunAttempt) (string, error) {
	messages, err := s.client.ListMessages(ctx, conv.RemoteThreadID)
	if err != nil {
		return "", s.upstreamError(ctx, conv, "failed to fetch reply", err)
	}

	// Messages arrive most recent first; the reply is the newest
	// assistant-authored entry.
	for _, msg := range messages {
		if msg.Role == RoleAssistant {
			s.log.Info().
				Str("conversation_id", conv.ID).
				Str("assistant_key", conv.AssistantKey).
				Dur("elapsed", attempt.Elapsed()).
				Int("polls", attempt.Polls).
				Msg("run completed")
			return msg.Text, nil
		}
	}

	return "", platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeExternal, "assistant returned no reply", nil,
		map[string]any{"conversation_id": conv.ID})
}

func (s *service) upstreamError(ctx context.Context, conv *Conversation, message string, err error) error {
	s.log.Error().Err(err).
		Str("conversation_id", conv.ID).
		Str("assistant_key", conv.AssistantKey).
		Msg(message)
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeExternal, "assistant service unavailable", err,
		map[string]any{"conversation_id": conv.ID})
}
