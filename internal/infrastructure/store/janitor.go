package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chat-widget/services/relay-api/internal/domain/conversation"
	"chat-widget/services/relay-api/internal/infrastructure/metrics"
)

// Janitor removes conversations whose last activity is older than the idle
// TTL. Expiry only drops the local mapping; the remote thread is left to
// the upstream service's own retention.
type Janitor struct {
	store     conversation.Store
	idleTTL   time.Duration
	interval  time.Duration
	log       zerolog.Logger
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewJanitor creates a new conversation janitor.
func NewJanitor(
	store conversation.Store,
	idleTTL time.Duration,
	interval time.Duration,
	log zerolog.Logger,
) *Janitor {
	return &Janitor{
		store:    store,
		idleTTL:  idleTTL,
		interval: interval,
		log:      log.With().Str("component", "conversation-janitor").Logger(),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in background.
// Safe to call multiple times - only the first call starts the janitor.
func (j *Janitor) Start(ctx context.Context) {
	j.startOnce.Do(func() {
		j.wg.Add(1)
		go j.run(ctx)
		j.log.Info().
			Dur("idle_ttl", j.idleTTL).
			Dur("interval", j.interval).
			Msg("conversation janitor started")
	})
}

// Stop gracefully shuts down the janitor.
// Safe to call multiple times - only the first call stops the janitor.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.done)
		j.wg.Wait()
		j.log.Info().Msg("conversation janitor stopped")
	})
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Debug().Msg("context cancelled, shutting down janitor")
			return
		case <-j.done:
			j.log.Debug().Msg("done signal received, shutting down janitor")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// sweep deletes conversations idle longer than the TTL.
func (j *Janitor) sweep(ctx context.Context) {
	conversations, err := j.store.List(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("failed to list conversations for sweep")
		return
	}

	now := time.Now()
	expired := 0

	for _, conv := range conversations {
		if now.Sub(conv.LastActivityAt) <= j.idleTTL {
			continue
		}
		if err := j.store.Delete(ctx, conv.ID); err == nil {
			metrics.RecordConversationExpired()
			expired++
			j.log.Info().
				Str("conversation_id", conv.ID).
				Str("assistant_key", conv.AssistantKey).
				Dur("idle", now.Sub(conv.LastActivityAt)).
				Msg("conversation expired")
		}
	}

	if expired > 0 {
		j.log.Info().
			Int("expired", expired).
			Int("remaining", len(conversations)-expired).
			Msg("retention sweep completed")
	}
}
