package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chat-widget/services/relay-api/internal/domain/conversation"
)

func newConversation(id string) *conversation.Conversation {
	now := time.Now()
	return &conversation.Conversation{
		ID:             id,
		AssistantKey:   "customer-support",
		RemoteThreadID: "thread_" + id,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	st := NewMemoryStore(zerolog.Nop())
	ctx := context.Background()

	conv := newConversation("conv_a")
	if err := st.Put(ctx, conv); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := st.Get(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.RemoteThreadID != "thread_conv_a" {
		t.Errorf("Get() thread = %q, want %q", got.RemoteThreadID, "thread_conv_a")
	}

	if err := st.Put(ctx, newConversation("conv_a")); !errors.Is(err, conversation.ErrAlreadyExists) {
		t.Errorf("Put(duplicate) error = %v, want ErrAlreadyExists", err)
	}

	if _, err := st.Get(ctx, "conv_missing"); !errors.Is(err, conversation.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreTouch(t *testing.T) {
	st := NewMemoryStore(zerolog.Nop())
	ctx := context.Background()

	conv := newConversation("conv_a")
	conv.LastActivityAt = time.Now().Add(-time.Hour)
	if err := st.Put(ctx, conv); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := st.Touch(ctx, "conv_a"); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}

	got, err := st.Get(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if time.Since(got.LastActivityAt) > time.Minute {
		t.Errorf("Touch() did not refresh last activity: %v", got.LastActivityAt)
	}

	if err := st.Touch(ctx, "conv_missing"); !errors.Is(err, conversation.ErrNotFound) {
		t.Errorf("Touch(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreDeleteList(t *testing.T) {
	st := NewMemoryStore(zerolog.Nop())
	ctx := context.Background()

	for _, id := range []string{"conv_a", "conv_b", "conv_c"} {
		if err := st.Put(ctx, newConversation(id)); err != nil {
			t.Fatalf("Put(%s) error = %v", id, err)
		}
	}

	if err := st.Delete(ctx, "conv_b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := st.Delete(ctx, "conv_b"); !errors.Is(err, conversation.ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List() returned %d conversations, want 2", len(all))
	}
}

func TestMemoryStoreEntriesDetached(t *testing.T) {
	st := NewMemoryStore(zerolog.Nop())
	ctx := context.Background()

	conv := newConversation("conv_a")
	if err := st.Put(ctx, conv); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// Mutating the caller's struct after Put must not reach the store.
	conv.RemoteThreadID = "thread_mutated"
	got, err := st.Get(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.RemoteThreadID != "thread_conv_a" {
		t.Errorf("Put() shared the caller's struct: thread = %q", got.RemoteThreadID)
	}

	// Mutating a returned struct must not reach the store either.
	got.AssistantKey = "mutated"
	again, err := st.Get(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.AssistantKey != "customer-support" {
		t.Errorf("Get() shared the stored struct: key = %q", again.AssistantKey)
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	all[0].AssistantKey = "mutated"
	final, err := st.Get(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if final.AssistantKey != "customer-support" {
		t.Errorf("List() shared the stored struct: key = %q", final.AssistantKey)
	}
}

// Touch writes LastActivityAt while the sweep reads it from List results;
// run with -race to verify the store never hands out live entries.
func TestMemoryStoreTouchSweepConcurrent(t *testing.T) {
	st := NewMemoryStore(zerolog.Nop())
	ctx := context.Background()

	if err := st.Put(ctx, newConversation("conv_a")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	janitor := NewJanitor(st, time.Hour, time.Minute, zerolog.Nop())

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				if err := st.Touch(ctx, "conv_a"); err != nil {
					return
				}
			}
		}
	}()

	for i := 0; i < 200; i++ {
		janitor.sweep(ctx)
		all, err := st.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		for _, conv := range all {
			if conv.LastActivityAt.IsZero() {
				t.Fatal("List() returned zero LastActivityAt")
			}
		}
	}

	close(done)
	wg.Wait()

	if _, err := st.Get(ctx, "conv_a"); err != nil {
		t.Errorf("active conversation was swept: err = %v", err)
	}
}

func TestJanitorSweep(t *testing.T) {
	st := NewMemoryStore(zerolog.Nop())
	ctx := context.Background()

	fresh := newConversation("conv_fresh")
	stale := newConversation("conv_stale")
	stale.LastActivityAt = time.Now().Add(-2 * time.Hour)

	if err := st.Put(ctx, fresh); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := st.Put(ctx, stale); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	janitor := NewJanitor(st, time.Hour, time.Minute, zerolog.Nop())
	janitor.sweep(ctx)

	if _, err := st.Get(ctx, "conv_stale"); !errors.Is(err, conversation.ErrNotFound) {
		t.Errorf("stale conversation survived the sweep: err = %v", err)
	}
	if _, err := st.Get(ctx, "conv_fresh"); err != nil {
		t.Errorf("fresh conversation was swept: err = %v", err)
	}
}

func TestJanitorStartStop(t *testing.T) {
	st := NewMemoryStore(zerolog.Nop())

	janitor := NewJanitor(st, time.Hour, 5*time.Millisecond, zerolog.Nop())
	janitor.Start(context.Background())
	janitor.Start(context.Background()) // second Start is a no-op

	time.Sleep(15 * time.Millisecond)

	janitor.Stop()
	janitor.Stop() // second Stop is a no-op
}
