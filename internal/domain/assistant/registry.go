// Package assistant holds the immutable assistant registry and the access
// policy evaluation applied before a conversation is opened.
package assistant

import (
	"errors"

	"chat-widget/services/relay-api/internal/config"
)

// ErrNotFound is returned when an assistant key is not registered.
var ErrNotFound = errors.New("assistant not found")

// Config describes one routable assistant.
type Config struct {
	Key            string
	Name           string
	WelcomeMessage string
	Placeholder    string
	Color          string
	AllowedOrigins []string
	RequiresAuth   bool
	// AssistantID identifies the remote computation. Internal only.
	AssistantID string
}

// Registry maps assistant keys to their configuration. It is built once at
// startup and never mutated afterwards, so lookups need no synchronization.
type Registry struct {
	byKey map[string]Config
}

// NewRegistry builds a registry from bootstrap entries.
func NewRegistry(entries []config.AssistantEntry) *Registry {
	byKey := make(map[string]Config, len(entries))
	for _, e := range entries {
		byKey[e.Key] = Config{
			Key:            e.Key,
			Name:           e.Name,
			WelcomeMessage: e.WelcomeMessage,
			Placeholder:    e.Placeholder,
			Color:          e.Color,
			AllowedOrigins: append([]string(nil), e.AllowedOrigins...),
			RequiresAuth:   e.RequiresAuth,
			AssistantID:    e.AssistantID,
		}
	}
	return &Registry{byKey: byKey}
}

// Lookup returns the configuration for key, or ErrNotFound. Callers must
// treat a miss as a client error; it is never retried.
func (r *Registry) Lookup(key string) (Config, error) {
	cfg, ok := r.byKey[key]
	if !ok {
		return Config{}, ErrNotFound
	}
	return cfg, nil
}

// Keys returns the registered assistant keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	return keys
}
