package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the relay-api service.
type Config struct {
	// Service settings
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"relay-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"RELAY_API_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// OpenTelemetry
	EnableTracing bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`

	// Auth (JWKS bearer validation)
	AuthEnabled  bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer   string `env:"ISSUER"`
	AuthAudience string `env:"AUDIENCE"`
	AuthJWKSURL  string `env:"JWKS_URL"`

	// Remote assistant service (OpenAI Assistants-compatible)
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	// Run orchestration
	RunPollInterval time.Duration `env:"RUN_POLL_INTERVAL" envDefault:"1s"`
	RunTimeout      time.Duration `env:"RUN_TIMEOUT" envDefault:"30s"`

	// Conversation retention
	ConversationTTL             time.Duration `env:"CONVERSATION_TTL" envDefault:"24h"`
	ConversationCleanupInterval time.Duration `env:"CONVERSATION_CLEANUP_INTERVAL" envDefault:"5m"`

	// Assistant registry
	AssistantsConfigFile string `env:"ASSISTANTS_CONFIG_FILE"`
	Assistants           []AssistantEntry `env:"-"`
}

// Load parses environment variables into Config and loads the assistant
// registry bootstrap.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthAudience) == "" {
			return nil, fmt.Errorf("AUDIENCE is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("JWKS_URL is required when AUTH_ENABLED is true")
		}
	}

	if cfg.RunPollInterval <= 0 {
		return nil, fmt.Errorf("RUN_POLL_INTERVAL must be positive")
	}
	if cfg.RunTimeout < cfg.RunPollInterval {
		return nil, fmt.Errorf("RUN_TIMEOUT must be at least RUN_POLL_INTERVAL")
	}

	assistants, err := LoadAssistantEntries(cfg.AssistantsConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load assistant configs: %w", err)
	}
	cfg.Assistants = assistants

	return cfg, nil
}

// Addr returns the HTTP server address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
