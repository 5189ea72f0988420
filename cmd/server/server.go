// @title           Chat Widget Relay API
// @version         1.0
// @description     Conversation relay between embedded chat widgets and the remote assistant service.
// @description     Creates conversations, relays messages and polls runs to completion.

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token, required only by assistants configured with requires_auth

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"chat-widget/services/relay-api/internal/config"
	"chat-widget/services/relay-api/internal/domain/assistant"
	"chat-widget/services/relay-api/internal/domain/conversation"
	"chat-widget/services/relay-api/internal/infrastructure/assistantclient"
	"chat-widget/services/relay-api/internal/infrastructure/auth"
	"chat-widget/services/relay-api/internal/infrastructure/logger"
	"chat-widget/services/relay-api/internal/infrastructure/observability"
	"chat-widget/services/relay-api/internal/infrastructure/store"
	"chat-widget/services/relay-api/internal/interfaces/httpserver"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	janitor    *store.Janitor
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, janitor *store.Janitor, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		janitor:    janitor,
		log:        log,
	}
}

// Start runs the application.
func (a *Application) Start(ctx context.Context) error {
	// Start the retention sweep
	a.janitor.Start(ctx)

	// Run HTTP server (blocks until context cancelled)
	err := a.httpServer.Run(ctx)

	// Stop the janitor
	a.janitor.Stop()

	return err
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.FromConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup observability
	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	// Initialize the caller identity resolver
	authenticator, err := auth.NewAuthenticator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize authenticator")
	}

	// Initialize the assistant registry from bootstrap config
	registry := assistant.NewRegistry(cfg.Assistants)

	// Initialize the remote assistant client
	client := assistantclient.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)

	// Initialize conversation store (mutex-based, no goroutine)
	conversationStore := store.NewMemoryStore(log)

	// Initialize retention janitor (sweeps idle conversations)
	janitor := store.NewJanitor(conversationStore, cfg.ConversationTTL, cfg.ConversationCleanupInterval, log)

	// Initialize conversation service
	conversationService := conversation.NewService(
		registry,
		conversationStore,
		client,
		cfg.RunPollInterval,
		cfg.RunTimeout,
		log,
	)

	// Initialize HTTP server
	httpServer := httpserver.New(cfg, log, conversationService, authenticator)

	// Create and start application
	app := NewApplication(httpServer, janitor, log)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Strs("assistants", registry.Keys()).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
