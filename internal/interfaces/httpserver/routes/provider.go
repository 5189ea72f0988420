package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"chat-widget/services/relay-api/internal/infrastructure/auth"
	"chat-widget/services/relay-api/internal/interfaces/httpserver/handlers"
	v1 "chat-widget/services/relay-api/internal/interfaces/httpserver/routes/v1"
)

// RouteProvider provides the route provider for wire.
var RouteProvider = wire.NewSet(
	NewProvider,
)

// Provider holds all route providers.
type Provider struct {
	V1            *v1.Routes
	authenticator *auth.Authenticator
}

// NewProvider creates a new route provider.
func NewProvider(handlerProvider *handlers.Provider, authenticator *auth.Authenticator) *Provider {
	return &Provider{
		V1:            v1.NewRoutes(handlerProvider),
		authenticator: authenticator,
	}
}

// Register registers all routes on the engine.
func (p *Provider) Register(engine *gin.Engine) {
	// The identity middleware resolves bearer tokens for API routes only;
	// whether auth is required is a per-assistant decision.
	if p.authenticator != nil {
		p.V1.Register(engine, p.authenticator.Middleware())
	} else {
		p.V1.Register(engine, nil)
	}
}
