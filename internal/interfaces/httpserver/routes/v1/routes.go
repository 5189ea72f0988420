package v1

import (
	"github.com/gin-gonic/gin"

	"chat-widget/services/relay-api/internal/interfaces/httpserver/handlers"
)

// Routes holds the v1 route configuration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes creates a new v1 routes instance.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register registers all v1 routes on the engine.
// If identityMiddleware is provided, it runs before every v1 route.
func (r *Routes) Register(engine *gin.Engine, identityMiddleware gin.HandlerFunc) {
	v1 := engine.Group("/v1")
	if identityMiddleware != nil {
		v1.Use(identityMiddleware)
	}
	RegisterConversationRoutes(v1, r.handlers.Conversation)
}
