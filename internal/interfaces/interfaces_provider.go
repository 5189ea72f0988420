package interfaces

import (
	"github.com/google/wire"

	"chat-widget/services/relay-api/internal/interfaces/httpserver"
	"chat-widget/services/relay-api/internal/interfaces/httpserver/handlers"
	"chat-widget/services/relay-api/internal/interfaces/httpserver/routes"
)

// InterfacesProvider provides all interface dependencies.
var InterfacesProvider = wire.NewSet(
	handlers.HandlerProvider,
	routes.RouteProvider,
	httpserver.New,
)
