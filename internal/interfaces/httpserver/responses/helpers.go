package responses

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"chat-widget/services/relay-api/internal/domain/conversation"
	"chat-widget/services/relay-api/internal/utils/platformerrors"
)

// HandleError handles errors and writes appropriate HTTP responses.
// It maps domain sentinel errors and platform errors to HTTP status codes.
func HandleError(c *gin.Context, err error, message string) {
	logger := log.With().Str("path", c.Request.URL.Path).Logger()

	if errors.Is(err, conversation.ErrNotFound) {
		platformerrors.WriteNotFound(c, message)
		return
	}

	platformerrors.WriteError(c, err, logger)
}

// HandleNewError creates and writes a new typed error response.
// Use this for route-level errors like validation or authorization failures.
func HandleNewError(c *gin.Context, errorType platformerrors.ErrorType, message string) {
	status := platformerrors.ErrorTypeToHTTPStatus(errorType)
	c.JSON(status, platformerrors.HTTPErrorResponse{
		Error: &platformerrors.HTTPErrorDetail{
			Message: message,
			Type:    platformerrors.ErrorTypeToString(errorType),
		},
	})
}
