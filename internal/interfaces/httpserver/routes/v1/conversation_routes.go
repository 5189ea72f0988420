package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chat-widget/services/relay-api/internal/infrastructure/auth"
	"chat-widget/services/relay-api/internal/interfaces/httpserver/handlers"
	"chat-widget/services/relay-api/internal/interfaces/httpserver/requests"
	"chat-widget/services/relay-api/internal/interfaces/httpserver/responses"
	"chat-widget/services/relay-api/internal/utils/platformerrors"
)

// RegisterConversationRoutes registers the conversation relay routes.
func RegisterConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.POST("/conversations", createConversation(handler))
	router.POST("/conversations/:id/messages", sendMessage(handler))
}

// createConversation godoc
// @Summary      Create a conversation
// @Description  Opens a new conversation bound to a configured assistant and returns the widget display metadata.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        request body requests.CreateConversationRequest true "Conversation parameters"
// @Success      200 {object} responses.ConversationResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Router       /conversations [post]
func createConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.CreateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "assistant_key is required")
			return
		}

		origin := requestOrigin(c, req.Origin)
		identity := auth.IdentityFrom(c)

		handle, err := handler.CreateConversation(c.Request.Context(), req.AssistantKey, origin, identity)
		if err != nil {
			responses.HandleError(c, err, "failed to create conversation")
			return
		}

		c.JSON(http.StatusOK, responses.NewConversationResponse(handle))
	}
}

// sendMessage godoc
// @Summary      Send a message
// @Description  Relays a user message to the assistant and waits for the reply within the run budget.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Param        request body requests.SendMessageRequest true "Message body"
// @Success      200 {object} responses.MessageResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Failure      504 {object} responses.ErrorResponse
// @Router       /conversations/{id}/messages [post]
func sendMessage(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var req requests.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "text is required")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "text must not be blank")
			return
		}

		reply, err := handler.SendMessage(c.Request.Context(), id, req.Text)
		if err != nil {
			responses.HandleError(c, err, "failed to send message")
			return
		}

		c.JSON(http.StatusOK, responses.NewMessageResponse(reply))
	}
}

// requestOrigin prefers the browser-set Origin header over the body field:
// the header cannot be forged by page scripts, the body can.
func requestOrigin(c *gin.Context, bodyOrigin string) string {
	if origin := strings.TrimSpace(c.GetHeader("Origin")); origin != "" {
		return origin
	}
	return strings.TrimSpace(bodyOrigin)
}
