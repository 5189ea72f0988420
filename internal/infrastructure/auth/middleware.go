package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-widget/services/relay-api/internal/config"
	"chat-widget/services/relay-api/internal/domain/assistant"
	"chat-widget/services/relay-api/internal/utils/platformerrors"
)

const identityKey = "caller_identity"

// Authenticator attaches a caller identity to each request. A missing
// token is not an error here: whether authentication is required is a
// per-assistant decision made by the access guard.
type Authenticator struct {
	validator *Validator // nil when auth is disabled
	log       zerolog.Logger
}

// NewAuthenticator initialises JWKS validation when auth is enabled.
func NewAuthenticator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Authenticator, error) {
	if !cfg.AuthEnabled {
		return &Authenticator{log: log}, nil
	}

	validator, err := NewValidator(
		ctx,
		cfg.AuthJWKSURL,
		cfg.AuthIssuer,
		cfg.AuthAudience,
		5*time.Minute,
		log,
	)
	if err != nil {
		return nil, err
	}

	return &Authenticator{validator: validator, log: log}, nil
}

// Ready reports whether token validation is operational. Always true when
// auth is disabled.
func (a *Authenticator) Ready() bool {
	if a.validator == nil {
		return true
	}
	return a.validator.Ready()
}

// Middleware resolves the caller identity from the Authorization header.
// A present-but-invalid token is rejected with 401; an absent token
// yields an unverified identity and the request continues.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Set(identityKey, assistant.Identity{})
			c.Next()
			return
		}

		if a.validator == nil {
			// Token presented while auth is disabled: treat as anonymous.
			a.log.Debug().Msg("bearer token ignored, auth disabled")
			c.Set(identityKey, assistant.Identity{})
			c.Next()
			return
		}

		claims, err := a.validator.Validate(c.Request.Context(), token)
		if err != nil {
			a.log.Debug().Err(err).Msg("token validation failed")
			platformerrors.WriteUnauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(identityKey, assistant.Identity{
			Subject:  claims.Subject,
			Verified: true,
		})
		c.Next()
	}
}

// IdentityFrom returns the caller identity resolved by the middleware.
func IdentityFrom(c *gin.Context) assistant.Identity {
	if val, exists := c.Get(identityKey); exists {
		if identity, ok := val.(assistant.Identity); ok {
			return identity
		}
	}
	return assistant.Identity{}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
