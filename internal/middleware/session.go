package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spi-admin-api/internal/models"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
	"github.com/noah-isme/spi-admin-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the resolved identity.
const ContextIdentityKey = "identity"

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// Session resolves the caller's identity from the session cookie, or from a
// Bearer Authorization header when no cookie is sent. It never blocks: an
// absent or invalid session leaves the request anonymous.
func Session(auth authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if appErrors.FromError(err).Status >= 500 {
				_ = c.Error(err)
			}
			c.Next()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity resolved for the request, if any.
func IdentityFrom(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

// RequestMeta describes the caller for audit records.
func RequestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{
		Actor:     IdentityFrom(c),
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return cookie
		}
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
