package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spi-admin-api/internal/models"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
	"github.com/noah-isme/spi-admin-api/pkg/response"
)

// RequireRole enforces role-based access control for routes. Anonymous
// callers get 401, authenticated callers outside roles get 403.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[identity.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Insufficient permissions"))
			return
		}
		c.Next()
	}
}
