package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/westpoint-events/rsvpd/pkg/response"
	"github.com/westpoint-events/rsvpd/pkg/token"
)

// AdminAuth gates the admin views behind a bearer token issued by the
// admin login endpoint.
func AdminAuth(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		if err := tokens.ValidateAdminToken(parts[1]); err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Next()
	}
}
