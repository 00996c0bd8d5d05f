package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xourcebase/backend/internal/auth"
	"github.com/xourcebase/backend/pkg/response"
)

// Context keys set by the JWT middleware for downstream handlers.
const (
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextUserEmail = "user_email"
)

// JWT guards a route group behind a Bearer token. On success the admin's
// identity is placed in the gin context under the Context* keys.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || scheme != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
