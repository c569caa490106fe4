package middleware

import (
	"github.com/gin-gonic/gin"

	"repairhub-backend/internal/shared"
	"repairhub-backend/internal/shared/response"
)

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(shared.ContextKeyUserRole)
		if role != shared.RoleAdmin {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
