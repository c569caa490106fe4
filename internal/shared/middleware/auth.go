package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"repairhub-backend/internal/shared"
	"repairhub-backend/internal/shared/response"
)

// AuthMiddleware validates an HS256 bearer token and stores
// user_id and role on the gin context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Read "Authorization: Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		// 2. Verify signature and expiry
		claims := jwt.MapClaims{}
		parsedToken, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !parsedToken.Valid {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		// 3. Extract identity
		userIDStr, ok := claims["user_id"].(string)
		if !ok {
			response.Unauthorized(c, "invalid user ID in token")
			c.Abort()
			return
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			response.Unauthorized(c, "invalid UUID format")
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)

		c.Set(shared.ContextKeyUserID, userID)
		c.Set(shared.ContextKeyUserRole, role)
		c.Next()
	}
}

// GetUserID returns the authenticated user, if any.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(shared.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
