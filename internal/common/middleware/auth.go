package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tourbook/service-earnings/internal/common/auth"
	"github.com/tourbook/service-earnings/internal/common/domain"
	"github.com/tourbook/service-earnings/internal/common/response"
)

const (
	userIDKey = "auth.user_id"
	roleKey   = "auth.role"
)

// AuthMiddleware validates the bearer token and stores the caller's identity on the context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			response.Error(c, domain.NewUnauthorizedError("missing bearer token"))
			return
		}

		claims, err := jwtManager.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			response.Error(c, domain.NewUnauthorizedError("invalid or expired token"))
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed list.
// It must run after AuthMiddleware.
func RequireRole(allowed ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			response.Error(c, domain.NewUnauthorizedError("unauthorized"))
			return
		}
		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, domain.NewForbiddenError("you do not have permission to access this resource"))
	}
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetRole returns the authenticated user's role.
func GetRole(c *gin.Context) (auth.Role, bool) {
	v, ok := c.Get(roleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(auth.Role)
	return role, ok
}
