package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reliefops/volunteer-match/internal/models"
)

// Context keys set by RequireAuth.
const (
	ContextUserID = "auth_user_id"
	ContextRole   = "auth_role"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity on the gin context.
func RequireAuth(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			return
		}

		claims, err := m.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's user id.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
