package middleware

import (
	"net/http"
	"strings"

	"recruitment_portal/internal/metrics"
	"recruitment_portal/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey = "authUser"
	AuthRoleKey = "authRole"
)

// JWTAuthMiddleware creates a middleware for JWT authentication. Every
// request is verified again; nothing is cached between requests.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil, rec metrics.Recorder) gin.HandlerFunc {
	if rec == nil {
		rec = metrics.Nop{}
	}
	unauthorized := func(c *gin.Context, msg string) {
		rec.RecordAuthEvent(metrics.EventUnauthenticated)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := jwtUtil.ValidateToken(parts[1])
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(AuthUserKey, claims.User.ID)
		c.Set(AuthRoleKey, claims.User.Role)

		c.Next()
	}
}

// GetUserID returns the authenticated user id set by JWTAuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	return getString(c, AuthUserKey)
}

// GetRole returns the authenticated role set by JWTAuthMiddleware
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, AuthRoleKey)
}

func getString(c *gin.Context, key string) (string, bool) {
	val, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := val.(string)
	return s, ok && s != ""
}
