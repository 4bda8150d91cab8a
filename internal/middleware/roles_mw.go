package middleware

import (
	"net/http"

	"recruitment_portal/internal/metrics"
	"recruitment_portal/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware lets the request through only when the authenticated role
// is one of allowedRoles. It must run after JWTAuthMiddleware.
func RoleMiddleware(rec metrics.Recorder, allowedRoles ...string) gin.HandlerFunc {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return func(c *gin.Context) {
		userRole, ok := GetRole(c)
		if !ok {
			// no identity means the request never authenticated
			rec.RecordAuthEvent(metrics.EventUnauthenticated)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}

		rec.RecordAuthEvent(metrics.EventForbidden)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware(rec metrics.Recorder) gin.HandlerFunc {
	return RoleMiddleware(rec, model.RoleAdmin)
}
