package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
)

// RequireAdmin checks the token's role claim. This is a cheap first gate;
// the admin services re-check the role against the members table inside the
// call, so a stale token cannot grant the bypass on its own.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != string(domain.RoleAdmin) {
			common.ErrorResponse(c, http.StatusForbidden, "Admin role required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
