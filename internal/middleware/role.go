package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/workbridg/workbridg-web/internal/errors"
	"github.com/workbridg/workbridg-web/internal/models"
)

// RequireRole rejects API requests from users outside roles with 403.
// It must run after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hasRole(GetRole(c), roles) {
			apierrors.Forbidden(c, "Your role cannot perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireDashboardRole sends users whose role does not own the dashboard to
// their own dashboard. It must run after RequirePageAuth.
func RequireDashboardRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		own := GetRole(c)
		if own != role {
			c.Redirect(http.StatusSeeOther, own.DashboardPath())
			c.Abort()
			return
		}
		c.Next()
	}
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
