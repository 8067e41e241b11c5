package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/constants"
	apierrors "github.com/workbridg/workbridg-web/internal/errors"
	"github.com/workbridg/workbridg-web/internal/models"
)

// LoadSession copies the session user into the gin context and attaches the
// session's backend credentials to the request context. It never rejects.
func LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		if userID, ok := session.Get(constants.ContextKeyUserID).(string); ok && userID != "" {
			c.Set(constants.ContextKeyUserID, userID)
			if username, ok := session.Get(constants.ContextKeyUsername).(string); ok {
				c.Set(constants.ContextKeyUsername, username)
			}
			if role, ok := session.Get(constants.ContextKeyRole).(string); ok {
				c.Set(constants.ContextKeyRole, models.Role(role))
			}
			ctx := backend.WithTokens(c.Request.Context(), NewSessionTokens(session))
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// RequireAuth rejects API requests without a signed-in session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetUserID(c); !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePageAuth redirects anonymous page requests to the login page,
// remembering where they were going.
func RequirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetUserID(c); !exists {
			c.Redirect(http.StatusSeeOther, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRedirect builds the login URL that returns to next afterwards.
func LoginRedirect(next string) string {
	if next == "" || next == "/" || next == apierrors.LoginPath {
		return apierrors.LoginPath
	}
	return apierrors.LoginPath + "?next=" + url.QueryEscape(next)
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(constants.ContextKeyUserID)
	return userID, userID != ""
}

// GetRole retrieves the current user's role from context
func GetRole(c *gin.Context) models.Role {
	if role, ok := c.Get(constants.ContextKeyRole); ok {
		if r, ok := role.(models.Role); ok {
			return r
		}
	}
	return ""
}

// GetUsername retrieves the current username from context
func GetUsername(c *gin.Context) string {
	return c.GetString(constants.ContextKeyUsername)
}
