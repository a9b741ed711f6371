package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyUsername holds the identified username for downstream handlers.
const ContextKeyUsername = "username"

// RequireUsername lets a request through only when the session carries a
// username. Pages redirect to the username form with a warning, API calls
// get 401.
func (sm *SessionManager) RequireUsername() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := sm.Username(c.Request.Context())
		if username != "" {
			c.Set(ContextKeyUsername, username)
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "username required",
			})
			return
		}

		sm.Warn(c.Request.Context(), "Enter a username to start studying.")
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
	}
}

// GetUsername returns the username set by RequireUsername.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}
