package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "lumi_session"

// Context keys set by the session middleware for authenticated requests.
const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// SetSessionCookie attaches the session token to the response.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetCookie(SessionCookieName, token, int(ttl.Seconds()), "/", "", false, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}

// CurrentUserID returns the authenticated user's ID, or "" for anonymous
// requests.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// CurrentUsername returns the authenticated user's username, or "".
func CurrentUsername(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}

// RedirectToLogin sends unauthenticated users to the login form.
func RedirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login")
}
