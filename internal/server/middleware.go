package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumbledor90/lumi-auctions-webapp/internal/auth"
	"github.com/dumbledor90/lumi-auctions-webapp/services/auction/helpers"
	"github.com/dumbledor90/lumi-auctions-webapp/utils"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// SessionMiddleware resolves the session cookie into the requester's
// identity. Requests with no cookie, or an expired or tampered token,
// proceed as anonymous.
func SessionMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookieName)
		if err == nil && token != "" {
			if claims, err := auth.ParseToken(token, secret); err == nil {
				c.Set(helpers.ContextUserIDKey, claims.UserID)
				c.Set(helpers.ContextUsernameKey, claims.Username)
			}
		}
		c.Next()
	}
}

// RequireAuth sends anonymous requests to the login page.
func RequireAuth(c *gin.Context) {
	if helpers.CurrentUserID(c) == "" {
		helpers.RedirectToLogin(c)
		c.Abort()
		return
	}
	c.Next()
}
