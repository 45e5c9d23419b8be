// Package middleware provides request filters and security checks for the portal.
// File: middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"athmageeth-portal/logger"
	"athmageeth-portal/services"
)

const (
	// SessionName is the cookie holding the admin session.
	SessionName = "session"
	// SessionKeyToken is the session value carrying the signed token.
	SessionKeyToken = "token"
	// ContextKeySession is where the verified session is exposed to handlers.
	ContextKeySession = "adminSession"

	LoginPath = "/admin/login"
)

// SessionVerifier checks a session token.
type SessionVerifier interface {
	Verify(token string) (services.Session, error)
}

// -------------- admin gate --------------

// AdminRequired lets a request through only when the session carries a
// valid admin token. Everything else, including a missing or malformed
// session, is redirected to the login entry. The login entry itself is
// never gated.
func AdminRequired(v SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isLoginPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, _ := sessions.Default(c).Get(SessionKeyToken).(string)
		sess, err := v.Verify(token)
		if err != nil {
			logger.Debug.Printf("[AdminRequired] %s %s redirected to login: %v", c.Request.Method, c.Request.URL.Path, err)
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		c.Set(ContextKeySession, sess)
		c.Next()
	}
}

func isLoginPath(path string) bool {
	return strings.TrimRight(path, "/") == LoginPath
}

// -------------- security headers --------------

// SecurityHeaders forbids framing and MIME sniffing on every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "same-origin")
		c.Next()
	}
}
