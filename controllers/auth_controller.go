// File: controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"athmageeth-portal/logger"
	"athmageeth-portal/metrics"
	"athmageeth-portal/middleware"
	"athmageeth-portal/services"
)

// SessionAuthenticator issues and revokes admin sessions.
type SessionAuthenticator interface {
	Login(password string) (services.Session, error)
	Logout() services.Session
	TTL() time.Duration
}

// AuthController handles admin login and logout.
type AuthController struct {
	Auth    SessionAuthenticator
	Metrics metrics.Recorder
	// Cookie carries the cookie attributes; MaxAge is set per response.
	Cookie sessions.Options
}

// NewAuthController initializes an AuthController.
func NewAuthController(auth SessionAuthenticator, rec metrics.Recorder, cookie sessions.Options) *AuthController {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthController{Auth: auth, Metrics: rec, Cookie: cookie}
}

type loginRequest struct {
	Password string `form:"password" json:"password"`
}

// LoginPage is the login entry. Pages are rendered by the frontend; this
// only tells the client where it is.
func (ac *AuthController) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Admin login"})
}

// Login checks the password and stores a signed session token.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Debug.Printf("[Login] unreadable login request from %s: %v", c.ClientIP(), err)
	}

	sess, err := ac.Auth.Login(req.Password)
	if err != nil {
		ac.Metrics.AdminLogin(false)
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
			return
		}
		logger.Error.Printf("[Login] issuing session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	session := sessions.Default(c)
	opts := ac.Cookie
	opts.MaxAge = int(ac.Auth.TTL().Seconds())
	session.Options(opts)
	session.Set(middleware.SessionKeyToken, sess.Token)
	if err := session.Save(); err != nil {
		logger.Error.Printf("[Login] saving session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	ac.Metrics.AdminLogin(true)
	logger.Info.Printf("[Login] admin logged in from %s", c.ClientIP())
	c.Redirect(http.StatusFound, "/admin")
}

// Logout overwrites the session with an empty, already expired token.
func (ac *AuthController) Logout(c *gin.Context) {
	session := sessions.Default(c)
	opts := ac.Cookie
	opts.MaxAge = -1
	session.Options(opts)
	session.Set(middleware.SessionKeyToken, ac.Auth.Logout().Token)
	if err := session.Save(); err != nil {
		logger.Error.Printf("[Logout] saving session: %v", err)
	} else {
		logger.Info.Println("[Logout] admin session cleared")
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}
