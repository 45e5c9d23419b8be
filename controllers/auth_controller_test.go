// file: controllers/auth_controller_test.go
package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athmageeth-portal/logger"
	"athmageeth-portal/middleware"
	"athmageeth-portal/services"
)

// loginRecorder counts AdminLogin outcomes.
type loginRecorder struct {
	outcomes []bool
}

func (r *loginRecorder) RegistrationSubmitted(string) {}
func (r *loginRecorder) RegistrationDeleted()         {}
func (r *loginRecorder) AdminLogin(ok bool)           { r.outcomes = append(r.outcomes, ok) }

func setupAuthRouter(t *testing.T, auth SessionAuthenticator, rec *loginRecorder) *gin.Engine {
	router := setupTestRouter(t)
	ac := NewAuthController(auth, rec, sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	router.GET("/admin/login", ac.LoginPage)
	router.POST("/admin/login", ac.Login)
	router.POST("/admin/logout", ac.Logout)
	return router
}

func postLogin(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Login", "athmageeth").Return(services.Session{Token: "signed", Role: services.AdminRole, ExpiresAt: time.Now().Add(24 * time.Hour)}, nil)
	rec := &loginRecorder{}
	router := setupAuthRouter(t, auth, rec)

	w := postLogin(router, url.Values{"password": {"athmageeth"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	cookie := findCookie(w.Result().Cookies())
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 86400, cookie.MaxAge)
	assert.Equal(t, "signed", readSessionToken(t, router, cookie))
	assert.Equal(t, []bool{true}, rec.outcomes)
}

func TestLogin_JSONBody(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Login", "pw").Return(services.Session{Token: "t"}, nil)
	router := setupAuthRouter(t, auth, &loginRecorder{})

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Login", "nope").Return(services.Session{}, services.ErrInvalidCredentials)
	rec := &loginRecorder{}
	router := setupAuthRouter(t, auth, rec)

	w := postLogin(router, url.Values{"password": {"nope"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid password"}`, w.Body.String())
	assert.Nil(t, findCookie(w.Result().Cookies()))
	assert.Equal(t, []bool{false}, rec.outcomes)
}

func TestLogin_MalformedBodyIsLoggedAndRejected(t *testing.T) {
	var logs bytes.Buffer
	prev := logger.Debug.Writer()
	logger.Debug.SetOutput(&logs)
	t.Cleanup(func() { logger.Debug.SetOutput(prev) })

	auth := new(MockAuthenticator)
	auth.On("Login", "").Return(services.Session{}, services.ErrInvalidCredentials)
	rec := &loginRecorder{}
	router := setupAuthRouter(t, auth, rec)

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, logs.String(), "[Login] unreadable login request")
	assert.Equal(t, []bool{false}, rec.outcomes)
	auth.AssertExpectations(t)
}

func TestLogout_ClearsToken(t *testing.T) {
	router := setupAuthRouter(t, new(MockAuthenticator), &loginRecorder{})
	existing := SetSession(router, "/set-session", map[string]interface{}{middleware.SessionKeyToken: "signed"})
	require.NotNil(t, existing)

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(existing)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, middleware.LoginPath, w.Header().Get("Location"))
	cleared := findCookie(w.Result().Cookies())
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)
}

func TestLoginPage(t *testing.T) {
	router := setupAuthRouter(t, new(MockAuthenticator), &loginRecorder{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "message")
}
