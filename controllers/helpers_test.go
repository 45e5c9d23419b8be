// file: controllers/helpers_test.go
package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"athmageeth-portal/middleware"
	"athmageeth-portal/models"
	"athmageeth-portal/services"
)

// setupTestRouter creates a gin engine with the cookie session middleware.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions(middleware.SessionName, store))
	return router
}

// SetSession stores the given values through a helper route and returns the
// session cookie for later requests.
func SetSession(router *gin.Engine, route string, data map[string]interface{}) *http.Cookie {
	router.GET(route, func(c *gin.Context) {
		session := sessions.Default(c)
		for key, value := range data {
			session.Set(key, value)
		}
		if err := session.Save(); err != nil {
			c.String(http.StatusInternalServerError, "session save failed")
			return
		}
		c.String(http.StatusOK, "session set")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, route, nil))
	return findCookie(w.Result().Cookies())
}

func findCookie(cookies []*http.Cookie) *http.Cookie {
	for _, c := range cookies {
		if c.Name == middleware.SessionName {
			return c
		}
	}
	return nil
}

// readSessionToken reads the stored token back through a helper route.
func readSessionToken(t *testing.T, router *gin.Engine, cookie *http.Cookie) interface{} {
	t.Helper()
	var got interface{}
	router.GET("/read-session", func(c *gin.Context) {
		got = sessions.Default(c).Get(middleware.SessionKeyToken)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/read-session", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	router.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

// ---------------- mocks ----------------

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, in models.RegistrationInput) services.SubmitResult {
	args := m.Called(ctx, in)
	return args.Get(0).(services.SubmitResult)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) List(ctx context.Context, p services.ListParams) services.ListResult {
	args := m.Called(ctx, p)
	return args.Get(0).(services.ListResult)
}

func (m *MockAdminService) ListAll(ctx context.Context) ([]models.Registration, error) {
	args := m.Called(ctx)
	regs, _ := args.Get(0).([]models.Registration)
	return regs, args.Error(1)
}

func (m *MockAdminService) Remove(ctx context.Context, id string) services.RemoveResult {
	args := m.Called(ctx, id)
	return args.Get(0).(services.RemoveResult)
}

func (m *MockAdminService) Stats(ctx context.Context) models.DashboardStats {
	args := m.Called(ctx)
	return args.Get(0).(models.DashboardStats)
}

func (m *MockAdminService) Dashboard(ctx context.Context, p services.ListParams) services.DashboardResult {
	args := m.Called(ctx, p)
	return args.Get(0).(services.DashboardResult)
}

type MockSheets struct {
	mock.Mock
}

func (m *MockSheets) Push(ctx context.Context, regs []models.Registration, loc *time.Location) (int, error) {
	args := m.Called(ctx, regs, loc)
	return args.Int(0), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(password string) (services.Session, error) {
	args := m.Called(password)
	return args.Get(0).(services.Session), args.Error(1)
}

func (m *MockAuthenticator) Logout() services.Session {
	return services.Session{ExpiresAt: time.Unix(0, 0)}
}

func (m *MockAuthenticator) TTL() time.Duration { return 24 * time.Hour }

type MockReceipts struct {
	mock.Mock
}

func (m *MockReceipts) Save(ctx context.Context, r io.Reader, hint string) (string, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(data, hint)
	return args.String(0), args.Error(1)
}

func (m *MockReceipts) MaxBytes() int64 { return 1 << 10 }
