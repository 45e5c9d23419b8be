// Package server assembles the gin router for the portal.
// file: server/router.go
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"athmageeth-portal/controllers"
	"athmageeth-portal/metrics"
	"athmageeth-portal/middleware"
)

// Authenticator issues sessions and verifies them at the admin gate.
type Authenticator interface {
	controllers.SessionAuthenticator
	middleware.SessionVerifier
}

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Registration controllers.RegistrationSubmitter
	Admin        controllers.AdminQuerier
	Auth         Authenticator
	Receipts     controllers.ReceiptSaver
	// Sheets may be nil when no spreadsheet is configured.
	Sheets   controllers.SheetsPusher
	Updates  controllers.LiveUpdateServer
	Metrics  metrics.Recorder
	Location *time.Location

	AppURL string
	// ReceiptsDir and ReceiptsURL serve locally stored receipts; both empty
	// when receipts live elsewhere.
	ReceiptsDir string
	ReceiptsURL string

	SessionSecret        []byte
	SessionEncryptionKey []byte
	CookieSecure         bool
}

// NewRouter wires every route of the portal.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.SecurityHeaders())

	cookieOpts := sessions.Options{
		Path:     "/",
		MaxAge:   int(d.Auth.TTL().Seconds()),
		HttpOnly: true,
		Secure:   d.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	keyPairs := [][]byte{d.SessionSecret}
	if len(d.SessionEncryptionKey) > 0 {
		keyPairs = append(keyPairs, d.SessionEncryptionKey)
	}
	store := cookie.NewStore(keyPairs...)
	store.Options(cookieOpts)
	router.Use(sessions.Sessions(middleware.SessionName, store))

	registration := controllers.NewRegistrationController(d.Registration)
	upload := controllers.NewUploadController(d.Receipts)
	pages := controllers.NewPageController(d.AppURL)
	auth := controllers.NewAuthController(d.Auth, d.Metrics, cookieOpts)
	admin := controllers.NewAdminController(d.Admin, d.Sheets, d.Location)

	// Public routes
	router.GET("/health", controllers.Health)
	router.GET("/qrcode", pages.GetQRCode)
	router.POST("/api/register", registration.Register)
	router.POST("/api/upload", upload.Upload)
	if d.ReceiptsDir != "" && d.ReceiptsURL != "" {
		router.Static(d.ReceiptsURL, d.ReceiptsDir)
	}

	// Admin routes; the gate lets the login entry through
	protected := router.Group("/admin", middleware.AdminRequired(d.Auth))
	{
		protected.GET("/login", auth.LoginPage)
		protected.POST("/login", auth.Login)

		protected.GET("", admin.Dashboard)
		protected.GET("/registrations", admin.List)
		protected.DELETE("/registrations/:id", admin.Delete)
		protected.GET("/stats", admin.Stats)
		protected.GET("/export", admin.ExportCSV)
		protected.POST("/export/sheets", admin.ExportSheets)
		protected.GET("/updates", controllers.LiveUpdates(d.Updates))
		protected.GET("/logout", auth.Logout)
		protected.POST("/logout", auth.Logout)
	}

	return router
}
