// file: cmd/app.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-xray-sdk-go/xray"

	"athmageeth-portal/config"
	"athmageeth-portal/export"
	"athmageeth-portal/logger"
	"athmageeth-portal/metrics"
	"athmageeth-portal/receipts"
	"athmageeth-portal/server"
	"athmageeth-portal/services"
	"athmageeth-portal/store"
	"athmageeth-portal/validation"
	"athmageeth-portal/websocket"
)

// app is the fully wired portal.
type app struct {
	cfg          config.Config
	store        store.RegistrationStore
	hub          *websocket.Hub
	admin        *services.AdminService
	registration *services.RegistrationService
	auth         *services.Authenticator
	receipts     *receipts.Service
	sheets       *export.SheetsPusher
	metrics      metrics.Recorder
	location     *time.Location
}

// buildApp connects the store and constructs every service from c.
func buildApp(ctx context.Context, c config.Config) (*app, error) {
	loc, err := export.LoadLocation(c.Export.Timezone)
	if err != nil {
		return nil, err
	}

	auth, err := services.NewAuthenticator(services.AuthConfig{
		Password:     c.Admin.Password,
		PasswordHash: c.Admin.PasswordHash,
		SigningKey:   []byte(c.Session.Secret),
		TTL:          c.Session.TTL,
	})
	if err != nil {
		return nil, err
	}

	var sess *session.Session
	if c.Receipts.Driver == "s3" || c.Metrics.Enabled {
		sess, err = session.NewSession(&aws.Config{Region: aws.String(c.S3.Region)})
		if err != nil {
			return nil, fmt.Errorf("creating aws session: %w", err)
		}
	}

	rec := newRecorder(c, sess)
	blob, err := newBlob(c, sess)
	if err != nil {
		return nil, err
	}

	var sheets *export.SheetsPusher
	if c.Sheets.SpreadsheetID != "" {
		sheets, err = export.NewSheetsPusher(ctx, c.Sheets.CredentialsFile, c.Sheets.SpreadsheetID, c.Sheets.Tab)
		if err != nil {
			return nil, err
		}
	}

	st, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}

	hub := websocket.NewHub(c.App.URL)
	admin := services.NewAdminService(st, services.AdminOptions{
		PageSize:   c.Admin.PageSize,
		CacheTTL:   c.Cache.TTL,
		Downstream: hub,
		Metrics:    rec,
	})
	engine := validation.New(validation.WithReceiptRequired(c.Registration.RequireReceipt))

	return &app{
		cfg:          c,
		store:        st,
		hub:          hub,
		admin:        admin,
		registration: services.NewRegistrationService(st, engine, services.Notifiers{admin, hub}, rec),
		auth:         auth,
		receipts:     receipts.NewService(blob, c.Receipts.MaxBytes),
		sheets:       sheets,
		metrics:      rec,
		location:     loc,
	}, nil
}

// openStore connects the configured store. Only the Mongo store needs a
// connect timeout.
func openStore(ctx context.Context, c config.Config) (store.RegistrationStore, error) {
	if c.Store.Driver == "memory" {
		logger.Warn.Println("[openStore] using the in-memory store; registrations are lost on restart")
		return store.NewMemoryStore(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.Mongo.Timeout)
	defer cancel()
	return store.NewMongoStore(ctx, c.Mongo.URI, c.Mongo.Database, c.Mongo.Collection)
}

func newBlob(c config.Config, sess *session.Session) (receipts.Blob, error) {
	if c.Receipts.Driver != "s3" {
		return receipts.NewLocalBlob(c.Receipts.Dir, c.Receipts.BaseURL), nil
	}
	svc := s3.New(sess)
	traceClient(c, svc.Client)
	logger.Info.Printf("[newBlob] storing receipts in s3 bucket=%s", c.S3.Bucket)
	return receipts.NewS3Blob(svc, receipts.S3Config{
		Bucket:    c.S3.Bucket,
		Region:    c.S3.Region,
		Prefix:    c.S3.Prefix,
		PublicURL: c.S3.PublicURL,
	}), nil
}

func newRecorder(c config.Config, sess *session.Session) metrics.Recorder {
	if !c.Metrics.Enabled {
		return metrics.Nop{}
	}
	svc := cloudwatch.New(sess)
	traceClient(c, svc.Client)
	return metrics.NewCloudWatch(svc, c.Metrics.Namespace)
}

func traceClient(c config.Config, cl *client.Client) {
	if c.Tracing.Enabled {
		xray.AWS(cl)
	}
}

// routerDeps maps the app onto the router's collaborators.
func (a *app) routerDeps() server.Deps {
	d := server.Deps{
		Registration:         a.registration,
		Admin:                a.admin,
		Auth:                 a.auth,
		Receipts:             a.receipts,
		Updates:              a.hub,
		Metrics:              a.metrics,
		Location:             a.location,
		AppURL:               a.cfg.App.URL,
		SessionSecret:        []byte(a.cfg.Session.Secret),
		SessionEncryptionKey: []byte(a.cfg.Session.EncryptionKey),
		CookieSecure:         a.cfg.Session.CookieSecure,
	}
	// a nil *SheetsPusher would make a non-nil interface
	if a.sheets != nil {
		d.Sheets = a.sheets
	}
	if a.cfg.Receipts.Driver == "local" {
		d.ReceiptsDir = a.cfg.Receipts.Dir
		d.ReceiptsURL = a.cfg.Receipts.BaseURL
	}
	return d
}

// close releases the hub and the store.
func (a *app) close(ctx context.Context) {
	a.hub.Close()
	if err := a.store.Close(ctx); err != nil {
		logger.Warn.Printf("[app.close] closing store: %v", err)
	}
}
