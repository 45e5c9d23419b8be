// file: cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"athmageeth-portal/logger"
	"athmageeth-portal/server"
	"athmageeth-portal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the registration API and admin dashboard",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if err := prepareStore(ctx, a.store); err != nil {
		return err
	}

	var handler http.Handler = server.NewRouter(a.routerDeps())
	if cfg.Tracing.Enabled {
		handler = xray.Handler(xray.NewFixedSegmentNamer(cfg.Tracing.Service), handler)
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info.Printf("[runServe] listening on %s (env=%s)", cfg.HTTP.Addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("running server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info.Println("[runServe] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// prepareStore fails when the store cannot enforce unique WhatsApp numbers.
func prepareStore(ctx context.Context, st store.RegistrationStore) error {
	if err := st.EnsureIndexes(ctx); err != nil {
		logger.Error.Printf("[prepareStore] %v", err)
		return fmt.Errorf("ensuring indexes: %w", err)
	}
	return nil
}
