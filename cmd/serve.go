package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	docHandler "ignita/internal/document"
	"ignita/internal/document/service"
	"ignita/pkg/logger"
	"ignita/pkg/metrics"
	"ignita/router"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ignita server",
	Long: `Start the ignita server. The configuration is read from the environment
(and a .env file when present), e.g. STORE_DRIVER=sqlite LISTEN_ADDRESS=:9090.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		logger.Sugar.Warn("JWT_SECRET is empty, every token will be rejected")
	}

	repo, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.NewDocumentService(repo, cfg.RetryPolicy(), metrics.NewMutations(prometheus.DefaultRegisterer))
	h := docHandler.NewDocumentHandler(svc)

	srv := &http.Server{
		Addr: cfg.ListenAddress,
		Handler: router.Setup(h, router.Options{
			JWTSecret:      []byte(cfg.JWTSecret),
			AllowedOrigins: cfg.Origins(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("Ignita listening on %s (%s store)", cfg.ListenAddress, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
