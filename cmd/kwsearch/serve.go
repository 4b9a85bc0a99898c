package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
	"github.com/kailas-cloud/kwsearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/kwsearch/internal/transport/chi"
	searchuc "github.com/kailas-cloud/kwsearch/internal/usecase/search"
	"github.com/kailas-cloud/kwsearch/internal/version"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *options) error {
	cfg, logger := opts.cfg, opts.logger

	logger.Info("Starting kwsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
	)

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.Info("Connected to database")

	metrics.RegisterSearchMetrics()

	userSvc, err := a.userSearch()
	if err != nil {
		return err
	}
	users := searchuc.Instrument(userSvc, domuser.Resource)
	saved, err := a.savedSearches(users)
	if err != nil {
		return err
	}
	registry, err := a.registry()
	if err != nil {
		return err
	}
	if len(registry.Resources()) == 0 {
		logger.Warn("No access policies configured; every request will be denied")
	}

	server := chiTransport.NewServer(users, saved, a.health(), registry, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		Logger:     logger,
		Principals: cfg.Principals(),
		Anonymous:  cfg.Anonymous(),
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
