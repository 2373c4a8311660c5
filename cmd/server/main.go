package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shared-clipboard/internal/api"
	"shared-clipboard/internal/config"
	"shared-clipboard/internal/logs"
	"shared-clipboard/internal/metrics"
	"shared-clipboard/internal/store"
	"shared-clipboard/internal/ttl"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	// Root context, cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logger
	logger, err := logs.NewProduction(logs.ParseLevel(cfg.Server.LogLevel), cfg.Logs.BufferSize)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		err = multierr.Append(err, ignoreSyncStdio(logger.Sync()))
	}()

	// Metrics
	metricsRegistry := metrics.NewRegistry()

	// Store
	clipStore := store.NewStore(metricsRegistry, store.WithRetention(cfg.Clipboard.Retention))

	// TTL cleaner
	ttlCleaner := ttl.NewCleaner(clipStore, cfg.TTL.Interval, logger, metricsRegistry)
	go ttlCleaner.Start(ctx)

	// API
	opts := []api.Option{api.WithMaxBodyBytes(cfg.API.MaxBodyBytes)}
	if cfg.Monitoring.Prometheus.Enabled {
		promRegistry, err := metrics.NewPrometheusRegistry(metricsRegistry, cfg.Monitoring.Prometheus.Namespace)
		if err != nil {
			return fmt.Errorf("init prometheus: %w", err)
		}
		opts = append(opts, api.WithPrometheus(metrics.Handler(promRegistry)))
	}

	handler := api.NewHandler(clipStore, metricsRegistry, logger, opts...)
	mux := http.NewServeMux()

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.RegisterRoutes(mux, handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server started",
			zap.String("address", cfg.Server.Address),
			zap.Duration("retention", cfg.Clipboard.Retention),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// ignoreSyncStdio drops the EINVAL/ENOTTY zap reports when stderr is a terminal.
func ignoreSyncStdio(err error) error {
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
