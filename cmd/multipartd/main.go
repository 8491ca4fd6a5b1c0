// Command multipartd serves the multipart upload API.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/input-output-hk/catalyst-forge-libs/multipart"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/config"
	"github.com/input-output-hk/catalyst-forge-libs/multipart/internal/httpapi"
)

var version = "0.0.1-dev"

func main() {
	configPath := flag.String("config", os.Getenv("MULTIPART_CONFIG"), "path to a configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("multipartd failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := cfg.Storage.BuildStore(ctx)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	manager, err := multipart.New(store,
		multipart.WithPartSize(cfg.Upload.PartSize),
		multipart.WithPresignExpiry(cfg.Upload.PresignExpiry),
		multipart.WithLogger(logger),
		multipart.WithMetrics(reg),
	)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(manager, httpapi.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Gatherer:       reg,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("multipartd listening",
			"version", version,
			"addr", cfg.Server.Address,
			"backend", manager.Backend())
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("multipartd stopped")
	return nil
}
