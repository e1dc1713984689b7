package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/katonobu/satellite-orbit/internal/api"
	"github.com/katonobu/satellite-orbit/internal/config"
	"github.com/katonobu/satellite-orbit/internal/pipeline"
	"github.com/katonobu/satellite-orbit/internal/propagation"
	"github.com/katonobu/satellite-orbit/internal/tle"
	"github.com/katonobu/satellite-orbit/internal/tracing"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.LogLevel(),
	}))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Error("tracing setup failed", "error", err)
		os.Exit(1)
	}

	store := tle.NewStore()
	src := tle.NewSource(cfg.TLE, store, logger)

	// Attempt to load cached TLE data on startup so /readyz passes before
	// the first request.
	if n, err := src.Warm(cfg.Pipeline.SourceURL); err != nil {
		logger.Info("no usable TLE cache, starting without TLE data", "error", err)
	} else {
		logger.Info("loaded TLE data from cache", "count", n)
	}

	pipe := pipeline.New(cfg.Pipeline, src, propagation.NewSGP4(logger), logger)

	srv := api.NewServer(api.Config{
		Addr:       cfg.HTTPAddr,
		Auth:       cfg.Auth,
		TrustProxy: cfg.TrustProxy,
		Location:   cfg.Location,
		Observer:   cfg.Observer,
	}, pipe, store, logger)

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr, "auth_enabled", cfg.Auth.Enabled, "timezone", cfg.Location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	tracing.Shutdown(context.Background(), shutdownTracing, logger)

	logger.Info("server stopped")
}
