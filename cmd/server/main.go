package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pricematrix/backend/config"
	"github.com/pricematrix/backend/internal/app"
	httpDelivery "github.com/pricematrix/backend/internal/delivery/http"
	"github.com/pricematrix/backend/internal/infrastructure/ratelimit"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("server exited")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	app.SetupLogger(cfg.Server.Environment)
	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("store", cfg.Store.Driver).
		Msg("starting pricematrix backend v1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store, LLM, scraper and workflow
	components, err := app.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize price workflow: %w", err)
	}
	defer components.Close()

	limiter, closeLimiter, err := buildLimiter(ctx, cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer closeLimiter()

	// Create HTTP handler and router
	handler := httpDelivery.NewHandler(components.Service)
	router := httpDelivery.SetupRouter(cfg, handler, limiter)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// buildLimiter returns the per-client limiter for cfg.Type and its cleanup func
func buildLimiter(ctx context.Context, cfg config.RateLimitConfig) (ratelimit.Limiter, func(), error) {
	if cfg.Type == "redis" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Int("per_minute", cfg.PerMinute).Msg("redis rate limiter connected")
		return ratelimit.NewRedisLimiter(client, cfg.PerMinute), func() { _ = client.Close() }, nil
	}

	log.Info().Int("per_minute", cfg.PerMinute).Msg("in-memory rate limiter enabled")
	return ratelimit.NewMemoryLimiter(cfg.PerMinute), func() {}, nil
}
