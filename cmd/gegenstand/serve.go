package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/gegenstand/internal/api"
	"github.com/erazemk/gegenstand/internal/auth"
	"github.com/erazemk/gegenstand/internal/config"
	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/ratelimit"
	"github.com/erazemk/gegenstand/internal/service"
	"github.com/erazemk/gegenstand/internal/store"
)

func serve(cfg *config.Config, database *sql.DB) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load JWT secret from database (auto-generated on first run) unless set.
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		var err error
		if jwtSecret, err = store.GetJWTSecret(ctx, database); err != nil {
			return fmt.Errorf("getting JWT secret: %w", err)
		}
	}

	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, auth rate limiting fails open", "addr", cfg.RedisAddr, "error", err)
		}
		limiter = ratelimit.New(rdb, "gegenstand:auth", cfg.AuthRate, float64(cfg.AuthBurst))
		slog.Info("auth rate limiting enabled", "rate", cfg.AuthRate, "burst", cfg.AuthBurst)
	}

	reminders := service.NewReminders(database, newNotifier(cfg))
	if cfg.SweepInterval > 0 {
		go reminders.Run(ctx, cfg.SweepInterval, model.Today)
	}

	handler := api.NewRouter(database, api.Options{
		Tokens:         auth.NewTokens(jwtSecret, cfg.TokenTTL),
		Reminders:      reminders,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
