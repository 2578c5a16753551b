// Command server runs the forum HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emilythestrangee/forum/backend/internal/cache"
	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/database"
	"github.com/emilythestrangee/forum/backend/internal/observability"
	"github.com/emilythestrangee/forum/backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.Logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := observability.InitLogger(cfg.LogLevel)

	db, err := database.New(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var c *cache.Cache
	if cfg.RedisURL != "" {
		c, err = cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Warn("redis unavailable, serving without cache", "error", err)
			c = nil
		} else {
			logger.Info("redis cache enabled", "ttl", cfg.CacheTTL.String())
		}
	}

	srv := server.NewServer(cfg, db, c).HTTPServer()

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := c.Close(); err != nil {
		logger.Error("cache close error", "error", err)
	}
	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}
}
