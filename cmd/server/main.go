package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/bisu2000/CodeTwine-Real-time-code-editor/internal/app"
	"github.com/bisu2000/CodeTwine-Real-time-code-editor/internal/exec"
	httpx "github.com/bisu2000/CodeTwine-Real-time-code-editor/internal/http"
	"github.com/bisu2000/CodeTwine-Real-time-code-editor/internal/ws"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Execution proxy, with a redis result cache when configured
	runner := exec.New(cfg.ExecURL, cfg.ExecTimeout, logger)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis.unreachable, exec cache disabled", "err", err)
		} else {
			runner = runner.WithCache(rdb, cfg.CacheTTL)
			defer rdb.Close()
		}
	}

	// Room store + empty-room eviction
	store := ws.NewStore(cfg.RoomTTL, logger)
	go store.Run(ctx)

	// WebSocket hub
	hub := ws.NewHub(logger, store, runner)

	// HTTP + WS router
	router := httpx.NewRouter(cfg, logger, hub)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Keep-alive self-ping outside prod (some free hosts idle out)
	if cfg.Env != "prod" {
		go selfPing(ctx, logger, "http://localhost"+cfg.HTTPAddr)
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}

// selfPing GETs our own address every 30s until ctx is cancelled.
// Failures are logged and otherwise ignored.
func selfPing(ctx context.Context, logger *slog.Logger, url string) {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	client := &http.Client{Timeout: 10 * time.Second}
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			resp, err := client.Get(url)
			if err != nil {
				logger.Warn("pinger.error", "err", err)
				continue
			}
			_ = resp.Body.Close()
		}
	}
}
