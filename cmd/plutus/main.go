package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"plutus/internal/amqp"
	"plutus/internal/auth"
	"plutus/internal/cache"
	"plutus/internal/config"
	apphttp "plutus/internal/http"
	"plutus/internal/log"
	"plutus/internal/services"
	"plutus/internal/storage"
)

func main() {
	// Load .env for local development, ignore errors in production.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.ErrorContext(context.Background(), "Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.ErrorContext(context.Background(), "Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Publishing is best effort. The client connects lazily, so a down
	// broker does not block startup.
	events := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	defer events.Close()

	authSvc := auth.NewService(repo, cfg.JWTSecret, cfg.TokenTTL)

	snapshots := cache.NewLRUCache[[]services.LeaderboardEntry](128, cfg.LeaderboardCacheTTL)
	caches := cache.NewManager()
	caches.Register(snapshots)
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:         authSvc,
		Resolver:     authSvc,
		Transactions: services.NewTransactionService(repo, events),
		Budgets:      services.NewBudgetService(repo, repo),
		Allocations:  services.NewAllocationService(repo),
		Shares:       services.NewShareService(repo),
		Leaderboard:  services.NewLeaderboardService(repo, repo, snapshots),
		Users:        repo,
		Ready:        repo.Ping,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.InfoContext(ctx, "Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.InfoContext(ctx, "Starting plutus server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.InfoContext(context.Background(), "Server stopped gracefully")
}
