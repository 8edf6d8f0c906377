package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"plutus/internal/amqp"
	"plutus/internal/cache"
	"plutus/internal/config"
	"plutus/internal/export/sheets"
	"plutus/internal/log"
	"plutus/internal/services"
	"plutus/internal/storage"
	"plutus/internal/worker"
)

// warmupMonths is how far back the startup snapshot warmup reaches.
const warmupMonths = 3

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.InfoContext(ctx, "Starting plutus-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.ErrorContext(ctx, "Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The sheets export is optional. Without a spreadsheet ID the worker
	// still maintains leaderboard snapshots.
	var exporter worker.SummaryExporter
	sheetsClient, err := sheets.NewFromConfig(ctx, cfg)
	switch {
	case err == nil:
		exporter = sheetsClient
		logger.InfoContext(ctx, "Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case errors.Is(err, sheets.ErrDisabled):
		logger.InfoContext(ctx, "Sheets export disabled, no spreadsheet configured")
	default:
		logger.ErrorContext(ctx, "Failed to initialize sheets client", "error", err)
		os.Exit(1)
	}

	snapshots := cache.NewLRUCache[[]services.LeaderboardEntry](128, cfg.LeaderboardCacheTTL)
	caches := cache.NewManager()
	caches.Register(snapshots)
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	leaderboard := services.NewLeaderboardService(repo, repo, snapshots)
	transactions := services.NewTransactionService(repo, nil)

	eventWorker := worker.NewEventWorker(leaderboard, transactions, repo, exporter, cfg.WorkerConcurrency)

	if err := eventWorker.WarmupSnapshots(ctx, time.Now().UTC(), warmupMonths); err != nil {
		// Warmup failures are not fatal, snapshots rebuild on demand.
		logger.WarnContext(ctx, "Snapshot warmup incomplete", "error", err)
	}

	events := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	defer events.Close()

	go func() {
		err := events.ConsumeTransactionEvents(ctx, func(ev *amqp.TransactionEvent) error {
			return eventWorker.HandleEvent(ctx, ev)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorContext(ctx, "Event consumption failed", "error", err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.InfoContext(ctx, "Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.InfoContext(context.Background(), "Context cancelled")
	}

	cancel()

	// Give in-flight deliveries a moment to settle before exiting.
	time.Sleep(2 * time.Second)
	logger.InfoContext(context.Background(), "Worker shutdown complete")
}
