package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"plutus/internal/config"
	"plutus/internal/log"
	"plutus/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentSweeper)
	log.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	sweep := func() {
		sweepCtx, sweepCancel := context.WithTimeout(ctx, 30*time.Second)
		defer sweepCancel()

		purged, err := repo.DeleteExpiredShareLinks(sweepCtx, time.Now().UTC())
		if err != nil {
			logger.ErrorContext(sweepCtx, "Sweep failed", "error", err)
			return
		}
		if purged > 0 {
			logger.InfoContext(sweepCtx, "Purged expired share links", "count", purged)
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, sweep); err != nil {
		logger.ErrorContext(ctx, "Invalid sweep schedule", "error", err, "schedule", cfg.SweepSchedule)
		os.Exit(1)
	}

	// One pass at startup so a long downtime does not leave stale links
	// resolvable until the next tick.
	sweep()

	logger.InfoContext(ctx, "Starting share link sweeper", "schedule", cfg.SweepSchedule)
	scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.InfoContext(ctx, "Shutdown signal received", "signal", sig.String())

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
		logger.WarnContext(ctx, "Sweep still running at shutdown deadline")
	}
	logger.InfoContext(context.Background(), "Sweeper stopped")
}
