// Package worker consumes transaction change events and keeps the derived
// views current: leaderboard snapshots and the Google Sheets export.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"plutus/internal/amqp"
	"plutus/internal/core"
	"plutus/internal/services"
	"plutus/internal/storage"

	"golang.org/x/sync/errgroup"
)

// LeaderboardRefresher recomputes a month's ranking snapshot.
type LeaderboardRefresher interface {
	Refresh(ctx context.Context, year, month int) ([]services.LeaderboardEntry, error)
}

// SummaryReader produces the monthly financial summary for one owner.
type SummaryReader interface {
	MonthlySummary(ctx context.Context, ownerID string, year, month, tzOffsetMinutes int) (core.MonthlySummary, error)
}

// SummaryExporter writes one owner's monthly summary to an external sink.
type SummaryExporter interface {
	ExportMonthlySummary(ctx context.Context, owner storage.User, year, month int, summary core.MonthlySummary) error
}

type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (storage.User, error)
}

// EventWorker reacts to transaction events. Each event refreshes the
// affected month's leaderboard snapshot and re-exports the owner's monthly
// summary; the two run concurrently per event.
type EventWorker struct {
	leaderboard LeaderboardRefresher
	summaries   SummaryReader
	users       UserGetter
	exporter    SummaryExporter // nil disables the sheets export
	concurrency int
}

func NewEventWorker(leaderboard LeaderboardRefresher, summaries SummaryReader, users UserGetter, exporter SummaryExporter, concurrency int) *EventWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &EventWorker{
		leaderboard: leaderboard,
		summaries:   summaries,
		users:       users,
		exporter:    exporter,
		concurrency: concurrency,
	}
}

// HandleEvent processes one transaction event. Returning an error requeues
// the delivery, so both refresh and export must succeed.
func (w *EventWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "processing transaction event",
		"transaction_id", ev.TransactionID,
		"action", ev.Action,
		"year", ev.Year,
		"month", ev.Month)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := w.leaderboard.Refresh(ctx, ev.Year, ev.Month); err != nil {
			return fmt.Errorf("refresh leaderboard: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return w.exportSummary(ctx, ev.OwnerID, ev.Year, ev.Month)
	})
	return g.Wait()
}

func (w *EventWorker) exportSummary(ctx context.Context, ownerID string, year, month int) error {
	if w.exporter == nil {
		slog.DebugContext(ctx, "no exporter configured, skipping summary export")
		return nil
	}

	owner, err := w.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("look up owner %s: %w", ownerID, err)
	}
	summary, err := w.summaries.MonthlySummary(ctx, ownerID, year, month, 0)
	if err != nil {
		return fmt.Errorf("summarize month: %w", err)
	}
	if err := w.exporter.ExportMonthlySummary(ctx, owner, year, month, summary); err != nil {
		return fmt.Errorf("export summary: %w", err)
	}
	return nil
}

// WarmupSnapshots precomputes leaderboard snapshots for the given number of
// months ending at now, bounded by the worker's concurrency. Run at startup
// so the first reads after a restart do not all miss the cache.
func (w *EventWorker) WarmupSnapshots(ctx context.Context, now time.Time, months int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	cursor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		year, month := cursor.Year(), int(cursor.Month())-1
		g.Go(func() error {
			if _, err := w.leaderboard.Refresh(ctx, year, month); err != nil {
				return fmt.Errorf("warm up %d/%d: %w", year, month, err)
			}
			return nil
		})
		cursor = cursor.AddDate(0, -1, 0)
	}
	return g.Wait()
}
