package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"plutus/internal/amqp"
	"plutus/internal/core"
	"plutus/internal/services"
	"plutus/internal/storage"
)

type fakeRefresher struct {
	mu     sync.Mutex
	months [][2]int
	err    error
}

func (f *fakeRefresher) Refresh(_ context.Context, year, month int) ([]services.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.months = append(f.months, [2]int{year, month})
	return nil, nil
}

type fakeSummaries struct{ err error }

func (f *fakeSummaries) MonthlySummary(context.Context, string, int, int, int) (core.MonthlySummary, error) {
	return core.MonthlySummary{Status: core.StatusBalanced}, f.err
}

type fakeUsers struct{}

func (fakeUsers) GetUserByID(_ context.Context, id string) (storage.User, error) {
	return storage.User{ID: id, DisplayName: "Ada"}, nil
}

type fakeExporter struct {
	mu      sync.Mutex
	exports int
	err     error
}

func (f *fakeExporter) ExportMonthlySummary(_ context.Context, _ storage.User, _, _ int, _ core.MonthlySummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.exports++
	return nil
}

func event() *amqp.TransactionEvent {
	return amqp.NewTransactionEvent("u1", "tx-1", amqp.ActionCreated, 2024, 2)
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes leaderboard and exports", func(t *testing.T) {
		refresher := &fakeRefresher{}
		exporter := &fakeExporter{}
		w := NewEventWorker(refresher, &fakeSummaries{}, fakeUsers{}, exporter, 4)

		if err := w.HandleEvent(ctx, event()); err != nil {
			t.Fatalf("HandleEvent: %v", err)
		}
		if len(refresher.months) != 1 || refresher.months[0] != [2]int{2024, 2} {
			t.Errorf("refreshed months = %v", refresher.months)
		}
		if exporter.exports != 1 {
			t.Errorf("exports = %d, want 1", exporter.exports)
		}
	})

	t.Run("nil exporter skips export", func(t *testing.T) {
		w := NewEventWorker(&fakeRefresher{}, &fakeSummaries{}, fakeUsers{}, nil, 4)
		if err := w.HandleEvent(ctx, event()); err != nil {
			t.Fatalf("HandleEvent without exporter: %v", err)
		}
	})

	t.Run("export failure requeues the event", func(t *testing.T) {
		w := NewEventWorker(&fakeRefresher{}, &fakeSummaries{}, fakeUsers{}, &fakeExporter{err: errors.New("sheet gone")}, 4)
		if err := w.HandleEvent(ctx, event()); err == nil {
			t.Error("HandleEvent should surface export failures")
		}
	})

	t.Run("refresh failure requeues the event", func(t *testing.T) {
		w := NewEventWorker(&fakeRefresher{err: errors.New("db down")}, &fakeSummaries{}, fakeUsers{}, nil, 4)
		if err := w.HandleEvent(ctx, event()); err == nil {
			t.Error("HandleEvent should surface refresh failures")
		}
	})
}

func TestWarmupSnapshots(t *testing.T) {
	refresher := &fakeRefresher{}
	w := NewEventWorker(refresher, &fakeSummaries{}, fakeUsers{}, nil, 2)

	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if err := w.WarmupSnapshots(context.Background(), now, 3); err != nil {
		t.Fatalf("WarmupSnapshots: %v", err)
	}

	want := map[[2]int]bool{
		{2024, 2}: true, // March
		{2024, 1}: true, // February
		{2024, 0}: true, // January
	}
	if len(refresher.months) != len(want) {
		t.Fatalf("refreshed %d months, want %d", len(refresher.months), len(want))
	}
	for _, m := range refresher.months {
		if !want[m] {
			t.Errorf("unexpected month refreshed: %v", m)
		}
	}
}
