package services

import (
	"context"
	"fmt"
	"sort"

	"plutus/internal/cache"
	"plutus/internal/core"
	"plutus/internal/storage"

	"github.com/shopspring/decimal"
)

type UserLister interface {
	ListUsers(ctx context.Context) ([]storage.User, error)
}

// LeaderboardEntry is one ranked row: an owner and their net savings for
// the month.
type LeaderboardEntry struct {
	Rank        int             `json:"rank"`
	OwnerID     string          `json:"ownerId"`
	DisplayName string          `json:"displayName"`
	NetSavings  decimal.Decimal `json:"netSavings"`
}

// LeaderboardService ranks all users by net savings per month. Rankings are
// served from an LRU snapshot cache; the worker refreshes a month's
// snapshot when transaction events for it arrive.
type LeaderboardService struct {
	users        UserLister
	transactions TransactionStore
	snapshots    *cache.LRUCache[[]LeaderboardEntry]
}

func NewLeaderboardService(users UserLister, transactions TransactionStore, snapshots *cache.LRUCache[[]LeaderboardEntry]) *LeaderboardService {
	return &LeaderboardService{users: users, transactions: transactions, snapshots: snapshots}
}

// Get returns the ranking for (year, month), computing and caching it on a
// miss.
func (s *LeaderboardService) Get(ctx context.Context, year, month int) ([]LeaderboardEntry, error) {
	key := snapshotKey(year, month)
	if entries, ok := s.snapshots.Get(key); ok {
		return entries, nil
	}
	return s.Refresh(ctx, year, month)
}

// Refresh recomputes the ranking from storage and replaces the cached
// snapshot.
func (s *LeaderboardService) Refresh(ctx context.Context, year, month int) ([]LeaderboardEntry, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	rng := core.MonthRange(year, month, 0)
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		txs, err := s.transactions.ListTransactions(ctx, u.ID, rng)
		if err != nil {
			return nil, fmt.Errorf("list transactions for %s: %w", u.ID, err)
		}
		savings := core.SummarizeSavings(txs)
		entries = append(entries, LeaderboardEntry{
			OwnerID:     u.ID,
			DisplayName: u.DisplayName,
			NetSavings:  savings.NetSavings,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].NetSavings.Equal(entries[j].NetSavings) {
			return entries[i].DisplayName < entries[j].DisplayName
		}
		return entries[i].NetSavings.GreaterThan(entries[j].NetSavings)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.snapshots.Set(snapshotKey(year, month), entries)
	return entries, nil
}

// Invalidate drops the cached snapshot for a month so the next read
// recomputes it.
func (s *LeaderboardService) Invalidate(year, month int) {
	s.snapshots.Delete(snapshotKey(year, month))
}

func snapshotKey(year, month int) string {
	return fmt.Sprintf("leaderboard:%d:%d", year, month)
}
