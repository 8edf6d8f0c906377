// Package services orchestrates storage, events and the pure domain logic
// behind each API operation.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"plutus/internal/amqp"
	"plutus/internal/core"

	"github.com/google/uuid"
)

// TransactionStore is the slice of the repository the transaction service
// needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string, rng core.Range) ([]core.Transaction, error)
	ListOwnerTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id string) error
}

// EventPublisher emits transaction change events. A nil publisher disables
// eventing; publish failures never fail the originating request.
type EventPublisher interface {
	PublishTransactionChanged(ctx context.Context, ev *amqp.TransactionEvent) error
}

// TransactionService records and queries transactions, publishing a change
// event after every successful mutation.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
}

func NewTransactionService(store TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// CreateTransactionInput carries the raw request payload. Amount is kept as
// a string so sign normalization and decimal parsing happen in one place.
type CreateTransactionInput struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Datetime    string `json:"datetime"`
	Description string `json:"description"`
	Type        string `json:"transactionType"`
}

// Create validates the input, normalizes the amount sign for its type and
// persists the transaction.
func (s *TransactionService) Create(ctx context.Context, ownerID string, in CreateTransactionInput) (core.Transaction, error) {
	tt := core.TransactionType(in.Type)
	amount, err := core.NormalizeAmount(tt, in.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("normalize amount: %w", err)
	}

	dt, err := parseDatetime(in.Datetime)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: bad datetime %q", core.ErrInvalidTransactionData, in.Datetime)
	}

	t := core.Transaction{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Amount:      amount,
		Category:    in.Category,
		Datetime:    dt,
		Description: in.Description,
		Type:        tt,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", core.ErrInvalidTransactionData, err)
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	utc := t.Datetime.UTC()
	s.publish(ctx, amqp.NewTransactionEvent(ownerID, t.ID, amqp.ActionCreated, utc.Year(), int(utc.Month())-1))
	return t, nil
}

// Delete removes one owned transaction and publishes a delete event carrying
// the month it belonged to.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	t, err := s.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("look up transaction: %w", err)
	}
	if err := s.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	utc := t.Datetime.UTC()
	s.publish(ctx, amqp.NewTransactionEvent(ownerID, id, amqp.ActionDeleted, utc.Year(), int(utc.Month())-1))
	return nil
}

// ListMonth returns the owner's transactions for the month resolved from
// the 0-based month and timezone offset.
func (s *TransactionService) ListMonth(ctx context.Context, ownerID string, year, month, tzOffsetMinutes int) ([]core.Transaction, error) {
	rng := core.MonthRange(year, month, tzOffsetMinutes)
	txs, err := s.store.ListTransactions(ctx, ownerID, rng)
	if err != nil {
		return nil, fmt.Errorf("list month transactions: %w", err)
	}
	return txs, nil
}

// MonthlySummary recomputes the financial summary from the month's
// transactions. Summaries are never cached.
func (s *TransactionService) MonthlySummary(ctx context.Context, ownerID string, year, month, tzOffsetMinutes int) (core.MonthlySummary, error) {
	txs, err := s.ListMonth(ctx, ownerID, year, month, tzOffsetMinutes)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return core.SummarizeMonth(txs), nil
}

// CategorySummary groups the month's transactions by category, optionally
// restricted to one transaction type.
func (s *TransactionService) CategorySummary(ctx context.Context, ownerID string, year, month, tzOffsetMinutes int, typeFilter core.TransactionType) (core.CategorySummary, error) {
	txs, err := s.ListMonth(ctx, ownerID, year, month, tzOffsetMinutes)
	if err != nil {
		return core.CategorySummary{}, err
	}
	return core.SummarizeCategories(txs, typeFilter), nil
}

// SavingsSummary reports savings for one month, or all time when year < 0.
func (s *TransactionService) SavingsSummary(ctx context.Context, ownerID string, year, month int) (core.SavingsSummary, error) {
	var (
		txs []core.Transaction
		err error
	)
	if year < 0 {
		txs, err = s.store.ListOwnerTransactions(ctx, ownerID)
	} else {
		txs, err = s.store.ListTransactions(ctx, ownerID, core.MonthRange(year, month, 0))
	}
	if err != nil {
		return core.SavingsSummary{}, fmt.Errorf("list savings transactions: %w", err)
	}
	return core.SummarizeSavings(txs), nil
}

func (s *TransactionService) publish(ctx context.Context, ev *amqp.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionChanged(ctx, ev); err != nil {
		// The write already succeeded; the worker catches up on the next event.
		slog.ErrorContext(ctx, "failed to publish transaction event",
			"error", err,
			"transaction_id", ev.TransactionID,
			"action", ev.Action)
	}
}

func parseDatetime(raw string) (time.Time, error) {
	for _, layout := range []string{core.ISOMillis, time.RFC3339Nano, time.RFC3339} {
		if dt, err := time.Parse(layout, raw); err == nil {
			return dt, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", raw)
}
