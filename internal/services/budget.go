package services

import (
	"context"
	"fmt"

	"plutus/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetStore interface {
	UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	ListBudgets(ctx context.Context, ownerID string, year, month int) ([]core.Budget, error)
	DeleteBudget(ctx context.Context, ownerID, id string) error
}

// BudgetService manages per-category monthly budgets and computes progress
// against the month's expenses.
type BudgetService struct {
	budgets      BudgetStore
	transactions TransactionStore
}

func NewBudgetService(budgets BudgetStore, transactions TransactionStore) *BudgetService {
	return &BudgetService{budgets: budgets, transactions: transactions}
}

type UpsertBudgetInput struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Year     int    `json:"year"`
	Month    int    `json:"month"` // 0-based
}

// Upsert creates the budget for (category, year, month) or replaces its
// amount when one already exists.
func (s *BudgetService) Upsert(ctx context.Context, ownerID string, in UpsertBudgetInput) (core.Budget, error) {
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("%w: bad amount %q", core.ErrInvalidTransactionData, in.Amount)
	}

	b := core.Budget{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Category: in.Category,
		Amount:   amount,
		Year:     in.Year,
		Month:    in.Month,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("%w: %v", core.ErrInvalidTransactionData, err)
	}

	saved, err := s.budgets.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return saved, nil
}

func (s *BudgetService) List(ctx context.Context, ownerID string, year, month int) ([]core.Budget, error) {
	budgets, err := s.budgets.ListBudgets(ctx, ownerID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.budgets.DeleteBudget(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// Progress combines the month's budgets with its expense transactions.
func (s *BudgetService) Progress(ctx context.Context, ownerID string, year, month, tzOffsetMinutes int) (core.ProgressReport, error) {
	budgets, err := s.budgets.ListBudgets(ctx, ownerID, year, month)
	if err != nil {
		return core.ProgressReport{}, fmt.Errorf("list budgets: %w", err)
	}
	txs, err := s.transactions.ListTransactions(ctx, ownerID, core.MonthRange(year, month, tzOffsetMinutes))
	if err != nil {
		return core.ProgressReport{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.CombineProgress(budgets, txs), nil
}

// ProgressSummary rolls the progress report up into month-level totals.
func (s *BudgetService) ProgressSummary(ctx context.Context, ownerID string, year, month, tzOffsetMinutes int) (core.ProgressSummary, error) {
	report, err := s.Progress(ctx, ownerID, year, month, tzOffsetMinutes)
	if err != nil {
		return core.ProgressSummary{}, err
	}
	return core.SummarizeProgress(report), nil
}
