package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plutus/internal/core"

	"github.com/shopspring/decimal"
)

// UpsertBudget inserts a budget or updates the amount of the existing one
// for the same (owner, category, year, month). The unique index guarantees
// at most one row per tuple.
func (r *Repository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, owner_id, category, amount, year, month, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id, category, year, month)
		 DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
		b.ID, b.OwnerID, b.Category, b.Amount.String(), b.Year, b.Month,
		now.Format(core.ISOMillis), now.Format(core.ISOMillis))
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, category, amount, year, month, created_at, updated_at
		 FROM budgets WHERE owner_id = ? AND category = ? AND year = ? AND month = ?`,
		b.OwnerID, b.Category, b.Year, b.Month)
	return scanBudget(row)
}

// ListBudgets returns the owner's budgets for one month.
func (r *Repository) ListBudgets(ctx context.Context, ownerID string, year, month int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, category, amount, year, month, created_at, updated_at
		 FROM budgets WHERE owner_id = ? AND year = ? AND month = ? ORDER BY category`,
		ownerID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudgetRow(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// DeleteBudget removes one budget, enforcing ownership.
func (r *Repository) DeleteBudget(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBudget(row *sql.Row) (core.Budget, error) {
	var b core.Budget
	var amount, createdAt, updatedAt string
	err := row.Scan(&b.ID, &b.OwnerID, &b.Category, &amount, &b.Year, &b.Month, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	return fillBudget(b, amount, createdAt, updatedAt)
}

func scanBudgetRow(rows *sql.Rows) (core.Budget, error) {
	var b core.Budget
	var amount, createdAt, updatedAt string
	if err := rows.Scan(&b.ID, &b.OwnerID, &b.Category, &amount, &b.Year, &b.Month, &createdAt, &updatedAt); err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	return fillBudget(b, amount, createdAt, updatedAt)
}

func fillBudget(b core.Budget, amount, createdAt, updatedAt string) (core.Budget, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse stored budget amount %q: %w", amount, err)
	}
	b.Amount = dec
	b.CreatedAt, _ = time.Parse(core.ISOMillis, createdAt)
	b.UpdatedAt, _ = time.Parse(core.ISOMillis, updatedAt)
	return b, nil
}

// ListAllocations returns the owner's full standing allocation set ordered
// by priority.
func (r *Repository) ListAllocations(ctx context.Context, ownerID string) ([]core.Allocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, category, type, value, priority, always_add
		 FROM allocations WHERE owner_id = ? ORDER BY priority, category`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var allocs []core.Allocation
	for rows.Next() {
		var a core.Allocation
		var value, at string
		var alwaysAdd int
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Category, &at, &value, &a.Priority, &alwaysAdd); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		dec, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("parse stored allocation value %q: %w", value, err)
		}
		a.Type = core.AllocationType(at)
		a.Value = dec
		a.AlwaysAdd = alwaysAdd != 0
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// UpsertAllocation inserts or replaces the owner's allocation for one
// category. Validation happens in core before this is called.
func (r *Repository) UpsertAllocation(ctx context.Context, a core.Allocation) error {
	alwaysAdd := 0
	if a.AlwaysAdd {
		alwaysAdd = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO allocations (id, owner_id, category, type, value, priority, always_add)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id, category)
		 DO UPDATE SET type = excluded.type, value = excluded.value,
		               priority = excluded.priority, always_add = excluded.always_add`,
		a.ID, a.OwnerID, a.Category, string(a.Type), a.Value.String(), a.Priority, alwaysAdd)
	if err != nil {
		return fmt.Errorf("upsert allocation: %w", err)
	}
	return nil
}

// DeleteAllocation removes the owner's allocation for one category.
func (r *Repository) DeleteAllocation(ctx context.Context, ownerID, category string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM allocations WHERE owner_id = ? AND category = ?`, ownerID, category)
	if err != nil {
		return fmt.Errorf("delete allocation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete allocation rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
