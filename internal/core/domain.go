package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
	Savings TransactionType = "savings"
)

const (
	AllocationAmount     AllocationType = "amount"
	AllocationPercentage AllocationType = "percentage"
	AllocationOverflow   AllocationType = "overflow"
)

type (
	TransactionType string

	AllocationType string

	// Transaction is a single income, expense or savings movement. Expense
	// amounts are stored negative, income amounts non-negative, savings keep
	// the caller's sign (positive deposit, negative withdrawal). Immutable
	// after creation except for deletion.
	Transaction struct {
		ID          string          `json:"id"`
		OwnerID     string          `json:"ownerId"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Datetime    time.Time       `json:"datetime"`
		Description string          `json:"description"`
		Type        TransactionType `json:"transactionType"`
	}

	// Budget caps spending for one category in one month. Month is 0-based.
	// At most one budget exists per (owner, category, year, month).
	Budget struct {
		ID        string          `json:"id"`
		OwnerID   string          `json:"ownerId"`
		Category  string          `json:"category"`
		Amount    decimal.Decimal `json:"amount"`
		Year      int             `json:"year"`
		Month     int             `json:"month"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	// Allocation is a standing rule for distributing spendable income.
	// Allocations form a single global set per owner, keyed by category;
	// unlike budgets they are not scoped to a month.
	Allocation struct {
		ID        string          `json:"id"`
		OwnerID   string          `json:"ownerId"`
		Category  string          `json:"category"`
		Type      AllocationType  `json:"type"`
		Value     decimal.Decimal `json:"value"`
		Priority  int             `json:"priority"`
		AlwaysAdd bool            `json:"alwaysAdd"`
	}

	// ShareLink grants unauthenticated read-only access to one owner's
	// monthly data through an opaque token, optionally time-limited.
	ShareLink struct {
		ID             string    `json:"id"`
		OwnerID        string    `json:"ownerId"`
		ShareID        string    `json:"shareId"`
		Year           int       `json:"year"`
		Month          int       `json:"month"`
		CreatedAt      time.Time `json:"createdAt"`
		ExpiresAt      int64     `json:"expiresAt"` // epoch milliseconds, ignored when Permanent
		Permanent      bool      `json:"permanent"`
		ExpiresAtLabel string    `json:"expiresAtLabel"`
	}
)

var (
	ErrInvalidTransactionData   = errors.New("invalid transaction data")
	ErrInvalidAllocationInput   = errors.New("invalid allocation input")
	ErrPercentageBudgetExceeded = errors.New("percentage budget exceeded")
	ErrInvalidPriority          = errors.New("priority must be between 1 and 99")
	ErrDuplicatePriority        = errors.New("duplicate priority")
)

// NormalizeAmount parses a raw amount string and forces the sign convention
// for the given transaction type: expenses negative, income non-negative,
// savings unchanged. A non-numeric amount is a precondition violation.
func NormalizeAmount(tt TransactionType, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, ErrInvalidTransactionData
	}
	switch tt {
	case Expense:
		return amount.Abs().Neg(), nil
	case Income:
		return amount.Abs(), nil
	case Savings:
		return amount, nil
	default:
		return decimal.Zero, ErrInvalidTransactionData
	}
}

func (tt TransactionType) Valid() bool {
	switch tt {
	case Expense, Income, Savings:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidTransactionData
	}
	if t.Datetime.IsZero() {
		return errors.New("transaction datetime cannot be zero")
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	switch t.Type {
	case Expense:
		if t.Amount.IsPositive() {
			return errors.New("expense amount must be stored negative")
		}
	case Income:
		if t.Amount.IsNegative() {
			return errors.New("income amount must be stored non-negative")
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return errors.New("empty budget category")
	}
	if b.Amount.IsNegative() {
		return errors.New("budget amount must be non-negative")
	}
	if b.Month < 0 || b.Month > 11 {
		return errors.New("budget month out of range")
	}
	return nil
}

// Valid reports whether the link still grants access at the given instant.
func (l ShareLink) Valid(now time.Time) bool {
	if l.Permanent {
		return true
	}
	return l.ExpiresAt > now.UnixMilli()
}
