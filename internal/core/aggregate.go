// Package core holds the pure domain computations: date-range resolution,
// financial aggregation, budget progress and allocation validation. Nothing
// here performs I/O; callers fetch the records and feed them in.
package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UncategorizedLabel is the bucket for transactions without a category.
const UncategorizedLabel = "Uncategorized"

const (
	// Monthly summary statuses: remainder zero, positive or negative.
	StatusBalanced     = "balanced"
	StatusUnbudgeted   = "unbudgeted"
	StatusOverbudgeted = "overbudgeted"
)

var oneHundred = decimal.NewFromInt(100)

type (
	// CategoryTotal is one row of a category summary.
	CategoryTotal struct {
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		Count      int             `json:"count"`
		Percentage decimal.Decimal `json:"percentage"`
	}

	// CategorySummary groups transactions by category with share-of-total
	// percentages.
	CategorySummary struct {
		Categories []CategoryTotal `json:"categories"`
		TotalSpent decimal.Decimal `json:"totalSpent"`
	}

	// MonthlySummary is the derived month overview. It is recomputed from
	// the transaction set on every read and never persisted or cached.
	MonthlySummary struct {
		TotalIncome          decimal.Decimal `json:"totalIncome"`
		TotalExpenses        decimal.Decimal `json:"totalExpenses"`
		SavingsDeposits      decimal.Decimal `json:"savingsDeposits"`
		SavingsWithdrawals   decimal.Decimal `json:"savingsWithdrawals"`
		TotalSavings         decimal.Decimal `json:"totalSavings"`
		TotalSpendableIncome decimal.Decimal `json:"totalSpendableIncome"`
		Remainder            decimal.Decimal `json:"remainder"`
		Status               string          `json:"status"`
	}

	// SavingsSummary nets deposits against withdrawals, either all-time or
	// for a month depending on the transactions passed in.
	SavingsSummary struct {
		TotalSaved     decimal.Decimal `json:"totalSaved"`
		TotalWithdrawn decimal.Decimal `json:"totalWithdrawn"`
		NetSavings     decimal.Decimal `json:"netSavings"`
	}
)

// SummarizeCategories groups the transactions by category, summing absolute
// amounts. A non-empty typeFilter restricts the input to one transaction
// type first. Rows are ordered by amount descending, then category name, so
// output is deterministic.
func SummarizeCategories(txs []Transaction, typeFilter TransactionType) CategorySummary {
	type bucket struct {
		amount decimal.Decimal
		count  int
	}
	buckets := make(map[string]*bucket)
	total := decimal.Zero

	for _, t := range txs {
		if typeFilter != "" && t.Type != typeFilter {
			continue
		}
		name := t.Category
		if name == "" {
			name = UncategorizedLabel
		}
		abs := t.Amount.Abs()
		b, ok := buckets[name]
		if !ok {
			b = &bucket{amount: decimal.Zero}
			buckets[name] = b
		}
		b.amount = b.amount.Add(abs)
		b.count++
		total = total.Add(abs)
	}

	summary := CategorySummary{TotalSpent: total}
	for name, b := range buckets {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = b.amount.Div(total).Mul(oneHundred)
		}
		summary.Categories = append(summary.Categories, CategoryTotal{
			Category:   name,
			Amount:     b.amount,
			Count:      b.count,
			Percentage: pct,
		})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		a, b := summary.Categories[i], summary.Categories[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.Category < b.Category
	})
	return summary
}

// SummarizeMonth partitions the transactions by type and derives the
// spendable-income figures. Savings split by sign: positive amounts are
// deposits, negative ones withdrawals (summed as absolute value), and the
// net may be negative when a month withdraws more than it saves.
func SummarizeMonth(txs []Transaction) MonthlySummary {
	s := MonthlySummary{
		TotalIncome:        decimal.Zero,
		TotalExpenses:      decimal.Zero,
		SavingsDeposits:    decimal.Zero,
		SavingsWithdrawals: decimal.Zero,
	}
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount.Abs())
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount.Abs())
		case Savings:
			if t.Amount.IsNegative() {
				s.SavingsWithdrawals = s.SavingsWithdrawals.Add(t.Amount.Abs())
			} else {
				s.SavingsDeposits = s.SavingsDeposits.Add(t.Amount)
			}
		}
	}
	s.TotalSavings = s.SavingsDeposits.Sub(s.SavingsWithdrawals)
	s.TotalSpendableIncome = s.TotalIncome.Sub(s.TotalSavings)
	s.Remainder = s.TotalSpendableIncome.Sub(s.TotalExpenses)

	switch {
	case s.Remainder.IsZero():
		s.Status = StatusBalanced
	case s.Remainder.IsPositive():
		s.Status = StatusUnbudgeted
	default:
		s.Status = StatusOverbudgeted
	}
	return s
}

// SummarizeSavings nets savings transactions. Non-savings entries are
// ignored so callers may pass an unfiltered list.
func SummarizeSavings(txs []Transaction) SavingsSummary {
	s := SavingsSummary{
		TotalSaved:     decimal.Zero,
		TotalWithdrawn: decimal.Zero,
	}
	for _, t := range txs {
		if t.Type != Savings {
			continue
		}
		if t.Amount.IsNegative() {
			s.TotalWithdrawn = s.TotalWithdrawn.Add(t.Amount.Abs())
		} else {
			s.TotalSaved = s.TotalSaved.Add(t.Amount)
		}
	}
	s.NetSavings = s.TotalSaved.Sub(s.TotalWithdrawn)
	return s
}
