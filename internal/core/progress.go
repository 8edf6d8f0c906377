package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	StatusWithinBudget = "within_budget"
	StatusOverBudget   = "over_budget"
	StatusNoBudget     = "no_budget"
)

type (
	// BudgetProgress tracks spending against one budget.
	BudgetProgress struct {
		BudgetID   string          `json:"budgetId"`
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		Spent      decimal.Decimal `json:"spent"`
		Remaining  decimal.Decimal `json:"remaining"`
		Percentage decimal.Decimal `json:"percentage"`
		Status     string          `json:"status"`
	}

	// UnbudgetedSpending reports a category with expenses but no budget.
	UnbudgetedSpending struct {
		Category string          `json:"category"`
		Spent    decimal.Decimal `json:"spent"`
		Status   string          `json:"status"`
	}

	// ProgressReport combines budgets with the month's expense transactions.
	ProgressReport struct {
		Budgets    []BudgetProgress     `json:"budgets"`
		Unbudgeted []UnbudgetedSpending `json:"unbudgeted"`
	}

	// ProgressSummary reduces a report to a single set of totals.
	// TotalSpent includes unbudgeted category spending, TotalBudget only
	// budgeted categories.
	ProgressSummary struct {
		TotalBudget    decimal.Decimal `json:"totalBudget"`
		TotalSpent     decimal.Decimal `json:"totalSpent"`
		TotalRemaining decimal.Decimal `json:"totalRemaining"`
		PercentSpent   decimal.Decimal `json:"percentSpent"`
		BudgetCount    int             `json:"budgetCount"`
		Status         string          `json:"status"`
	}
)

// CombineProgress computes per-budget spending from the expense transactions
// of the same (owner, year, month) scope. Only expense-typed transactions
// count; categories with spending but no budget are reported separately.
func CombineProgress(budgets []Budget, txs []Transaction) ProgressReport {
	spentByCategory := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		name := t.Category
		if name == "" {
			name = UncategorizedLabel
		}
		spentByCategory[name] = spentByCategory[name].Add(t.Amount.Abs())
	}

	budgeted := make(map[string]bool, len(budgets))
	report := ProgressReport{}
	for _, b := range budgets {
		budgeted[b.Category] = true
		spent := spentByCategory[b.Category]
		remaining := b.Amount.Sub(spent)
		pct := decimal.Zero
		if b.Amount.IsPositive() {
			pct = spent.Div(b.Amount).Mul(oneHundred)
		}
		status := StatusWithinBudget
		if remaining.IsNegative() {
			status = StatusOverBudget
		}
		report.Budgets = append(report.Budgets, BudgetProgress{
			BudgetID:   b.ID,
			Category:   b.Category,
			Amount:     b.Amount,
			Spent:      spent,
			Remaining:  remaining,
			Percentage: pct,
			Status:     status,
		})
	}

	for category, spent := range spentByCategory {
		if budgeted[category] {
			continue
		}
		report.Unbudgeted = append(report.Unbudgeted, UnbudgetedSpending{
			Category: category,
			Spent:    spent,
			Status:   StatusNoBudget,
		})
	}
	sort.Slice(report.Unbudgeted, func(i, j int) bool {
		return report.Unbudgeted[i].Category < report.Unbudgeted[j].Category
	})
	return report
}

// SummarizeProgress reduces a progress report into overall totals.
func SummarizeProgress(report ProgressReport) ProgressSummary {
	s := ProgressSummary{
		TotalBudget: decimal.Zero,
		TotalSpent:  decimal.Zero,
		BudgetCount: len(report.Budgets),
	}
	for _, b := range report.Budgets {
		s.TotalBudget = s.TotalBudget.Add(b.Amount)
		s.TotalSpent = s.TotalSpent.Add(b.Spent)
	}
	for _, u := range report.Unbudgeted {
		s.TotalSpent = s.TotalSpent.Add(u.Spent)
	}
	s.TotalRemaining = s.TotalBudget.Sub(s.TotalSpent)
	s.PercentSpent = decimal.Zero
	if s.TotalBudget.IsPositive() {
		s.PercentSpent = s.TotalSpent.Div(s.TotalBudget).Mul(oneHundred)
	}
	s.Status = StatusWithinBudget
	if s.TotalRemaining.IsNegative() {
		s.Status = StatusOverBudget
	}
	return s
}
