package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinPriority = 1
	MaxPriority = 99
)

// AllocationInput is a candidate allocation upsert before validation. Value
// is the raw user string and may be an arithmetic expression.
type AllocationInput struct {
	Category  string
	Type      AllocationType
	Value     string
	Priority  int
	AlwaysAdd bool
}

// ValidateAllocation checks a candidate against the owner's current
// allocation set and returns the evaluated value on success. The entry being
// replaced, identified by category, is excluded from the sum and uniqueness
// checks. Rules run in order and the first failure wins:
//
//  1. category non-empty, value evaluates to a finite number > 0;
//  2. for percentage/overflow types, existing percentage+overflow values
//     plus the candidate must not exceed 100;
//  3. priority within [1, 99];
//  4. for non-overflow types, priority unique among other non-overflow
//     entries. Overflow entries apply only to leftover funds and are exempt.
func ValidateAllocation(cand AllocationInput, existing []Allocation) (decimal.Decimal, error) {
	if strings.TrimSpace(cand.Category) == "" {
		return decimal.Zero, ErrInvalidAllocationInput
	}
	switch cand.Type {
	case AllocationAmount, AllocationPercentage, AllocationOverflow:
	default:
		return decimal.Zero, ErrInvalidAllocationInput
	}
	value, err := EvalExpression(cand.Value)
	if err != nil || !value.IsPositive() {
		return decimal.Zero, ErrInvalidAllocationInput
	}

	if cand.Type == AllocationPercentage || cand.Type == AllocationOverflow {
		sum := value
		for _, a := range existing {
			if a.Category == cand.Category {
				continue
			}
			if a.Type == AllocationPercentage || a.Type == AllocationOverflow {
				sum = sum.Add(a.Value)
			}
		}
		if sum.GreaterThan(oneHundred) {
			return decimal.Zero, ErrPercentageBudgetExceeded
		}
	}

	if cand.Priority < MinPriority || cand.Priority > MaxPriority {
		return decimal.Zero, ErrInvalidPriority
	}

	if cand.Type != AllocationOverflow {
		for _, a := range existing {
			if a.Category == cand.Category || a.Type == AllocationOverflow {
				continue
			}
			if a.Priority == cand.Priority {
				return decimal.Zero, ErrDuplicatePriority
			}
		}
	}

	return value, nil
}
