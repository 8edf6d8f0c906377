package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func alloc(category string, at AllocationType, value string, priority int) Allocation {
	return Allocation{
		ID:       "a-" + category,
		OwnerID:  "o",
		Category: category,
		Type:     at,
		Value:    decimal.RequireFromString(value),
		Priority: priority,
	}
}

func TestValidateAllocation(t *testing.T) {
	tests := []struct {
		name     string
		cand     AllocationInput
		existing []Allocation
		want     string
		wantErr  error
	}{
		{
			name: "plain amount",
			cand: AllocationInput{Category: "Rent", Type: AllocationAmount, Value: "600", Priority: 1},
			want: "600",
		},
		{
			name: "expression value",
			cand: AllocationInput{Category: "Rent", Type: AllocationAmount, Value: "600+105", Priority: 1},
			want: "705",
		},
		{
			name:    "empty category",
			cand:    AllocationInput{Category: "  ", Type: AllocationAmount, Value: "10", Priority: 1},
			wantErr: ErrInvalidAllocationInput,
		},
		{
			name:    "malformed expression fails soft",
			cand:    AllocationInput{Category: "Rent", Type: AllocationAmount, Value: "600+", Priority: 1},
			wantErr: ErrInvalidAllocationInput,
		},
		{
			name:    "zero value",
			cand:    AllocationInput{Category: "Rent", Type: AllocationAmount, Value: "0", Priority: 1},
			wantErr: ErrInvalidAllocationInput,
		},
		{
			name:    "negative value",
			cand:    AllocationInput{Category: "Rent", Type: AllocationAmount, Value: "5-8", Priority: 1},
			wantErr: ErrInvalidAllocationInput,
		},
		{
			name:    "unknown type",
			cand:    AllocationInput{Category: "Rent", Type: AllocationType("fixed"), Value: "10", Priority: 1},
			wantErr: ErrInvalidAllocationInput,
		},
		{
			name:     "percentage over 100 with existing overflow",
			cand:     AllocationInput{Category: "Fun", Type: AllocationPercentage, Value: "60", Priority: 2},
			existing: []Allocation{alloc("Rest", AllocationOverflow, "50", 1)},
			wantErr:  ErrPercentageBudgetExceeded,
		},
		{
			name:     "percentage within 100 with existing overflow",
			cand:     AllocationInput{Category: "Fun", Type: AllocationPercentage, Value: "40", Priority: 2},
			existing: []Allocation{alloc("Rest", AllocationOverflow, "50", 1)},
			want:     "40",
		},
		{
			name:     "replacing own percentage is excluded from the sum",
			cand:     AllocationInput{Category: "Fun", Type: AllocationPercentage, Value: "70", Priority: 2},
			existing: []Allocation{alloc("Fun", AllocationPercentage, "60", 2), alloc("Rest", AllocationOverflow, "30", 1)},
			want:     "70",
		},
		{
			name:     "amount type ignores percentage sum",
			cand:     AllocationInput{Category: "Rent", Type: AllocationAmount, Value: "9000", Priority: 3},
			existing: []Allocation{alloc("Rest", AllocationOverflow, "100", 1)},
			want:     "9000",
		},
		{
			name:    "priority zero",
			cand:    AllocationInput{Category: "Rent", Type: AllocationAmount, Value: "10", Priority: 0},
			wantErr: ErrInvalidPriority,
		},
		{
			name:    "priority above 99",
			cand:    AllocationInput{Category: "Rent", Type: AllocationAmount, Value: "10", Priority: 100},
			wantErr: ErrInvalidPriority,
		},
		{
			name:     "duplicate priority among non-overflow",
			cand:     AllocationInput{Category: "Fun", Type: AllocationAmount, Value: "10", Priority: 5},
			existing: []Allocation{alloc("Rent", AllocationAmount, "600", 5)},
			wantErr:  ErrDuplicatePriority,
		},
		{
			name:     "priority free after holder removed",
			cand:     AllocationInput{Category: "Fun", Type: AllocationAmount, Value: "10", Priority: 5},
			existing: []Allocation{},
			want:     "10",
		},
		{
			name:     "overflow exempt from priority uniqueness",
			cand:     AllocationInput{Category: "Rest", Type: AllocationOverflow, Value: "10", Priority: 5},
			existing: []Allocation{alloc("Rent", AllocationAmount, "600", 5)},
			want:     "10",
		},
		{
			name:     "existing overflow priority does not collide",
			cand:     AllocationInput{Category: "Fun", Type: AllocationAmount, Value: "10", Priority: 5},
			existing: []Allocation{alloc("Rest", AllocationOverflow, "10", 5)},
			want:     "10",
		},
		{
			name:     "same category edit keeps its own priority",
			cand:     AllocationInput{Category: "Rent", Type: AllocationAmount, Value: "650", Priority: 5},
			existing: []Allocation{alloc("Rent", AllocationAmount, "600", 5)},
			want:     "650",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAllocation(tt.cand, tt.existing)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("value = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateAllocationRuleOrder(t *testing.T) {
	// A candidate violating both the percentage cap and the priority range
	// must report the percentage failure: rules run in order.
	existing := []Allocation{alloc("Rest", AllocationOverflow, "90", 1)}
	cand := AllocationInput{Category: "Fun", Type: AllocationPercentage, Value: "60", Priority: 0}
	if _, err := ValidateAllocation(cand, existing); !errors.Is(err, ErrPercentageBudgetExceeded) {
		t.Fatalf("error = %v, want %v", err, ErrPercentageBudgetExceeded)
	}
}
