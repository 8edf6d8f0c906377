package services

import (
	"context"
	"fmt"

	"plutus/internal/core"

	"github.com/google/uuid"
)

type AllocationStore interface {
	ListAllocations(ctx context.Context, ownerID string) ([]core.Allocation, error)
	UpsertAllocation(ctx context.Context, a core.Allocation) error
	DeleteAllocation(ctx context.Context, ownerID, category string) error
}

// AllocationService maintains the owner's standing allocation rules. Every
// write is validated against the owner's existing set first.
type AllocationService struct {
	store AllocationStore
}

func NewAllocationService(store AllocationStore) *AllocationService {
	return &AllocationService{store: store}
}

func (s *AllocationService) List(ctx context.Context, ownerID string) ([]core.Allocation, error) {
	allocs, err := s.store.ListAllocations(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return allocs, nil
}

// Put validates the candidate against the owner's other allocations and
// upserts it by category. The stored value is the evaluated result of the
// submitted expression.
func (s *AllocationService) Put(ctx context.Context, ownerID string, in core.AllocationInput) (core.Allocation, error) {
	existing, err := s.store.ListAllocations(ctx, ownerID)
	if err != nil {
		return core.Allocation{}, fmt.Errorf("list allocations: %w", err)
	}

	value, err := core.ValidateAllocation(in, existing)
	if err != nil {
		return core.Allocation{}, err
	}

	a := core.Allocation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Category:  in.Category,
		Type:      in.Type,
		Value:     value,
		Priority:  in.Priority,
		AlwaysAdd: in.AlwaysAdd,
	}
	if err := s.store.UpsertAllocation(ctx, a); err != nil {
		return core.Allocation{}, fmt.Errorf("upsert allocation: %w", err)
	}
	return a, nil
}

func (s *AllocationService) Delete(ctx context.Context, ownerID, category string) error {
	if err := s.store.DeleteAllocation(ctx, ownerID, category); err != nil {
		return fmt.Errorf("delete allocation: %w", err)
	}
	return nil
}
