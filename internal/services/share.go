package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plutus/internal/core"
	"plutus/internal/storage"

	"github.com/google/uuid"
)

type ShareStore interface {
	CreateShareLink(ctx context.Context, l core.ShareLink) error
	GetShareLink(ctx context.Context, shareID string) (core.ShareLink, error)
	ListShareLinks(ctx context.Context, ownerID string) ([]core.ShareLink, error)
	DeleteShareLink(ctx context.Context, ownerID, id string) error
	DeleteAllShareLinks(ctx context.Context, ownerID string) (int64, error)
}

// PermanentLabel is shown for links without an expiry.
const PermanentLabel = "Never"

// ShareService issues and resolves opaque share tokens. Expired tokens are
// indistinguishable from tokens that never existed.
type ShareService struct {
	store ShareStore

	now func() time.Time // overridable in tests
}

func NewShareService(store ShareStore) *ShareService {
	return &ShareService{store: store, now: time.Now}
}

// Create issues a link for the owner's (year, month) view. expiresInDays of
// zero or less makes the link permanent.
func (s *ShareService) Create(ctx context.Context, ownerID string, year, month, expiresInDays int) (core.ShareLink, error) {
	if month < 0 || month > 11 {
		return core.ShareLink{}, fmt.Errorf("%w: month out of range", core.ErrInvalidTransactionData)
	}

	now := s.now()
	link := core.ShareLink{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		ShareID:        uuid.NewString(),
		Year:           year,
		Month:          month,
		CreatedAt:      now,
		Permanent:      expiresInDays <= 0,
		ExpiresAtLabel: PermanentLabel,
	}
	if !link.Permanent {
		expiry := now.Add(time.Duration(expiresInDays) * 24 * time.Hour)
		link.ExpiresAt = expiry.UnixMilli()
		link.ExpiresAtLabel = expiry.UTC().Format("Jan 2, 2006")
	}

	if err := s.store.CreateShareLink(ctx, link); err != nil {
		return core.ShareLink{}, fmt.Errorf("create share link: %w", err)
	}
	return link, nil
}

// Resolve looks up a token and checks validity. Unknown and expired tokens
// both come back as storage.ErrNotFound so existence never leaks.
func (s *ShareService) Resolve(ctx context.Context, shareID string) (core.ShareLink, error) {
	link, err := s.store.GetShareLink(ctx, shareID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.ShareLink{}, storage.ErrNotFound
	}
	if err != nil {
		return core.ShareLink{}, fmt.Errorf("get share link: %w", err)
	}
	if !link.Valid(s.now()) {
		return core.ShareLink{}, storage.ErrNotFound
	}
	return link, nil
}

func (s *ShareService) List(ctx context.Context, ownerID string) ([]core.ShareLink, error) {
	links, err := s.store.ListShareLinks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}
	return links, nil
}

func (s *ShareService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteShareLink(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete share link: %w", err)
	}
	return nil
}

// DeleteAll revokes every link of the owner and reports how many were
// removed.
func (s *ShareService) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	deleted, err := s.store.DeleteAllShareLinks(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete all share links: %w", err)
	}
	return deleted, nil
}
