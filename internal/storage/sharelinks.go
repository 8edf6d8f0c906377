package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"plutus/internal/core"
)

// CreateShareLink persists a new share link.
func (r *Repository) CreateShareLink(ctx context.Context, l core.ShareLink) error {
	permanent := 0
	if l.Permanent {
		permanent = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO share_links (id, owner_id, share_id, year, month, created_at, expires_at, permanent, expires_at_label)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.OwnerID, l.ShareID, l.Year, l.Month,
		l.CreatedAt.UTC().Format(core.ISOMillis), l.ExpiresAt, permanent, l.ExpiresAtLabel)
	if err != nil {
		return fmt.Errorf("create share link: %w", err)
	}
	return nil
}

// GetShareLink fetches a link by its public token. Validity is not checked
// here; the share service decides whether an expired link resolves to
// "not found".
func (r *Repository) GetShareLink(ctx context.Context, shareID string) (core.ShareLink, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, share_id, year, month, created_at, expires_at, permanent, expires_at_label
		 FROM share_links WHERE share_id = ?`, shareID)
	return scanShareLink(row)
}

// ListShareLinks returns all of the owner's links, newest first.
func (r *Repository) ListShareLinks(ctx context.Context, ownerID string) ([]core.ShareLink, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, share_id, year, month, created_at, expires_at, permanent, expires_at_label
		 FROM share_links WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}
	defer rows.Close()

	var links []core.ShareLink
	for rows.Next() {
		var l core.ShareLink
		var createdAt string
		var permanent int
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.ShareID, &l.Year, &l.Month, &createdAt, &l.ExpiresAt, &permanent, &l.ExpiresAtLabel); err != nil {
			return nil, fmt.Errorf("scan share link: %w", err)
		}
		l.CreatedAt, _ = time.Parse(core.ISOMillis, createdAt)
		l.Permanent = permanent != 0
		links = append(links, l)
	}
	return links, rows.Err()
}

// DeleteShareLink removes one link, enforcing ownership.
func (r *Repository) DeleteShareLink(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM share_links WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete share link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete share link rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllShareLinks removes every link of the owner and returns how many
// were dropped.
func (r *Repository) DeleteAllShareLinks(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM share_links WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete all share links: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all share links rows affected: %w", err)
	}
	return affected, nil
}

// DeleteExpiredShareLinks purges non-permanent links whose expiry lies
// before now. The sweeper calls this on a schedule; the operation is
// idempotent.
func (r *Repository) DeleteExpiredShareLinks(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM share_links WHERE permanent = 0 AND expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired share links: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired share links rows affected: %w", err)
	}
	if affected > 0 {
		slog.InfoContext(ctx, "Expired share links purged", "count", affected)
	}
	return affected, nil
}

func scanShareLink(row *sql.Row) (core.ShareLink, error) {
	var l core.ShareLink
	var createdAt string
	var permanent int
	err := row.Scan(&l.ID, &l.OwnerID, &l.ShareID, &l.Year, &l.Month, &createdAt, &l.ExpiresAt, &permanent, &l.ExpiresAtLabel)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ShareLink{}, ErrNotFound
	}
	if err != nil {
		return core.ShareLink{}, fmt.Errorf("scan share link: %w", err)
	}
	l.CreatedAt, _ = time.Parse(core.ISOMillis, createdAt)
	l.Permanent = permanent != 0
	return l, nil
}
