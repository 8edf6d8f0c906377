package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"plutus/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist or is not owned by
// the caller. Handlers map it to a null 404 response.
var ErrNotFound = errors.New("record not found")

// User is an account row. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new account.
func (r *Repository) CreateUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.CreatedAt.UTC().Format(core.ISOMillis))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches an account by its unique email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = ?`, email))
}

// GetUserByID fetches an account by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE id = ?`, id))
}

// ListUsers returns all accounts, used by the leaderboard refresh.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt, _ = time.Parse(core.ISOMillis, createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) scanUser(row *sql.Row) (User, error) {
	var u User
	var createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(core.ISOMillis, createdAt)
	return u, nil
}

// CreateTransaction persists a transaction. Amounts arrive already
// normalized by core.NormalizeAmount; they are stored as decimal strings to
// avoid floating-point drift.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, amount, category, datetime, description, transaction_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Amount.String(), t.Category,
		t.Datetime.UTC().Format(core.ISOMillis), t.Description, string(t.Type))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the owner's transactions inside the range, both
// bounds inclusive, ordered by datetime.
func (r *Repository) ListTransactions(ctx context.Context, ownerID string, rng core.Range) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, amount, category, datetime, description, transaction_type
		 FROM transactions
		 WHERE owner_id = ? AND datetime BETWEEN ? AND ?
		 ORDER BY datetime`,
		ownerID, rng.StartISO, rng.EndISO)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListOwnerTransactions returns every transaction of the owner, for
// all-time views like the savings summary.
func (r *Repository) ListOwnerTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, amount, category, datetime, description, transaction_type
		 FROM transactions WHERE owner_id = ? ORDER BY datetime`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// GetTransaction fetches one transaction, enforcing ownership.
func (r *Repository) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, amount, category, datetime, description, transaction_type
		 FROM transactions WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(txs) == 0 {
		return core.Transaction{}, ErrNotFound
	}
	return txs[0], nil
}

// DeleteTransaction removes one transaction, enforcing ownership.
func (r *Repository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var amount, datetime, tt string
		if err := rows.Scan(&t.ID, &t.OwnerID, &amount, &t.Category, &datetime, &t.Description, &tt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		dec, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		t.Amount = dec
		t.Datetime, err = time.Parse(core.ISOMillis, datetime)
		if err != nil {
			return nil, fmt.Errorf("parse stored datetime %q: %w", datetime, err)
		}
		t.Type = core.TransactionType(tt)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
