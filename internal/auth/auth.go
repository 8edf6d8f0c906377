// Package auth issues and verifies session tokens. The rest of the
// application depends only on the OwnerResolver capability, never on the
// concrete token mechanism.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"plutus/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrEmailTaken   = errors.New("email already registered")
)

// Owner identifies the authenticated account for the current request.
type Owner struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// OwnerResolver resolves a session token to the owning account.
// Aggregation code never sees the session mechanism behind it.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, token string) (Owner, error)
}

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u storage.User) error
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	GetUserByID(ctx context.Context, id string) (storage.User, error)
}

type Service struct {
	store    UserStore
	secret   []byte
	tokenTTL time.Duration

	now func() time.Time // overridable in tests
}

func NewService(store UserStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Register creates an account and returns a fresh session token.
func (s *Service) Register(ctx context.Context, email, displayName, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: invalid email", ErrUnauthorized)
	}
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password too short", ErrUnauthorized)
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = email[:strings.Index(email, "@")]
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("check existing email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := storage.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.issueToken(user.ID)
}

// Login verifies credentials and returns a session token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrUnauthorized
	}
	return s.issueToken(user.ID)
}

// ResolveOwner implements OwnerResolver on top of signed JWT session
// tokens. Any parse, signature or expiry failure is ErrUnauthorized.
func (s *Service) ResolveOwner(ctx context.Context, token string) (Owner, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Owner{}, ErrUnauthorized
	}

	user, err := s.store.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, storage.ErrNotFound) {
		return Owner{}, ErrUnauthorized
	}
	if err != nil {
		return Owner{}, fmt.Errorf("look up owner: %w", err)
	}
	return Owner{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName}, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
