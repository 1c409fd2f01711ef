// Package accounts owns the identity lifecycle: creating and updating users,
// checking passwords and exchanging credentials for bearer tokens.
package accounts

import (
	"context"
	"errors"

	"github.com/geocoder89/recipebox/internal/domain/user"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong or empty password and
	// inactive accounts alike, so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")

	// ErrUnauthenticated is returned when a presented token does not resolve
	// to an active user.
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")
)

type UserRepository interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Delete(ctx context.Context, id string) error
}

// TokenRepository persists one token digest per user.
type TokenRepository interface {
	Replace(ctx context.Context, userID, tokenHash string) error
	UserIDByHash(ctx context.Context, tokenHash string) (string, error)
	DeleteForUser(ctx context.Context, userID string) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Matches(hash, plain string) bool
}
