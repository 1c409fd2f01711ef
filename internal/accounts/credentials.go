package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/recipebox/internal/domain/user"
	"github.com/geocoder89/recipebox/internal/security"
	"github.com/geocoder89/recipebox/internal/validation"
	"github.com/google/uuid"
)

// CredentialStore creates and maintains user records. Plaintext passwords
// never reach the repository.
type CredentialStore struct {
	users  UserRepository
	hasher PasswordHasher
	// optional; revoked on deactivation and deletion
	tokens TokenRepository
}

func NewCredentialStore(users UserRepository, hasher PasswordHasher, tokens TokenRepository) *CredentialStore {
	return &CredentialStore{users: users, hasher: hasher, tokens: tokens}
}

func (s *CredentialStore) CreateUser(ctx context.Context, email, password string, attrs user.Attrs) (user.User, error) {
	email = user.NormalizeEmail(email)
	if email == "" {
		return user.User{}, validation.New("email_add", "required", "is required")
	}

	hash, err := s.hash(password)
	if err != nil {
		return user.User{}, err
	}

	active := true
	if attrs.Active != nil {
		active = *attrs.Active
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         attrs.Name,
		PasswordHash: hash,
		IsActive:     active,
		IsStaff:      attrs.Staff,
		IsSuperuser:  attrs.Superuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// CreateSuperuser always yields a staff superuser, whatever else is asked for.
func (s *CredentialStore) CreateSuperuser(ctx context.Context, email, password, name string) (user.User, error) {
	return s.CreateUser(ctx, email, password, user.Attrs{
		Name:      name,
		Staff:     true,
		Superuser: true,
	})
}

func (s *CredentialStore) VerifyPassword(u user.User, candidate string) bool {
	return s.hasher.Matches(u.PasswordHash, candidate)
}

func (s *CredentialStore) UpdateUser(ctx context.Context, u user.User, upd user.Update) (user.User, error) {
	if upd.Email != nil {
		email := user.NormalizeEmail(*upd.Email)
		if email == "" {
			return user.User{}, validation.New("email_add", "required", "is required")
		}
		u.Email = email
	}

	if upd.Name != nil {
		u.Name = *upd.Name
	}

	if upd.Staff != nil {
		u.IsStaff = *upd.Staff
	}

	deactivated := false
	if upd.Active != nil {
		deactivated = u.IsActive && !*upd.Active
		u.IsActive = *upd.Active
	}

	if upd.Password != nil {
		hash, err := s.hash(*upd.Password)
		if err != nil {
			return user.User{}, err
		}
		u.PasswordHash = hash
	}

	u.UpdatedAt = time.Now().UTC()

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) || errors.Is(err, user.ErrNotFound) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("update user: %w", err)
	}

	if deactivated && s.tokens != nil {
		if err := s.tokens.DeleteForUser(ctx, u.ID); err != nil {
			return user.User{}, fmt.Errorf("revoke token: %w", err)
		}
	}

	return updated, nil
}

func (s *CredentialStore) GetByID(ctx context.Context, id string) (user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *CredentialStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return s.users.GetByEmail(ctx, user.NormalizeEmail(email))
}

func (s *CredentialStore) List(ctx context.Context) ([]user.User, error) {
	return s.users.List(ctx)
}

// Delete removes the user. Owned tags, ingredients and recipes go with it
// (the store cascades); the token is revoked explicitly because it may live
// outside the relational store.
func (s *CredentialStore) Delete(ctx context.Context, id string) error {
	if s.tokens != nil {
		if err := s.tokens.DeleteForUser(ctx, id); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}

	return s.users.Delete(ctx, id)
}

func (s *CredentialStore) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return "", validation.New("password", "max", "must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
