package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/recipebox/internal/auth"
	"github.com/geocoder89/recipebox/internal/domain/user"
)

// TokenIssuer exchanges verified credentials for an opaque bearer token and
// resolves presented tokens back to users.
type TokenIssuer struct {
	creds  *CredentialStore
	tokens TokenRepository
	mgr    *auth.Manager
}

func NewTokenIssuer(creds *CredentialStore, tokens TokenRepository, mgr *auth.Manager) *TokenIssuer {
	return &TokenIssuer{creds: creds, tokens: tokens, mgr: mgr}
}

// IssueToken verifies the credentials and returns a fresh token. A user holds
// one token at a time: issuing replaces (and so invalidates) the previous one.
func (t *TokenIssuer) IssueToken(ctx context.Context, email, password string) (string, error) {
	if password == "" {
		return "", ErrInvalidCredentials
	}

	u, err := t.creds.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if !u.IsActive || !t.creds.VerifyPassword(u, password) {
		return "", ErrInvalidCredentials
	}

	raw, err := t.mgr.Generate()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	if err := t.tokens.Replace(ctx, u.ID, t.mgr.Hash(raw)); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	return raw, nil
}

// Resolve maps a presented token to its active owner.
func (t *TokenIssuer) Resolve(ctx context.Context, raw string) (user.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return user.User{}, ErrUnauthenticated
	}

	userID, err := t.tokens.UserIDByHash(ctx, t.mgr.Hash(raw))
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, fmt.Errorf("lookup token: %w", err)
	}

	u, err := t.creds.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, fmt.Errorf("lookup token owner: %w", err)
	}

	if !u.IsActive {
		return user.User{}, ErrUnauthenticated
	}

	return u, nil
}
