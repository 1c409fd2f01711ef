package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/recipebox/internal/auth"
)

type TokensRepo struct {
	mu     sync.RWMutex
	byUser map[string]string // userID -> digest
	byHash map[string]string // digest -> userID
}

func NewTokensRepo() *TokensRepo {
	return &TokensRepo{
		byUser: make(map[string]string),
		byHash: make(map[string]string),
	}
}

func (r *TokensRepo) Replace(_ context.Context, userID, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[userID]; ok {
		delete(r.byHash, old)
	}
	r.byUser[userID] = tokenHash
	r.byHash[tokenHash] = userID
	return nil
}

func (r *TokensRepo) UserIDByHash(_ context.Context, tokenHash string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[tokenHash]
	if !ok {
		return "", auth.ErrTokenNotFound
	}
	return id, nil
}

func (r *TokensRepo) DeleteForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[userID]; ok {
		delete(r.byHash, old)
		delete(r.byUser, userID)
	}
	return nil
}

func (r *TokensRepo) DeleteOwner(ownerID string) {
	_ = r.DeleteForUser(context.Background(), ownerID)
}
