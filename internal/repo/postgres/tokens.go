package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/recipebox/internal/auth"
	"github.com/geocoder89/recipebox/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokensRepo keeps one token digest per user in auth_tokens.
type TokensRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTokensRepo(pool *pgxpool.Pool, prom *observability.Prom) *TokensRepo {
	return &TokensRepo{pool: pool, prom: prom}
}

// Replace upserts on user_id, so the previous digest stops resolving in the
// same statement that installs the new one.
func (r *TokensRepo) Replace(ctx context.Context, userID, tokenHash string) error {
	return r.prom.ObserveDB("tokens.replace", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO auth_tokens (user_id, token_hash, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (user_id)
			DO UPDATE SET token_hash = EXCLUDED.token_hash, created_at = EXCLUDED.created_at
		`, userID, tokenHash)
		return err
	})
}

func (r *TokensRepo) UserIDByHash(ctx context.Context, tokenHash string) (string, error) {
	var userID string

	err := r.prom.ObserveDB("tokens.lookup", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT user_id FROM auth_tokens WHERE token_hash = $1`, tokenHash,
		).Scan(&userID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", auth.ErrTokenNotFound
		}
		return "", err
	}

	return userID, nil
}

func (r *TokensRepo) DeleteForUser(ctx context.Context, userID string) error {
	return r.prom.ObserveDB("tokens.delete", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
		return err
	})
}
