package redisstore

import (
	"context"
	"errors"

	"github.com/geocoder89/recipebox/internal/auth"
	"github.com/redis/go-redis/v9"
)

const (
	hashKeyPrefix = "authtoken:h:" // digest -> user id
	userKeyPrefix = "authtoken:u:" // user id -> digest
)

// TokensRepo keeps token digests in Redis as two reverse-indexed keys with no
// TTL.
type TokensRepo struct {
	rdb *redis.Client
}

func NewTokensRepo(rdb *redis.Client) *TokensRepo {
	return &TokensRepo{rdb: rdb}
}

// Replace swaps the user's digest.
func (r *TokensRepo) Replace(ctx context.Context, userID, tokenHash string) error {
	return r.swap(ctx, userID, func(pipe redis.Pipeliner, userKey string) {
		pipe.Set(ctx, userKey, tokenHash, 0)
		pipe.Set(ctx, hashKeyPrefix+tokenHash, userID, 0)
	})
}

func (r *TokensRepo) UserIDByHash(ctx context.Context, tokenHash string) (string, error) {
	id, err := r.rdb.Get(ctx, hashKeyPrefix+tokenHash).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", auth.ErrTokenNotFound
		}
		return "", err
	}
	return id, nil
}

func (r *TokensRepo) DeleteForUser(ctx context.Context, userID string) error {
	return r.swap(ctx, userID, func(pipe redis.Pipeliner, userKey string) {
		pipe.Del(ctx, userKey)
	})
}

const maxSwapAttempts = 3

// swap drops the user's current digest and applies write in one MULTI.
// WATCH on the user key makes a concurrent Replace or DeleteForUser for the
// same user retry instead of leaving an orphaned digest key behind.
func (r *TokensRepo) swap(ctx context.Context, userID string, write func(pipe redis.Pipeliner, userKey string)) error {
	userKey := userKeyPrefix + userID

	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, userKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if old != "" {
				pipe.Del(ctx, hashKeyPrefix+old)
			}
			write(pipe, userKey)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, userKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return redis.TxFailedErr
}
