package postgres

import (
	"context"
	"fmt"

	"github.com/geocoder89/recipebox/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ownedTable is the per-entity SQL behind an OwnedRepo.
type ownedTable[E any, C any] interface {
	name() string
	build(ownerID string, in C) E
	insert(ctx context.Context, tx pgx.Tx, e E) error
	list(ctx context.Context, pool *pgxpool.Pool, ownerID string) ([]E, error)
}

// OwnedRepo lists and creates rows that belong to a single user. The owner id
// is a required argument of every method, so there is no way to read or write
// outside one user's rows.
type OwnedRepo[E any, C any] struct {
	pool  *pgxpool.Pool
	prom  *observability.Prom
	table ownedTable[E, C]
}

func (r *OwnedRepo[E, C]) List(ctx context.Context, ownerID string) ([]E, error) {
	var out []E

	err := r.prom.ObserveDB(r.table.name()+".list", func() error {
		var err error
		out, err = r.table.list(ctx, r.pool, ownerID)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.name(), err)
	}
	if out == nil {
		out = make([]E, 0)
	}
	return out, nil
}

func (r *OwnedRepo[E, C]) Create(ctx context.Context, ownerID string, in C) (E, error) {
	e := r.table.build(ownerID, in)

	err := r.prom.ObserveDB(r.table.name()+".create", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := r.table.insert(ctx, tx, e); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		var zero E
		return zero, err
	}
	return e, nil
}
