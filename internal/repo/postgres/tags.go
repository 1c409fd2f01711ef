package postgres

import (
	"context"
	"time"

	"github.com/geocoder89/recipebox/internal/domain/recipe"
	"github.com/geocoder89/recipebox/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewTagsRepo(pool *pgxpool.Pool, prom *observability.Prom) *OwnedRepo[recipe.Tag, recipe.CreateTagRequest] {
	return &OwnedRepo[recipe.Tag, recipe.CreateTagRequest]{pool: pool, prom: prom, table: tagTable{}}
}

func NewIngredientsRepo(pool *pgxpool.Pool, prom *observability.Prom) *OwnedRepo[recipe.Ingredient, recipe.CreateIngredientRequest] {
	return &OwnedRepo[recipe.Ingredient, recipe.CreateIngredientRequest]{pool: pool, prom: prom, table: ingredientTable{}}
}

type tagTable struct{}

func (tagTable) name() string { return "tags" }

func (tagTable) build(ownerID string, in recipe.CreateTagRequest) recipe.Tag {
	return recipe.NewTag(ownerID, in)
}

func (tagTable) insert(ctx context.Context, tx pgx.Tx, t recipe.Tag) error {
	return insertNamed(ctx, tx, "tags", t.ID, t.UserID, t.Name, t.CreatedAt)
}

func (tagTable) list(ctx context.Context, pool *pgxpool.Pool, ownerID string) ([]recipe.Tag, error) {
	var out []recipe.Tag
	err := listNamed(ctx, pool, "tags", ownerID, func(id, name string, createdAt time.Time) {
		out = append(out, recipe.Tag{ID: id, UserID: ownerID, Name: name, CreatedAt: createdAt})
	})
	return out, err
}

type ingredientTable struct{}

func (ingredientTable) name() string { return "ingredients" }

func (ingredientTable) build(ownerID string, in recipe.CreateIngredientRequest) recipe.Ingredient {
	return recipe.NewIngredient(ownerID, in)
}

func (ingredientTable) insert(ctx context.Context, tx pgx.Tx, i recipe.Ingredient) error {
	return insertNamed(ctx, tx, "ingredients", i.ID, i.UserID, i.Name, i.CreatedAt)
}

func (ingredientTable) list(ctx context.Context, pool *pgxpool.Pool, ownerID string) ([]recipe.Ingredient, error) {
	var out []recipe.Ingredient
	err := listNamed(ctx, pool, "ingredients", ownerID, func(id, name string, createdAt time.Time) {
		out = append(out, recipe.Ingredient{ID: id, UserID: ownerID, Name: name, CreatedAt: createdAt})
	})
	return out, err
}

// table is always one of the constants above, never user input.
func insertNamed(ctx context.Context, tx pgx.Tx, table, id, userID, name string, createdAt time.Time) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO `+table+` (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		id, userID, name, createdAt,
	)
	return err
}

// listNamed returns names in byte-wise descending order, independent of the
// database collation.
func listNamed(ctx context.Context, pool *pgxpool.Pool, table, ownerID string, each func(id, name string, createdAt time.Time)) error {
	rows, err := pool.Query(ctx,
		`SELECT id, name, created_at FROM `+table+`
		WHERE user_id = $1
		ORDER BY name COLLATE "C" DESC, created_at`,
		ownerID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, name  string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &name, &createdAt); err != nil {
			return err
		}
		each(id, name, createdAt)
	}

	return rows.Err()
}
