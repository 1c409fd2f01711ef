package postgres

import (
	"context"
	"time"

	"github.com/geocoder89/recipebox/internal/domain/recipe"
	"github.com/geocoder89/recipebox/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRecipesRepo(pool *pgxpool.Pool, prom *observability.Prom) *OwnedRepo[recipe.Recipe, recipe.CreateRecipeRequest] {
	return &OwnedRepo[recipe.Recipe, recipe.CreateRecipeRequest]{pool: pool, prom: prom, table: recipeTable{}}
}

type recipeTable struct{}

func (recipeTable) name() string { return "recipes" }

func (recipeTable) build(ownerID string, in recipe.CreateRecipeRequest) recipe.Recipe {
	return recipe.NewRecipe(ownerID, in)
}

// insert writes the recipe row and its links in the caller's transaction.
// Referenced tags and ingredients must exist; their owner is not checked.
func (recipeTable) insert(ctx context.Context, tx pgx.Tx, r recipe.Recipe) error {
	missingTags, err := missingIDs(ctx, tx, "tags", r.Tags)
	if err != nil {
		return err
	}
	missingIngredients, err := missingIDs(ctx, tx, "ingredients", r.Ingredients)
	if err != nil {
		return err
	}
	if err := recipe.MissingRefsError(missingTags, missingIngredients); err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO recipes (id, user_id, title, time_minutes, price, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.UserID, r.Title, r.TimeMinutes, r.Price.Decimal, r.Link, r.CreatedAt,
	)
	if err != nil {
		return err
	}

	if len(r.Tags) == 0 && len(r.Ingredients) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, id := range r.Tags {
		batch.Queue(`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2)`, r.ID, id)
	}
	for _, id := range r.Ingredients {
		batch.Queue(`INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES ($1, $2)`, r.ID, id)
	}

	return tx.SendBatch(ctx, batch).Close()
}

func (recipeTable) list(ctx context.Context, pool *pgxpool.Pool, ownerID string) ([]recipe.Recipe, error) {
	rows, err := pool.Query(ctx, `
		SELECT r.id, r.title, r.time_minutes, r.price, r.link, r.created_at,
			COALESCE((SELECT array_agg(rt.tag_id::text ORDER BY rt.tag_id)
				FROM recipe_tags rt WHERE rt.recipe_id = r.id), '{}') AS tags,
			COALESCE((SELECT array_agg(ri.ingredient_id::text ORDER BY ri.ingredient_id)
				FROM recipe_ingredients ri WHERE ri.recipe_id = r.id), '{}') AS ingredients
		FROM recipes r
		WHERE r.user_id = $1
		ORDER BY r.created_at, r.id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []recipe.Recipe
	for rows.Next() {
		var (
			rec       recipe.Recipe
			createdAt time.Time
		)
		// numeric scans straight into decimal.Decimal through the codec
		// registered in db.NewPool
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.TimeMinutes, &rec.Price.Decimal, &rec.Link, &createdAt, &rec.Tags, &rec.Ingredients); err != nil {
			return nil, err
		}

		rec.UserID = ownerID
		rec.CreatedAt = createdAt
		out = append(out, rec)
	}

	return out, rows.Err()
}

// missingIDs returns the ids with no row in table.
func missingIDs(ctx context.Context, tx pgx.Tx, table string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := tx.Query(ctx, `SELECT id::text FROM `+table+` WHERE id::text = ANY($1::text[])`, ids)
	if err != nil {
		return nil, err
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
