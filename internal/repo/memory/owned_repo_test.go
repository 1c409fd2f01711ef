package memory

import (
	"context"
	"testing"

	"github.com/geocoder89/recipebox/internal/domain/recipe"
	"github.com/geocoder89/recipebox/internal/validation"
	"github.com/stretchr/testify/require"
)

func TestTagsRepo_ScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	r := NewTagsRepo()

	for _, name := range []string{"Dessert", "Vegan", "breakfast", "Apple"} {
		_, err := r.Create(ctx, "u1", recipe.CreateTagRequest{Name: name})
		require.NoError(t, err)
	}
	_, err := r.Create(ctx, "u2", recipe.CreateTagRequest{Name: "NonVeg"})
	require.NoError(t, err)

	got, err := r.List(ctx, "u1")
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, tg := range got {
		require.Equal(t, "u1", tg.UserID)
		names = append(names, tg.Name)
	}
	// byte-wise descending: lower-case sorts above upper-case
	require.Equal(t, []string{"breakfast", "Vegan", "Dessert", "Apple"}, names)

	other, err := r.List(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	require.Equal(t, "NonVeg", other[0].Name)

	none, err := r.List(ctx, "u3")
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestOwnedRepo_DeleteOwner(t *testing.T) {
	ctx := context.Background()
	r := NewIngredientsRepo()

	_, _ = r.Create(ctx, "u1", recipe.CreateIngredientRequest{Name: "Salt"})
	_, _ = r.Create(ctx, "u2", recipe.CreateIngredientRequest{Name: "Pepper"})

	r.DeleteOwner("u1")

	left, _ := r.List(ctx, "u1")
	require.Empty(t, left)
	kept, _ := r.List(ctx, "u2")
	require.Len(t, kept, 1)
}

func TestRecipesRepo_References(t *testing.T) {
	ctx := context.Background()
	tags := NewTagsRepo()
	ingredients := NewIngredientsRepo()
	recipes := NewRecipesRepo(tags, ingredients)

	tag, err := tags.Create(ctx, "u1", recipe.CreateTagRequest{Name: "Quick"})
	require.NoError(t, err)

	mins := 10
	price := recipe.MustParsePrice("5.50")

	t.Run("known references", func(t *testing.T) {
		rec, err := recipes.Create(ctx, "u1", recipe.CreateRecipeRequest{
			Title:       "Toast",
			TimeMinutes: &mins,
			Price:       &price,
			Tags:        []string{tag.ID, tag.ID},
		})
		require.NoError(t, err)
		require.Equal(t, []string{tag.ID}, rec.Tags)
		require.Empty(t, rec.Ingredients)
	})

	t.Run("unknown ingredient", func(t *testing.T) {
		_, err := recipes.Create(ctx, "u1", recipe.CreateRecipeRequest{
			Title:       "Soup",
			TimeMinutes: &mins,
			Price:       &price,
			Ingredients: []string{"5f0c4f1e-0000-4000-8000-000000000000"},
		})
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "ingredients", verr.Fields[0].Field)
	})

	got, err := recipes.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Toast", got[0].Title)
}
