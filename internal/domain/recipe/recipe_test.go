package recipe_test

import (
	"testing"

	"github.com/geocoder89/recipebox/internal/domain/recipe"
)

func TestNewRecipeDedupesAssociations(t *testing.T) {
	minutes := 10
	price := recipe.MustParsePrice("5")

	r := recipe.NewRecipe("owner-1", recipe.CreateRecipeRequest{
		Title:       "Soup",
		TimeMinutes: &minutes,
		Price:       &price,
		Tags:        []string{"a", "b", "a"},
		Ingredients: []string{"x", "x"},
	})

	if r.UserID != "owner-1" {
		t.Fatalf("owner not set: %q", r.UserID)
	}
	if len(r.Tags) != 2 || len(r.Ingredients) != 1 {
		t.Fatalf("tags=%v ingredients=%v", r.Tags, r.Ingredients)
	}
	if r.TimeMinutes != 10 || !r.Price.Equal(price) {
		t.Fatalf("unexpected recipe %+v", r)
	}
}
