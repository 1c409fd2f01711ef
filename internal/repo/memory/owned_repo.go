package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/recipebox/internal/domain/recipe"
)

// OwnedRepo keeps rows of one entity type in memory. Every read and write is
// keyed by the owner id; there is no unscoped accessor.
type OwnedRepo[E any, C any] struct {
	mu    sync.RWMutex
	items []E

	build    func(ownerID string, in C) E
	ownerOf  func(E) string
	idOf     func(E) string
	less     func(a, b E) bool                    // nil keeps insertion order
	validate func(ctx context.Context, e E) error // optional pre-insert check
}

func (r *OwnedRepo[E, C]) List(_ context.Context, ownerID string) ([]E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]E, 0)
	for _, e := range r.items {
		if r.ownerOf(e) == ownerID {
			out = append(out, e)
		}
	}

	if r.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return r.less(out[i], out[j]) })
	}
	return out, nil
}

func (r *OwnedRepo[E, C]) Create(ctx context.Context, ownerID string, in C) (E, error) {
	e := r.build(ownerID, in)

	if r.validate != nil {
		if err := r.validate(ctx, e); err != nil {
			var zero E
			return zero, err
		}
	}

	r.mu.Lock()
	r.items = append(r.items, e)
	r.mu.Unlock()

	return e, nil
}

func (r *OwnedRepo[E, C]) DeleteOwner(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	for _, e := range r.items {
		if r.ownerOf(e) != ownerID {
			kept = append(kept, e)
		}
	}
	r.items = kept
}

// missing returns the ids that match no row, regardless of owner.
func (r *OwnedRepo[E, C]) missing(ids []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	known := make(map[string]struct{}, len(r.items))
	for _, e := range r.items {
		known[r.idOf(e)] = struct{}{}
	}

	var out []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func NewTagsRepo() *OwnedRepo[recipe.Tag, recipe.CreateTagRequest] {
	return &OwnedRepo[recipe.Tag, recipe.CreateTagRequest]{
		build:   recipe.NewTag,
		ownerOf: func(t recipe.Tag) string { return t.UserID },
		idOf:    func(t recipe.Tag) string { return t.ID },
		less:    func(a, b recipe.Tag) bool { return a.Name > b.Name },
	}
}

func NewIngredientsRepo() *OwnedRepo[recipe.Ingredient, recipe.CreateIngredientRequest] {
	return &OwnedRepo[recipe.Ingredient, recipe.CreateIngredientRequest]{
		build:   recipe.NewIngredient,
		ownerOf: func(i recipe.Ingredient) string { return i.UserID },
		idOf:    func(i recipe.Ingredient) string { return i.ID },
		less:    func(a, b recipe.Ingredient) bool { return a.Name > b.Name },
	}
}

// NewRecipesRepo links recipes to the given tag and ingredient repos so that
// unknown association ids are rejected.
func NewRecipesRepo(
	tags *OwnedRepo[recipe.Tag, recipe.CreateTagRequest],
	ingredients *OwnedRepo[recipe.Ingredient, recipe.CreateIngredientRequest],
) *OwnedRepo[recipe.Recipe, recipe.CreateRecipeRequest] {
	return &OwnedRepo[recipe.Recipe, recipe.CreateRecipeRequest]{
		build:   recipe.NewRecipe,
		ownerOf: func(r recipe.Recipe) string { return r.UserID },
		idOf:    func(r recipe.Recipe) string { return r.ID },
		validate: func(_ context.Context, r recipe.Recipe) error {
			return recipe.MissingRefsError(tags.missing(r.Tags), ingredients.missing(r.Ingredients))
		},
	}
}
