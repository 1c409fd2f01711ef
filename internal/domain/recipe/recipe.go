package recipe

import (
	"strings"
	"time"

	"github.com/geocoder89/recipebox/internal/validation"
	"github.com/google/uuid"
)

type Recipe struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	TimeMinutes int       `json:"time_minutes"`
	Price       Price     `json:"price"`
	Link        string    `json:"link"`
	Tags        []string  `json:"tags"`
	Ingredients []string  `json:"ingredients"`
	CreatedAt   time.Time `json:"-"`
}

// CreateRecipeRequest carries no owner field: the owner always comes from the
// authenticated request.
type CreateRecipeRequest struct {
	Title       string   `json:"title" binding:"required,notblank,max=255"`
	TimeMinutes *int     `json:"time_minutes" binding:"required,min=0"`
	Price       *Price   `json:"price" binding:"required"`
	Link        string   `json:"link" binding:"omitempty,max=255"`
	Tags        []string `json:"tags" binding:"omitempty,dive,uuid"`
	Ingredients []string `json:"ingredients" binding:"omitempty,dive,uuid"`
}

func NewRecipe(ownerID string, req CreateRecipeRequest) Recipe {
	r := Recipe{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       req.Title,
		Link:        req.Link,
		Tags:        dedupe(req.Tags),
		Ingredients: dedupe(req.Ingredients),
		CreatedAt:   time.Now().UTC(),
	}
	if req.TimeMinutes != nil {
		r.TimeMinutes = *req.TimeMinutes
	}
	if req.Price != nil {
		r.Price = *req.Price
	}
	return r
}

// the associations are sets; ids are compared in canonical lower case
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		id = strings.ToLower(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

// MissingRefsError reports tag/ingredient ids that do not exist. It returns
// nil when nothing is missing.
func MissingRefsError(tags, ingredients []string) error {
	if len(tags) == 0 && len(ingredients) == 0 {
		return nil
	}

	verr := &validation.Error{}
	if len(tags) > 0 {
		verr.Add("tags", "exists", "unknown ids: "+strings.Join(tags, ", "))
	}
	if len(ingredients) > 0 {
		verr.Add("ingredients", "exists", "unknown ids: "+strings.Join(ingredients, ", "))
	}
	return verr
}
