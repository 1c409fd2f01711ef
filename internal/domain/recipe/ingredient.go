package recipe

import (
	"time"

	"github.com/google/uuid"
)

type Ingredient struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

type CreateIngredientRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}

func NewIngredient(ownerID string, req CreateIngredientRequest) Ingredient {
	return Ingredient{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
}
