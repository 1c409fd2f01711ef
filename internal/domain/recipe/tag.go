package recipe

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}

func NewTag(ownerID string, req CreateTagRequest) Tag {
	return Tag{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
}
