package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/recipebox/internal/validation"
	"github.com/gin-gonic/gin"
)

// OwnedStore is a repository of rows that belong to one user.
type OwnedStore[E any, C any] interface {
	List(ctx context.Context, ownerID string) ([]E, error)
	Create(ctx context.Context, ownerID string, in C) (E, error)
}

type CreateObserver interface {
	ObserveCreated(resource string)
}

// OwnedHandler serves list and create for one owned resource. The owner is
// always the authenticated user; request bodies cannot name one.
type OwnedHandler[E any, C any] struct {
	store    OwnedStore[E, C]
	resource string
	observer CreateObserver
}

func NewOwnedHandler[E any, C any](resource string, store OwnedStore[E, C]) *OwnedHandler[E, C] {
	return &OwnedHandler[E, C]{store: store, resource: resource}
}

func (h *OwnedHandler[E, C]) WithObserver(o CreateObserver) *OwnedHandler[E, C] {
	h.observer = o
	return h
}

func (h *OwnedHandler[E, C]) List(ctx *gin.Context) {
	u, ok := requireUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.store.List(cctx, u.ID)
	if err != nil {
		RespondInternal(ctx, "Could not list "+h.resource, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *OwnedHandler[E, C]) Create(ctx *gin.Context) {
	u, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req C
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	created, err := h.store.Create(cctx, u.ID, req)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			RespondValidation(ctx, verr)
			return
		}

		RespondInternal(ctx, "Could not create "+h.resource, err)
		return
	}

	if h.observer != nil {
		h.observer.ObserveCreated(h.resource)
	}

	ctx.JSON(http.StatusCreated, created)
}
