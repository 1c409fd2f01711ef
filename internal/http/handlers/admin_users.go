package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/recipebox/internal/domain/user"
	"github.com/geocoder89/recipebox/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserAdmin interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateUser(ctx context.Context, u user.User, upd user.Update) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// AdminUsersHandler is the operator console over accounts. Mounted behind
// RequireStaff.
type AdminUsersHandler struct {
	users UserAdmin
}

func NewAdminUsersHandler(users UserAdmin) *AdminUsersHandler {
	return &AdminUsersHandler{users: users}
}

func (h *AdminUsersHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.users.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list users", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

func (h *AdminUsersHandler) Get(ctx *gin.Context) {
	u, ok := h.load(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AdminUsersHandler) Update(ctx *gin.Context) {
	u, ok := h.load(ctx)
	if !ok {
		return
	}

	var req user.AdminUpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	updated, err := h.users.UpdateUser(cctx, u, user.Update{
		Name:   req.Name,
		Active: req.IsActive,
		Staff:  req.IsStaff,
	})
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.As(err, &verr):
			RespondValidation(ctx, verr)
		default:
			RespondInternal(ctx, "Could not update user", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *AdminUsersHandler) Delete(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.users.Delete(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not delete user", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AdminUsersHandler) load(ctx *gin.Context) (user.User, bool) {
	id, ok := userIDParam(ctx)
	if !ok {
		return user.User{}, false
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return user.User{}, false
		}
		RespondInternal(ctx, "Could not load user", err)
		return user.User{}, false
	}

	return u, true
}

func userIDParam(ctx *gin.Context) (string, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		RespondBadRequest(ctx, "Invalid user id", gin.H{
			"fields": []FieldError{{Field: "id", Rule: "uuid", Message: "must be a valid UUID"}},
		})
		return "", false
	}
	return id.String(), true
}
