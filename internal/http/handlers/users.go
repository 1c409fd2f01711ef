package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/recipebox/internal/accounts"
	"github.com/geocoder89/recipebox/internal/domain/user"
	"github.com/geocoder89/recipebox/internal/validation"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	CreateUser(ctx context.Context, email, password string, attrs user.Attrs) (user.User, error)
	UpdateUser(ctx context.Context, u user.User, upd user.Update) (user.User, error)
}

type TokenService interface {
	IssueToken(ctx context.Context, email, password string) (string, error)
}

// TokenObserver records token issuance outcomes; nil disables it.
type TokenObserver interface {
	ObserveToken(result string)
}

type UsersHandler struct {
	users   UserService
	tokens  TokenService
	metrics TokenObserver
}

func NewUsersHandler(users UserService, tokens TokenService, metrics TokenObserver) *UsersHandler {
	return &UsersHandler{users: users, tokens: tokens, metrics: metrics}
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.CreateUser(cctx, req.Email, string(req.Password), user.Attrs{Name: req.Name})
	if err != nil {
		h.respondUserError(ctx, err, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u.Profile())
}

func (h *UsersHandler) Token(ctx *gin.Context) {
	var req user.TokenRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	token, err := h.tokens.IssueToken(cctx, req.Email, string(req.Password))
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			h.observe("rejected")
			RespondError(ctx, http.StatusBadRequest, "authentication_failed",
				"Unable to authenticate with provided credentials.", nil)
			return
		}

		h.observe("error")
		RespondInternal(ctx, "Could not issue token", err)
		return
	}

	h.observe("issued")
	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *UsersHandler) Me(ctx *gin.Context) {
	u, ok := requireUser(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

// UpdateMe backs PATCH: only the fields present in the body change.
func (h *UsersHandler) UpdateMe(ctx *gin.Context) {
	u, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}

	h.applyUpdate(ctx, u, user.Update{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password.StringPtr(),
	})
}

// ReplaceMe backs PUT: email and password are required, name resets to
// empty when omitted.
func (h *UsersHandler) ReplaceMe(ctx *gin.Context) {
	u, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req user.ReplaceProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}

	h.applyUpdate(ctx, u, user.Update{
		Email:    &req.Email,
		Name:     &req.Name,
		Password: req.Password.StringPtr(),
	})
}

func (h *UsersHandler) applyUpdate(ctx *gin.Context, u user.User, upd user.Update) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	updated, err := h.users.UpdateUser(cctx, u, upd)
	if err != nil {
		h.respondUserError(ctx, err, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, updated.Profile())
}

func (h *UsersHandler) respondUserError(ctx *gin.Context, err error, message string) {
	var verr *validation.Error

	switch {
	case errors.Is(err, user.ErrEmailTaken):
		RespondValidation(ctx, validation.New("email_add", "unique", "user with this email already exists"))
	case errors.As(err, &verr):
		RespondValidation(ctx, verr)
	default:
		RespondInternal(ctx, message, err)
	}
}

func (h *UsersHandler) observe(result string) {
	if h.metrics != nil {
		h.metrics.ObserveToken(result)
	}
}
