package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/recipebox/internal/accounts"
	"github.com/geocoder89/recipebox/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenResolver interface {
	Resolve(ctx context.Context, raw string) (user.User, error)
}

// RejectObserver counts requests the gate turns away.
type RejectObserver interface {
	ObserveAuthRejected(reason string)
}

type AuthMiddleware struct {
	tokens   TokenResolver
	observer RejectObserver
}

func NewAuthMiddleware(tokens TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// WithObserver reports each rejection as "missing", "invalid" or "forbidden".
func (m *AuthMiddleware) WithObserver(o RejectObserver) *AuthMiddleware {
	m.observer = o
	return m
}

func (m *AuthMiddleware) rejected(reason string) {
	if m.observer != nil {
		m.observer.ObserveAuthRejected(reason)
	}
}

// RequireAuth resolves "Authorization: Token <key>" (or Bearer) to an active
// user and stores it on the context. Anything else is a 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := tokenFromHeader(c.GetHeader("Authorization"))
		if !ok {
			m.rejected("missing")
			unauthorized(c, "Authentication credentials were not provided.")
			return
		}

		u, err := m.tokens.Resolve(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, accounts.ErrUnauthenticated) {
				m.rejected("invalid")
				unauthorized(c, "Invalid token.")
				return
			}

			slog.Default().ErrorContext(c.Request.Context(), "token resolve failed", "err", err)
			abortJSON(c, http.StatusInternalServerError, "internal_error", "Could not verify credentials")
			return
		}

		SetCurrentUser(c, u)

		c.Next()
	}
}

func SetCurrentUser(c *gin.Context, u user.User) {
	c.Set(ctxUserKey, u)
}

// CurrentUser returns the user resolved by RequireAuth.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func tokenFromHeader(header string) (string, bool) {
	scheme, raw, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}

	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t") {
		return "", false
	}

	return raw, true
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Token")
	abortJSON(c, http.StatusUnauthorized, "unauthorized", message)
}

func abortJSON(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)

	body := gin.H{
		"code":    code,
		"message": message,
	}
	if id, ok := reqID.(string); ok && id != "" {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
