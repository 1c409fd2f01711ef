package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/recipebox/internal/validation"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

// RespondValidation reports field errors raised below the binding layer.
func RespondValidation(ctx *gin.Context, verr *validation.Error) {
	RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": verr.Fields})
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	ctx.Header("WWW-Authenticate", "Token")
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondMethodNotAllowed(ctx *gin.Context, allow ...string) {
	if len(allow) > 0 {
		ctx.Header("Allow", strings.Join(allow, ", "))
	}
	RespondError(ctx, http.StatusMethodNotAllowed, "method_not_allowed",
		"Method \""+ctx.Request.Method+"\" not allowed.", nil)
}

// RespondInternal logs err with the request context and hides it from the
// client.
func RespondInternal(ctx *gin.Context, message string, err error) {
	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), message,
			"err", err,
			"request_id", requestIDFrom(ctx),
			"route", ctx.FullPath(),
		)
	}
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// MethodNotAllowed answers 405 on a path that exists but does not accept the
// request method.
func MethodNotAllowed(allow ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		RespondMethodNotAllowed(ctx, allow...)
	}
}
