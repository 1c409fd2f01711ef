package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireStaff must run after RequireAuth.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)

		if !ok {
			unauthorized(c, "Missing identity context")
			return
		}
		if !u.IsStaff {
			m.rejected("forbidden")
			abortJSON(c, http.StatusForbidden, "forbidden", "Staff access required")
			return
		}
		c.Next()
	}
}
