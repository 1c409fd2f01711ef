package handlers

import (
	"github.com/geocoder89/recipebox/internal/domain/user"
	"github.com/geocoder89/recipebox/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// requireUser reads the gate's resolved user. Routes are mounted behind
// RequireAuth, so a miss means a wiring bug; it still fails closed.
func requireUser(ctx *gin.Context) (user.User, bool) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Authentication credentials were not provided.")
		return user.User{}, false
	}
	return u, true
}
