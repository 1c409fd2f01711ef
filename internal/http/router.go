package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/recipebox/internal/accounts"
	"github.com/geocoder89/recipebox/internal/domain/recipe"
	"github.com/geocoder89/recipebox/internal/http/handlers"
	"github.com/geocoder89/recipebox/internal/http/middlewares"
	"github.com/geocoder89/recipebox/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router wires into handlers. Stores are interfaces so
// the same router runs on PostgreSQL in production and in memory in tests.
type Deps struct {
	Env string

	Credentials *accounts.CredentialStore
	Tokens      *accounts.TokenIssuer

	Tags        handlers.OwnedStore[recipe.Tag, recipe.CreateTagRequest]
	Ingredients handlers.OwnedStore[recipe.Ingredient, recipe.CreateIngredientRequest]
	Recipes     handlers.OwnedStore[recipe.Recipe, recipe.CreateRecipeRequest]

	ReadyChecks map[string]handlers.Check

	// nil disables /metrics and request metrics
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	OTelEnabled        bool
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	if deps.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidators()

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if deps.OTelEnabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.HTTPMetrics())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.CORSAllowedOrigins))
	if deps.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(deps.MaxBodyBytes))
	}

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Not found.")
	})
	r.NoMethod(func(ctx *gin.Context) {
		handlers.RespondMethodNotAllowed(ctx, allowedMethods(r, ctx.Request.URL.Path)...)
	})

	// health
	h := handlers.NewHealthHandler(deps.ReadyChecks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authMW := middlewares.NewAuthMiddleware(deps.Tokens)

	var tokenMetrics handlers.TokenObserver
	if deps.Prom != nil {
		tokenMetrics = deps.Prom
		authMW.WithObserver(deps.Prom)
	}
	usersHandler := handlers.NewUsersHandler(deps.Credentials, deps.Tokens, tokenMetrics)

	api := r.Group("/api")

	// the only unauthenticated API endpoints
	public := api.Group("/user", middlewares.RequireJSON())
	public.POST("/create", usersHandler.Create)
	public.POST("/token", usersHandler.Token)

	authed := api.Group("", authMW.RequireAuth(), middlewares.RequireJSON())

	// POST and DELETE are answered explicitly so that the gate runs first
	me := authed.Group("/user/me")
	me.GET("", usersHandler.Me)
	me.PATCH("", usersHandler.UpdateMe)
	me.PUT("", usersHandler.ReplaceMe)
	me.POST("", handlers.MethodNotAllowed(http.MethodGet, http.MethodPut, http.MethodPatch))
	me.DELETE("", handlers.MethodNotAllowed(http.MethodGet, http.MethodPut, http.MethodPatch))

	tags := handlers.NewOwnedHandler("tags", deps.Tags)
	ingredients := handlers.NewOwnedHandler("ingredients", deps.Ingredients)
	recipes := handlers.NewOwnedHandler("recipes", deps.Recipes)
	if deps.Prom != nil {
		tags.WithObserver(deps.Prom)
		ingredients.WithObserver(deps.Prom)
		recipes.WithObserver(deps.Prom)
	}

	rec := authed.Group("/recipe")
	rec.GET("/tags", tags.List)
	rec.POST("/tags", tags.Create)
	rec.GET("/ingredients", ingredients.List)
	rec.POST("/ingredients", ingredients.Create)
	rec.GET("/recipes", recipes.List)
	rec.POST("/recipes", recipes.Create)

	adminHandler := handlers.NewAdminUsersHandler(deps.Credentials)

	admin := authed.Group("/admin", authMW.RequireStaff())
	admin.GET("/users", adminHandler.List)
	admin.GET("/users/:id", adminHandler.Get)
	admin.PATCH("/users/:id", adminHandler.Update)
	admin.DELETE("/users/:id", adminHandler.Delete)

	return r
}

// allowedMethods lists the methods registered for a concrete path. Only
// static routes are matched; parameterised routes get a bare 405.
func allowedMethods(r *gin.Engine, path string) []string {
	var out []string
	for _, route := range r.Routes() {
		if route.Path == path {
			out = append(out, route.Method)
		}
	}
	return out
}
