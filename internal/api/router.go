package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"menu-planner/internal/api/handlers"
	authHandler "menu-planner/internal/api/handlers/auth"
	"menu-planner/internal/api/handlers/health"
	menuHandler "menu-planner/internal/api/handlers/menu"
	recipeHandler "menu-planner/internal/api/handlers/recipe"
	"menu-planner/internal/api/middleware"
	"menu-planner/internal/core/menu"
	"menu-planner/internal/core/recipe"
	"menu-planner/internal/infrastructure/config"
	"menu-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// requestTimeout bounds store and catalog calls made by one request.
const requestTimeout = 30 * time.Second

// Dependencies are the services the router exposes.
type Dependencies struct {
	Recipes recipe.Repository
	Menu    *menu.Service
	// Pingers are checked by /ready
	Pingers map[string]health.Pinger
	// Registry receives HTTP metrics and backs the metrics endpoint. Nil
	// disables both.
	Registry *prometheus.Registry
}

// SetupRouter builds the gin engine.
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Recipes == nil || deps.Menu == nil {
		return nil, fmt.Errorf("recipe repository and menu service are required")
	}

	common.LogInfo("setting up router",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.String("store", cfg.Store.Driver),
	)

	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(requestid.New())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	origins := cfg.CORS.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Auth-Token", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(origins),
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	if deps.Registry != nil && cfg.Metrics.Enabled {
		router.Use(middleware.NewHTTPMetrics(deps.Registry).Handler())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	router.Use(timeout(requestTimeout))

	healthH := health.NewHandler(cfg.App.Version, cfg.Store.Driver, deps.Pingers)
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)

	api := router.Group("/api")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.NewDeduplicator(cfg.DedupWindow).Handler())

	api.POST("/login", authHandler.NewHandler(cfg.Auth.SecretCode).Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.Auth.SecretCode))
	{
		recipes := recipeHandler.NewHandler(deps.Recipes)
		protected.GET("/recipes", recipes.List)
		protected.POST("/recipes", recipes.Create)
		protected.PUT("/recipes/:id", recipes.Update)
		protected.DELETE("/recipes/:id", recipes.Delete)
		protected.POST("/export-json", recipes.Export)
		protected.POST("/import-json", recipes.Import)

		plan := menuHandler.NewHandler(deps.Menu)
		protected.POST("/generate-menu", plan.Generate)
		protected.GET("/last-menu", plan.Last)
		protected.POST("/update-meal-servings", plan.UpdateMealServings)
		protected.POST("/update-dessert-servings", plan.UpdateDessertServings)
		protected.POST("/regenerate-meal", plan.RegenerateMeal)
		protected.POST("/regenerate-dessert", plan.RegenerateDessert)
		protected.POST("/set-manual-meal", plan.SetManualMeal)
		protected.POST("/set-manual-dessert", plan.SetManualDessert)
		protected.POST("/add-manual-meal", plan.AddManualMeal)
		protected.POST("/remove-manual-meal", plan.RemoveManualMeal)

		protected.POST("/toggle-shopping-item", plan.ToggleShoppingItem)
		protected.POST("/update-shopping-qty", plan.UpdateShoppingQty)
		protected.POST("/add-shopping-extra", plan.AddShoppingExtra)
		protected.POST("/remove-shopping-extra", plan.RemoveShoppingExtra)
		protected.POST("/clear-shopping-extras", plan.ClearShoppingExtras)
	}

	router.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, common.NotFound("route %s %s", c.Request.Method, c.Request.URL.Path))
	})

	common.LogInfo("router setup completed",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Bool("metrics", deps.Registry != nil && cfg.Metrics.Enabled),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}

// timeout attaches a deadline to the request context and reports 504 when a
// handler ran past it without answering.
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", d),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    "REQUEST_TIMEOUT",
				Message: "request timeout",
				Details: d.String(),
			})
		}
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
