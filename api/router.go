package api

import (
	"storefront/api/catalog"
	"storefront/api/checkout"
	"storefront/api/health"
	"storefront/api/middleware"
	"storefront/config"
	"storefront/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Router Route configuration.
type Router struct {
	engine             *gin.Engine
	config             *config.Config
	healthController   *health.Controller
	checkoutController *checkout.Controller
	catalogController  *catalog.Controller
}

// NewRouter creates the route configuration.
func NewRouter(
	cfg *config.Config,
	serverMetrics *metrics.ServerMetrics,
	healthController *health.Controller,
	checkoutController *checkout.Controller,
	catalogController *catalog.Controller,
) *Router {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Middleware order matters: the request ID must exist before anything
	// logs, and recovery must wrap everything below it.
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.MetricsMiddleware(serverMetrics))
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:             engine,
		config:             cfg,
		healthController:   healthController,
		checkoutController: checkoutController,
		catalogController:  catalogController,
	}
}

// SetupRoutes sets up all routes.
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	{
		r.healthController.RegisterRoutes(apiGroup)
		r.checkoutController.RegisterRoutes(apiGroup)
		r.catalogController.RegisterRoutes(apiGroup)
	}

	r.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

// GetEngine returns the gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
