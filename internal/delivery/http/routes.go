package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pricematrix/backend/config"
	"github.com/pricematrix/backend/internal/infrastructure/ratelimit"
)

// SetupRouter creates and configures the Gin router.
// A nil limiter disables per-client rate limiting.
func SetupRouter(cfg *config.Config, handler *Handler, limiter ratelimit.Limiter) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(RateLimitMiddleware(limiter))
	}
	{
		v1.POST("/prices/lookup", handler.LookupPrice)
		v1.GET("/products", handler.ListProducts)
	}

	return router
}
