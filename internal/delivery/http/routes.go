package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cartcompare/backend/config"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(cfg *config.Config, logger *zap.Logger, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	rateLimiter := NewClientRateLimiter(cfg.RateLimit.PerClientRPS, cfg.RateLimit.PerClientBurst)

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(rateLimiter.Middleware())
	{
		v1.POST("/search", handler.Search)
	}

	return router
}
