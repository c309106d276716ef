package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"couponhub/internal/cache"
	"couponhub/internal/config"
	"couponhub/internal/handlers"
	"couponhub/internal/middleware"
)

// SetupRoutes mounts the health probe and the versioned API.
func SetupRoutes(router *gin.Engine, h *handlers.AppHandlers, limiter cache.RateLimiter, cfg *config.Config) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.CORSMiddleware(cfg.HTTP.CORSOrigin),
		middleware.RateLimitMiddleware(limiter, cfg.HTTP.RateLimitMax),
	)

	h.Auth.RegisterRoutes(api)
	h.Users.RegisterRoutes(api)
	h.Coupons.RegisterRoutes(api)
	h.Gamification.RegisterRoutes(api)
	h.Subscriptions.RegisterRoutes(api)
	h.Admin.RegisterRoutes(api)
}
