package middleware

import (
	"github.com/gin-gonic/gin"

	"couponhub/internal/cache"
	"couponhub/internal/logger"
	"couponhub/pkg/apperrors"
)

// RateLimitMiddleware caps requests per client per minute. The key is the
// authenticated user when known, the client IP otherwise. Limiter errors
// fail open so a redis hiccup does not take the API down.
func RateLimitMiddleware(limiter cache.RateLimiter, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || max <= 0 {
			c.Next()
			return
		}

		key := c.GetString(CtxUserID)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, max)
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "rate limiter unavailable", err)
			c.Next()
			return
		}
		if !allowed {
			apperrors.HandleError(c, apperrors.New(
				apperrors.CodeRateLimited, "http", "too many requests, slow down", 429))
			c.Abort()
			return
		}
		c.Next()
	}
}
