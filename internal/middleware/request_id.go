package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"couponhub/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware assigns each request an id, reusing the client's when
// one was sent, and exposes it in the response headers and the log context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}
