package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"couponhub/internal/auth"
	"couponhub/internal/logger"
	"couponhub/pkg/apperrors"
	"couponhub/pkg/contextkeys"
)

// Gin context keys set by AuthMiddleware.
const (
	CtxUserID = "userID"
	CtxRole   = "role"
)

// AuthMiddleware validates the bearer token and stores the caller's identity
// on both the gin context and the request context. An absent header and a
// bad token produce distinct error codes.
func AuthMiddleware(jwtManager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			apperrors.HandleError(c, apperrors.ErrMissingToken)
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseToken(token)
		if err != nil {
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)

		ctx := contextkeys.WithUserID(c.Request.Context(), claims.UserID)
		ctx = contextkeys.WithRole(ctx, claims.Role)
		ctx = logger.WithUserID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves the identity when a valid token is present
// and continues anonymously otherwise. Used on public catalog routes where
// premium viewers see more.
func OptionalAuthMiddleware(jwtManager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := jwtManager.ParseToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		ctx := contextkeys.WithUserID(c.Request.Context(), claims.UserID)
		ctx = contextkeys.WithRole(ctx, claims.Role)
		ctx = logger.WithUserID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
