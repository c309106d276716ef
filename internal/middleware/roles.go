package middleware

import (
	"github.com/gin-gonic/gin"

	"couponhub/internal/auth"
	"couponhub/pkg/apperrors"
)

// RequireRoles allows only callers whose role is in the list. Must run after
// AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if _, ok := allowed[role]; !ok {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCapability gates a route on the central permission table rather
// than a hardcoded role list.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if !auth.CanAccess(role, capability) {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminMiddleware is RequireRoles(admin) under its historical name.
func AdminMiddleware() gin.HandlerFunc {
	return RequireRoles(auth.RoleAdmin)
}
