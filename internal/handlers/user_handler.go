package handlers

import (
	"github.com/gin-gonic/gin"

	"couponhub/internal/auth"
	"couponhub/internal/middleware"
	"couponhub/internal/services"
	"couponhub/internal/services/dto"
)

type UserHandler struct {
	BaseHandler
	users      services.UserService
	jwtManager *auth.Manager
}

func NewUserHandler(users services.UserService, jwtManager *auth.Manager) *UserHandler {
	return &UserHandler{users: users, jwtManager: jwtManager}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/:id", h.GetProfile)

	authed := rg.Group("/users", middleware.AuthMiddleware(h.jwtManager))
	{
		authed.PUT("/me", h.UpdateProfile)
		authed.DELETE("/me", h.DeleteAccount)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.users.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, profile)
}

// DeleteAccount hard-deletes the caller's own account.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), h.CallerID(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, gin.H{"message": "account deleted"})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), h.CallerID(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}
