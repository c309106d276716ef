package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"couponhub/internal/auth"
	"couponhub/internal/middleware"
	"couponhub/internal/models"
	"couponhub/internal/repositories"
	"couponhub/internal/services"
	"couponhub/internal/services/dto"
)

type AdminHandler struct {
	BaseHandler
	users        services.UserService
	coupons      services.CouponService
	gamification services.GamificationService
	usage        repositories.UsageRepository
	jwtManager   *auth.Manager
}

func NewAdminHandler(
	users services.UserService,
	coupons services.CouponService,
	gamification services.GamificationService,
	usage repositories.UsageRepository,
	jwtManager *auth.Manager,
) *AdminHandler {
	return &AdminHandler{
		users:        users,
		coupons:      coupons,
		gamification: gamification,
		usage:        usage,
		jwtManager:   jwtManager,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/admin",
		middleware.AuthMiddleware(h.jwtManager),
		middleware.AdminMiddleware(),
	)
	{
		group.GET("/users", h.ListUsers)
		group.PATCH("/users/:id/status", h.SetUserStatus)
		group.PATCH("/users/:id/role", h.SetUserRole)
		group.DELETE("/users/:id", h.DeleteUser)

		group.PATCH("/coupons/:id/status", h.SetCouponStatus)

		group.POST("/badges", h.CreateBadge)
		group.DELETE("/badges/:id", h.DeleteBadge)

		group.GET("/stats", h.Stats)
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.users.ListUsers(c.Request.Context(), q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, page)
}

func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req dto.UpdateUserStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.users.SetStatus(c.Request.Context(), c.Param("id"), models.UserStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, gin.H{"message": "status updated"})
}

func (h *AdminHandler) SetUserRole(c *gin.Context) {
	var req dto.UpdateUserRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.users.SetRole(c.Request.Context(), c.Param("id"), models.UserRole(req.Role))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, gin.H{"message": "role updated"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, gin.H{"message": "user deleted"})
}

type setCouponStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending active expired removed"`
}

func (h *AdminHandler) SetCouponStatus(c *gin.Context) {
	var req setCouponStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.coupons.SetStatus(c.Request.Context(), c.Param("id"), models.CouponStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, gin.H{"message": "status updated"})
}

func (h *AdminHandler) CreateBadge(c *gin.Context) {
	var req dto.CreateBadgeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	badge, err := h.gamification.CreateBadge(c.Request.Context(), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, badge)
}

func (h *AdminHandler) DeleteBadge(c *gin.Context) {
	if err := h.gamification.DeleteBadge(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, gin.H{"message": "badge deleted"})
}

// Stats aggregates the usage log for the last 30 days.
func (h *AdminHandler) Stats(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -30)
	counts, err := h.usage.SummarizeSince(c.Request.Context(), since)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, gin.H{"since": since, "events": counts})
}
