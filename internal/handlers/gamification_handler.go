package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"couponhub/internal/auth"
	"couponhub/internal/middleware"
	"couponhub/internal/services"
	"couponhub/internal/services/dto"
)

type GamificationHandler struct {
	BaseHandler
	gamification services.GamificationService
	jwtManager   *auth.Manager
}

func NewGamificationHandler(gamification services.GamificationService, jwtManager *auth.Manager) *GamificationHandler {
	return &GamificationHandler{gamification: gamification, jwtManager: jwtManager}
}

func (h *GamificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/gamification")
	{
		group.GET("/badges", h.ListBadges)
		group.GET("/leaderboard", h.Leaderboard)
	}

	authed := rg.Group("/gamification", middleware.AuthMiddleware(h.jwtManager))
	{
		authed.GET("/achievements", h.Achievements)
		authed.GET("/points/history", h.PointHistory)
	}
}

func (h *GamificationHandler) ListBadges(c *gin.Context) {
	badges, err := h.gamification.ListBadges(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, badges)
}

func (h *GamificationHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	board, err := h.gamification.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, board)
}

func (h *GamificationHandler) Achievements(c *gin.Context) {
	achievements, err := h.gamification.GetAchievements(c.Request.Context(), h.CallerID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, achievements)
}

func (h *GamificationHandler) PointHistory(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.gamification.ListPointEvents(c.Request.Context(), h.CallerID(c), q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, page)
}
