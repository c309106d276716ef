package handlers

import (
	"github.com/gin-gonic/gin"

	"couponhub/internal/auth"
	"couponhub/internal/middleware"
	"couponhub/internal/services"
	"couponhub/internal/services/dto"
)

type CouponHandler struct {
	BaseHandler
	coupons    services.CouponService
	jwtManager *auth.Manager
}

func NewCouponHandler(coupons services.CouponService, jwtManager *auth.Manager) *CouponHandler {
	return &CouponHandler{coupons: coupons, jwtManager: jwtManager}
}

func (h *CouponHandler) RegisterRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/coupons", middleware.OptionalAuthMiddleware(h.jwtManager))
	{
		public.GET("", h.List)
		public.GET("/:id", h.Get)
	}

	authed := rg.Group("/coupons", middleware.AuthMiddleware(h.jwtManager))
	{
		authed.POST("", h.Create)
		authed.GET("/mine", h.ListMine)
		authed.GET("/claims", h.ListClaims)
		authed.PUT("/:id", h.Update)
		authed.DELETE("/:id", h.Delete)
		authed.POST("/:id/claim", h.Claim)
	}
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req dto.CreateCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}

	coupon, err := h.coupons.Create(c.Request.Context(), h.CallerID(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, coupon)
}

func (h *CouponHandler) Get(c *gin.Context) {
	coupon, err := h.coupons.Get(c.Request.Context(), h.CallerID(c), h.CallerRole(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, coupon)
}

func (h *CouponHandler) List(c *gin.Context) {
	var q dto.CouponQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.coupons.List(c.Request.Context(), h.CallerRole(c), q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, page)
}

func (h *CouponHandler) ListMine(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.coupons.ListByUploader(c.Request.Context(), h.CallerID(c), q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, page)
}

func (h *CouponHandler) ListClaims(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.coupons.ListClaims(c.Request.Context(), h.CallerID(c), q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, page)
}

func (h *CouponHandler) Update(c *gin.Context) {
	var req dto.UpdateCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}

	coupon, err := h.coupons.Update(c.Request.Context(), h.CallerID(c), h.CallerRole(c), c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, coupon)
}

func (h *CouponHandler) Delete(c *gin.Context) {
	err := h.coupons.Delete(c.Request.Context(), h.CallerID(c), h.CallerRole(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, gin.H{"message": "coupon removed"})
}

func (h *CouponHandler) Claim(c *gin.Context) {
	claim, err := h.coupons.Claim(c.Request.Context(), h.CallerID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, claim)
}
