package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"couponhub/internal/auth"
	"couponhub/internal/middleware"
	"couponhub/internal/services"
	"couponhub/internal/services/dto"
	"couponhub/pkg/apperrors"
)

type SubscriptionHandler struct {
	BaseHandler
	subscriptions services.SubscriptionService
	jwtManager    *auth.Manager
}

func NewSubscriptionHandler(subscriptions services.SubscriptionService, jwtManager *auth.Manager) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, jwtManager: jwtManager}
}

func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/subscriptions/plans", h.ListPlans)
	// The payment provider authenticates with a signature, not a token.
	rg.POST("/webhooks/stripe", h.Webhook)

	authed := rg.Group("/subscriptions", middleware.AuthMiddleware(h.jwtManager))
	{
		authed.POST("/checkout", h.StartCheckout)
		authed.GET("/me", h.MySubscription)
		authed.DELETE("/me", h.Cancel)
		authed.GET("/transactions", h.Transactions)
	}
}

func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptions.ListPlans(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, plans)
}

func (h *SubscriptionHandler) StartCheckout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	checkout, err := h.subscriptions.StartCheckout(c.Request.Context(), h.CallerID(c), req.PlanID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, checkout)
}

func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("unreadable payload"))
		return
	}

	err = h.subscriptions.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *SubscriptionHandler) MySubscription(c *gin.Context) {
	sub, err := h.subscriptions.GetMySubscription(c.Request.Context(), h.CallerID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, sub)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	sub, err := h.subscriptions.CancelSubscription(c.Request.Context(), h.CallerID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, sub)
}

func (h *SubscriptionHandler) Transactions(c *gin.Context) {
	txns, err := h.subscriptions.ListTransactions(c.Request.Context(), h.CallerID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, txns)
}
