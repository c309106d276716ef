package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"couponhub/internal/middleware"
	"couponhub/internal/validator"
	"couponhub/pkg/apperrors"
)

// BaseHandler carries the binding and response helpers shared by every
// handler.
type BaseHandler struct{}

// SuccessResponse is the envelope for every 2xx payload.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func (h *BaseHandler) OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BindJSON decodes and validates the body. On failure it writes the
// VALIDATION_ERROR envelope and reports false.
func (h *BaseHandler) BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		apperrors.HandleError(c, apperrors.ValidationError(validator.FormatErrors(err)))
		return false
	}
	return true
}

// BindQuery is BindJSON for query strings.
func (h *BaseHandler) BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		apperrors.HandleError(c, apperrors.ValidationError(validator.FormatErrors(err)))
		return false
	}
	return true
}

// HandleServiceError maps a service error onto the response envelope.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	apperrors.HandleError(c, err)
}

// CallerID returns the authenticated user id, empty for anonymous callers.
func (h *BaseHandler) CallerID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserID)
}

// CallerRole returns the authenticated role, empty for anonymous callers.
func (h *BaseHandler) CallerRole(c *gin.Context) string {
	return c.GetString(middleware.CtxRole)
}
