package dto

import (
	"time"

	"couponhub/internal/models"
)

type CreateCouponRequest struct {
	Title         string   `json:"title" binding:"required,min=3,max=120"`
	Description   string   `json:"description" binding:"max=2000"`
	Code          string   `json:"code" binding:"required,couponcode"`
	Store         string   `json:"store" binding:"required,min=2,max=80"`
	Category      string   `json:"category" binding:"max=50"`
	DiscountType  string   `json:"discount_type" binding:"required,oneof=percent amount"`
	DiscountValue float64  `json:"discount_value" binding:"required,gt=0"`
	Tags          []string `json:"tags" binding:"omitempty,max=10,dive,min=1,max=30"`
	IsExclusive   bool     `json:"is_exclusive"`
	ExpiresAt     time.Time `json:"expires_at" binding:"required"`
}

type UpdateCouponRequest struct {
	Title         *string    `json:"title" binding:"omitempty,min=3,max=120"`
	Description   *string    `json:"description" binding:"omitempty,max=2000"`
	Category      *string    `json:"category" binding:"omitempty,max=50"`
	DiscountType  *string    `json:"discount_type" binding:"omitempty,oneof=percent amount"`
	DiscountValue *float64   `json:"discount_value" binding:"omitempty,gt=0"`
	Tags          []string   `json:"tags" binding:"omitempty,max=10,dive,min=1,max=30"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

type CouponQuery struct {
	ListQuery
	Store    string `form:"store"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	SortBy   string `form:"sort" binding:"omitempty,oneof=newest expiring popular"`
}

type CouponResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Code          string     `json:"code,omitempty"` // only present after the caller claimed it or owns it
	Store         string     `json:"store"`
	Category      string     `json:"category"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	Tags          []string   `json:"tags"`
	Status        string     `json:"status"`
	IsExclusive   bool       `json:"is_exclusive"`
	ExpiresAt     time.Time  `json:"expires_at"`
	ClaimCount    int64      `json:"claim_count"`
	ViewCount     int64      `json:"view_count"`
	Claimed       bool       `json:"claimed"`
	Uploader      *PublicProfile `json:"uploader,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewCouponResponse maps a coupon for the given viewer. revealCode controls
// whether the redeemable code is included.
func NewCouponResponse(c *models.Coupon, revealCode, claimed bool) *CouponResponse {
	resp := &CouponResponse{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Store:         c.Store,
		Category:      c.Category,
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
		Tags:          []string(c.Tags),
		Status:        string(c.Status),
		IsExclusive:   c.IsExclusive,
		ExpiresAt:     c.ExpiresAt,
		ClaimCount:    c.ClaimCount,
		ViewCount:     c.ViewCount,
		Claimed:       claimed,
		CreatedAt:     c.CreatedAt,
	}
	if revealCode {
		resp.Code = c.Code
	}
	if c.Uploader != nil {
		resp.Uploader = NewPublicProfile(c.Uploader)
	}
	return resp
}

type ClaimResponse struct {
	Coupon          *CouponResponse `json:"coupon"`
	PointsAwarded   int             `json:"points_awarded"`
	ClaimsRemaining int64           `json:"claims_remaining"`
}
