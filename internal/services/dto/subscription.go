package dto

import (
	"time"

	"couponhub/internal/models"
)

type PlanResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
	Features map[string]any `json:"features,omitempty"`
}

type CheckoutRequest struct {
	PlanID string `json:"plan_id" binding:"required,uuid"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

type SubscriptionResponse struct {
	ID          string    `json:"id"`
	PlanName    string    `json:"plan_name"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	AutoRenew   bool      `json:"auto_renew"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func NewSubscriptionResponse(s *models.UserSubscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:          s.ID,
		PlanName:    s.Plan.Name,
		Status:      string(s.Status),
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		AutoRenew:   s.AutoRenew,
		CancelledAt: s.CancelledAt,
	}
}

type TransactionResponse struct {
	ID        string     `json:"id"`
	Amount    float64    `json:"amount"`
	Currency  string     `json:"currency"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
