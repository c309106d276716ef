package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionPlan struct {
	BaseModel
	Name     string         `gorm:"uniqueIndex;not null" json:"name"`
	Price    float64        `gorm:"not null" json:"price"`
	Currency string         `gorm:"default:'USD'" json:"currency"`
	Interval string         `gorm:"not null" json:"interval"`     // "monthly", "yearly"
	Features datatypes.JSON `gorm:"type:jsonb" json:"features"`   // {"exclusive_deals": true, ...}
	Limits   datatypes.JSON `gorm:"type:jsonb" json:"limits"`     // {"daily_claims": 50}
	IsActive bool           `gorm:"default:true" json:"is_active"`
}

type UserSubscription struct {
	BaseModel
	UserID            string             `gorm:"not null;index" json:"user_id"`
	PlanID            string             `gorm:"not null;index" json:"plan_id"`
	Status            SubscriptionStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CheckoutSessionID string             `gorm:"uniqueIndex" json:"-"` // provider-side session reference
	StartDate         time.Time          `json:"start_date"`
	EndDate           time.Time          `json:"end_date"`
	AutoRenew         bool               `gorm:"default:true" json:"auto_renew"`
	CancelledAt       *time.Time         `json:"cancelled_at,omitempty"`

	// Relations
	Plan SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan"`
}

type PaymentTransaction struct {
	BaseModel
	UserID         string        `gorm:"not null;index" json:"user_id"`
	SubscriptionID string        `gorm:"not null;index" json:"subscription_id"`
	Amount         float64       `json:"amount"`
	Currency       string        `gorm:"default:'USD'" json:"currency"`
	Status         PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ProviderRef    string        `gorm:"uniqueIndex" json:"provider_ref"` // payment intent / charge id
	PaidAt         *time.Time    `json:"paid_at,omitempty"`
}
