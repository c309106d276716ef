package models

import (
	"gorm.io/datatypes"
)

// Badge metric names used in the criteria JSON: {"metric":"uploads","threshold":10}.
const (
	MetricUploads = "uploads"
	MetricClaims  = "claims"
	MetricPoints  = "points"
)

// Badge is a catalog entry. Criteria drives the unlocking engine.
type Badge struct {
	BaseModel
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Criteria    datatypes.JSON `gorm:"type:jsonb" json:"criteria"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
}

// BadgeCriteria is the decoded form of Badge.Criteria.
type BadgeCriteria struct {
	Metric    string `json:"metric"`
	Threshold int64  `json:"threshold"`
}

// UserBadge marks a badge as unlocked. Unique per user+badge so the engine
// can re-evaluate safely after every accrual.
type UserBadge struct {
	BaseModel
	UserID  string `gorm:"index;not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID string `gorm:"index;not null;uniqueIndex:idx_user_badge" json:"badge_id"`

	Badge *Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

// PointEvent is one row of the append-only point ledger. The cached balance
// on User is the sum of a user's deltas.
type PointEvent struct {
	BaseModel
	UserID string `gorm:"index;not null" json:"user_id"`
	Delta  int    `gorm:"not null" json:"delta"`
	Reason string `gorm:"type:varchar(50);not null" json:"reason"`
	RefID  string `gorm:"index" json:"ref_id,omitempty"` // coupon or claim the event refers to
}

// Point event reasons.
const (
	PointReasonUpload     = "coupon_upload"
	PointReasonClaim      = "coupon_claim"
	PointReasonClaimBonus = "claim_bonus"
	PointReasonAdjustment = "admin_adjustment"
)
