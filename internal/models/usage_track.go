package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event types recorded in the usage log.
const (
	EventUserLogin    = "USER_LOGIN"
	EventUserRegister = "USER_REGISTER"
	EventCouponUpload = "COUPON_UPLOAD"
	EventCouponView   = "COUPON_VIEW"
	EventCouponClaim  = "COUPON_CLAIM"
)

// UsageTrack is a single user event, kept for admin analytics.
type UsageTrack struct {
	ID        string         `gorm:"type:uuid;primary_key"`
	UserID    *string        `gorm:"type:uuid;index"` // nil for anonymous events
	EventType string         `gorm:"type:varchar(100);index;not null"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"index"`
}

func (u *UsageTrack) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (UsageTrack) TableName() string {
	return "usage_tracking"
}
