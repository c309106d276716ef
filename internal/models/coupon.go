package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// TagList is stored as a native text[] on postgres and as the pq array
// literal in a text column on other dialects, which is what tests use.
type TagList pq.StringArray

func (TagList) GormDataType() string {
	return "text"
}

func (TagList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (t TagList) Value() (driver.Value, error) {
	return pq.StringArray(t).Value()
}

func (t *TagList) Scan(src interface{}) error {
	return (*pq.StringArray)(t).Scan(src)
}

type Coupon struct {
	BaseModel
	Title         string         `gorm:"not null" json:"title"`
	Description   string         `json:"description"`
	Code          string         `gorm:"not null" json:"code"`
	Store         string         `gorm:"index;not null" json:"store"`
	Category      string         `gorm:"index" json:"category"`
	DiscountType  DiscountType   `gorm:"type:varchar(10);not null" json:"discount_type"`
	DiscountValue float64        `gorm:"not null" json:"discount_value"`
	Tags          TagList        `json:"tags"`
	Status        CouponStatus   `gorm:"type:varchar(20);default:'active';index" json:"status"`
	IsExclusive   bool           `gorm:"default:false" json:"is_exclusive"` // premium-only deals
	ExpiresAt     time.Time      `gorm:"index;not null" json:"expires_at"`
	UploaderID    string         `gorm:"index;not null" json:"uploader_id"`
	ClaimCount    int64          `gorm:"default:0" json:"claim_count"`
	ViewCount     int64          `gorm:"default:0" json:"view_count"`

	// Relations
	Uploader *User `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
}

// Expired reports whether the coupon's expiry date has passed.
func (c *Coupon) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CouponClaim records one user redeeming one coupon. The composite unique
// index makes claims idempotent per user+coupon.
type CouponClaim struct {
	BaseModel
	UserID   string `gorm:"index;not null;uniqueIndex:idx_claim_user_coupon" json:"user_id"`
	CouponID string `gorm:"index;not null;uniqueIndex:idx_claim_user_coupon" json:"coupon_id"`

	Coupon *Coupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
}
