package models

import "time"

type User struct {
	BaseModel
	Username          string     `gorm:"uniqueIndex;not null" json:"username"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string     `gorm:"not null" json:"-"`
	Role              UserRole   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Status            UserStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	IsPremium         bool       `gorm:"default:false" json:"is_premium"`
	IsEmailVerified   bool       `gorm:"default:false" json:"is_email_verified"`
	Points            int        `gorm:"default:0" json:"points"`
	Bio               string     `json:"bio,omitempty"`
	AvatarURL         string     `json:"avatar_url,omitempty"`
	VerificationToken string     `json:"-"`
	ResetToken        string     `json:"-"`
	ResetTokenExp     *time.Time `json:"-"`

	// Relations
	Coupons       []Coupon          `gorm:"foreignKey:UploaderID" json:"-"`
	Claims        []CouponClaim     `gorm:"foreignKey:UserID" json:"-"`
	Badges        []UserBadge       `gorm:"foreignKey:UserID" json:"-"`
	Subscription  *UserSubscription `gorm:"foreignKey:UserID" json:"-"`
	RefreshTokens []RefreshToken    `gorm:"foreignKey:UserID" json:"-"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}
