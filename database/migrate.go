package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"couponhub/internal/models"
)

// Connect opens the postgres connection.
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate applies the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Coupon{},
		&models.CouponClaim{},
		&models.Badge{},
		&models.UserBadge{},
		&models.PointEvent{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.PaymentTransaction{},
		&models.UsageTrack{},
	)
}
