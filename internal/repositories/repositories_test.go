package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"couponhub/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
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
	))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "x",
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestCoupon(t *testing.T, db *gorm.DB, uploaderID, title string) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Title:         title,
		Code:          "SAVE20",
		Store:         "TestMart",
		DiscountType:  models.DiscountPercent,
		DiscountValue: 20,
		Status:        models.CouponStatusActive,
		ExpiresAt:     time.Now().Add(72 * time.Hour),
		UploaderID:    uploaderID,
	}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func testCtx() context.Context {
	return context.Background()
}
