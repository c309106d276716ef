package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"couponhub/internal/auth"
	"couponhub/internal/config"
	"couponhub/internal/email"
	"couponhub/internal/models"
	"couponhub/internal/repositories"
	"couponhub/internal/services/dto"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
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

type testEnv struct {
	db           *gorm.DB
	users        repositories.UserRepository
	tokens       repositories.RefreshTokenRepository
	coupons      repositories.CouponRepository
	gamification repositories.GamificationRepository
	subs         repositories.SubscriptionRepository

	authSvc         AuthService
	couponSvc       CouponService
	gamificationSvc GamificationService
	userSvc         UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	couponRepo := repositories.NewCouponRepository(db)
	gamificationRepo := repositories.NewGamificationRepository(db)
	subRepo := repositories.NewSubscriptionRepository(db)

	jwtManager, err := auth.NewManager("test-secret", "couponhub", time.Hour)
	require.NoError(t, err)

	gamificationSvc := NewGamificationService(gamificationRepo, userRepo, couponRepo)
	points := config.PointsConfig{
		Upload:                 10,
		Claim:                  2,
		ClaimBonus:             1,
		DailyClaimsLimit:       2,
		PremiumDailyClaimsFree: 5,
	}

	return &testEnv{
		db:           db,
		users:        userRepo,
		tokens:       tokenRepo,
		coupons:      couponRepo,
		gamification: gamificationRepo,
		subs:         subRepo,

		authSvc:         NewAuthService(userRepo, tokenRepo, nil, jwtManager, email.NoopProvider{}, config.JWTConfig{AccessExpiry: 60, RefreshExpiry: 168}),
		couponSvc:       NewCouponService(couponRepo, userRepo, nil, gamificationSvc, nil, points),
		gamificationSvc: gamificationSvc,
		userSvc:         NewUserService(userRepo, tokenRepo),
	}
}

func (e *testEnv) register(t *testing.T, username, emailAddr string) *dto.AuthResponse {
	t.Helper()
	resp, err := e.authSvc.Register(context.Background(), dto.RegisterRequest{
		Username: username,
		Email:    emailAddr,
		Password: "password123",
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) createCoupon(t *testing.T, uploaderID, title string) *dto.CouponResponse {
	t.Helper()
	coupon, err := e.couponSvc.Create(context.Background(), uploaderID, dto.CreateCouponRequest{
		Title:         title,
		Code:          "SAVE20",
		Store:         "TestMart",
		DiscountType:  "percent",
		DiscountValue: 20,
		ExpiresAt:     time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	return coupon
}
