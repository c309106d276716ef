package services

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"couponhub/internal/auth"
	"couponhub/internal/cache"
	"couponhub/internal/config"
	"couponhub/internal/email"
	"couponhub/internal/repositories"
	"couponhub/internal/services/billing"
)

// ServiceContainer wires repositories into services once at startup and is
// handed to the handler layer.
type ServiceContainer struct {
	Auth          AuthService
	Users         UserService
	Coupons       CouponService
	Gamification  GamificationService
	Subscriptions SubscriptionService

	UserRepo         repositories.UserRepository
	TokenRepo        repositories.RefreshTokenRepository
	CouponRepo       repositories.CouponRepository
	SubscriptionRepo repositories.SubscriptionRepository
	GamificationRepo repositories.GamificationRepository
	UsageRepo        repositories.UsageRepository
}

func NewServiceContainer(
	db *gorm.DB,
	redisClient *redis.Client,
	jwtManager *auth.Manager,
	mailer email.Provider,
	cfg *config.Config,
) *ServiceContainer {
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	couponRepo := repositories.NewCouponRepository(db)
	gamificationRepo := repositories.NewGamificationRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	usageRepo := repositories.NewUsageRepository(db)

	var limiter cache.ClaimLimiter
	if redisClient != nil {
		limiter = cache.NewClaimLimiter(redisClient)
	}

	gamificationSvc := NewGamificationService(gamificationRepo, userRepo, couponRepo)

	return &ServiceContainer{
		Auth:          NewAuthService(userRepo, tokenRepo, usageRepo, jwtManager, mailer, cfg.JWT),
		Users:         NewUserService(userRepo, tokenRepo),
		Coupons:       NewCouponService(couponRepo, userRepo, usageRepo, gamificationSvc, limiter, cfg.Points),
		Gamification:  gamificationSvc,
		Subscriptions: NewSubscriptionService(subscriptionRepo, userRepo, billing.NewClient(cfg.Stripe), mailer, cfg.Stripe),

		UserRepo:         userRepo,
		TokenRepo:        tokenRepo,
		CouponRepo:       couponRepo,
		SubscriptionRepo: subscriptionRepo,
		GamificationRepo: gamificationRepo,
		UsageRepo:        usageRepo,
	}
}
