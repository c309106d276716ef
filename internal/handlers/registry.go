package handlers

import (
	"couponhub/internal/auth"
	"couponhub/internal/services"
)

// AppHandlers groups every handler for route registration.
type AppHandlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Coupons       *CouponHandler
	Gamification  *GamificationHandler
	Subscriptions *SubscriptionHandler
	Admin         *AdminHandler
}

func NewAppHandlers(container *services.ServiceContainer, jwtManager *auth.Manager) *AppHandlers {
	return &AppHandlers{
		Auth:          NewAuthHandler(container.Auth, jwtManager),
		Users:         NewUserHandler(container.Users, jwtManager),
		Coupons:       NewCouponHandler(container.Coupons, jwtManager),
		Gamification:  NewGamificationHandler(container.Gamification, jwtManager),
		Subscriptions: NewSubscriptionHandler(container.Subscriptions, jwtManager),
		Admin:         NewAdminHandler(container.Users, container.Coupons, container.Gamification, container.UsageRepo, jwtManager),
	}
}
