package app

import (
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"couponhub/internal/auth"
	"couponhub/internal/config"
	"couponhub/internal/logger"
	"couponhub/internal/models"
)

// seedFirstAdmin creates the bootstrap admin account when no admin exists
// and credentials are configured.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.FirstAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:        "admin",
		Email:           cfg.FirstAdminEmail,
		PasswordHash:    hash,
		Role:            models.UserRoleAdmin,
		Status:          models.UserStatusActive,
		IsPremium:       true,
		IsEmailVerified: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	logger.Info("first admin account created", "email", cfg.FirstAdminEmail)
	return nil
}

// seedPlans inserts the default premium plans once.
func seedPlans(db *gorm.DB) error {
	plans := []models.SubscriptionPlan{
		{
			Name:     "Premium Monthly",
			Price:    4.99,
			Currency: "USD",
			Interval: "monthly",
			Features: mustJSON(map[string]any{"exclusive_deals": true, "daily_claims": 50}),
			Limits:   mustJSON(map[string]any{"daily_claims": 50}),
			IsActive: true,
		},
		{
			Name:     "Premium Yearly",
			Price:    49.99,
			Currency: "USD",
			Interval: "yearly",
			Features: mustJSON(map[string]any{"exclusive_deals": true, "daily_claims": 50}),
			Limits:   mustJSON(map[string]any{"daily_claims": 50}),
			IsActive: true,
		},
	}

	for i := range plans {
		err := db.Where("name = ?", plans[i].Name).First(&models.SubscriptionPlan{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&plans[i]).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// seedBadges inserts the starter badge catalog once.
func seedBadges(db *gorm.DB) error {
	badges := []models.Badge{
		{Slug: "first-share", Name: "First Share", Description: "Upload your first coupon", Icon: "🎟️",
			Criteria: criteriaJSON(models.MetricUploads, 1)},
		{Slug: "deal-hunter", Name: "Deal Hunter", Description: "Claim 10 coupons", Icon: "🏹",
			Criteria: criteriaJSON(models.MetricClaims, 10)},
		{Slug: "power-sharer", Name: "Power Sharer", Description: "Upload 25 coupons", Icon: "🚀",
			Criteria: criteriaJSON(models.MetricUploads, 25)},
		{Slug: "point-collector", Name: "Point Collector", Description: "Earn 500 points", Icon: "💎",
			Criteria: criteriaJSON(models.MetricPoints, 500)},
	}

	for i := range badges {
		badges[i].IsActive = true
		err := db.Where("slug = ?", badges[i].Slug).First(&models.Badge{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&badges[i]).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func criteriaJSON(metric string, threshold int64) datatypes.JSON {
	b, _ := json.Marshal(models.BadgeCriteria{Metric: metric, Threshold: threshold})
	return datatypes.JSON(b)
}

func mustJSON(v map[string]any) datatypes.JSON {
	b, _ := json.Marshal(v)
	return datatypes.JSON(b)
}
