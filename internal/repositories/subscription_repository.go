package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"couponhub/internal/models"
)

var (
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

type SubscriptionRepository interface {
	CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error
	GetPlanByID(ctx context.Context, id string) (*models.SubscriptionPlan, error)
	GetPlanByName(ctx context.Context, name string) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]models.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, plan *models.SubscriptionPlan) error

	CreateSubscription(ctx context.Context, sub *models.UserSubscription) error
	GetSubscriptionByID(ctx context.Context, id string) (*models.UserSubscription, error)
	GetActiveByUser(ctx context.Context, userID string) (*models.UserSubscription, error)
	GetByCheckoutSession(ctx context.Context, sessionID string) (*models.UserSubscription, error)
	UpdateSubscription(ctx context.Context, sub *models.UserSubscription) error
	ListExpired(ctx context.Context, now time.Time) ([]models.UserSubscription, error)

	CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error
	GetTransactionByProviderRef(ctx context.Context, ref string) (*models.PaymentTransaction, error)
	ListTransactionsByUser(ctx context.Context, userID string) ([]models.PaymentTransaction, error)
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

func (r *SubscriptionRepositoryImpl) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *SubscriptionRepositoryImpl) GetPlanByID(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepositoryImpl) GetPlanByName(ctx context.Context, name string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.WithContext(ctx).First(&plan, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepositoryImpl) ListPlans(ctx context.Context, activeOnly bool) ([]models.SubscriptionPlan, error) {
	q := r.db.WithContext(ctx).Order("price ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var plans []models.SubscriptionPlan
	err := q.Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepositoryImpl) UpdatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *SubscriptionRepositoryImpl) CreateSubscription(ctx context.Context, sub *models.UserSubscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubscriptionRepositoryImpl) GetSubscriptionByID(ctx context.Context, id string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) GetActiveByUser(ctx context.Context, userID string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("end_date DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) GetByCheckoutSession(ctx context.Context, sessionID string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		First(&sub, "checkout_session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) UpdateSubscription(ctx context.Context, sub *models.UserSubscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *SubscriptionRepositoryImpl) ListExpired(ctx context.Context, now time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", models.SubscriptionStatusActive, now).
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepositoryImpl) CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *SubscriptionRepositoryImpl) GetTransactionByProviderRef(ctx context.Context, ref string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).First(&txn, "provider_ref = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *SubscriptionRepositoryImpl) ListTransactionsByUser(ctx context.Context, userID string) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txns).Error
	return txns, err
}
