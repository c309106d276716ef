package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"couponhub/internal/models"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrClaimExists    = errors.New("claim already exists")
)

// CouponFilter narrows catalog queries. Zero values mean "no filter".
type CouponFilter struct {
	Store            string
	Category         string
	Tag              string
	Status           models.CouponStatus
	UploaderID       string
	IncludeExclusive bool
	Search           string
	SortBy           string // "newest", "expiring", "popular"
	Offset           int
	Limit            int
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter CouponFilter) ([]models.Coupon, int64, error)
	IncrementViews(ctx context.Context, id string) error
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	CountByUploader(ctx context.Context, uploaderID string) (int64, error)

	CreateClaim(ctx context.Context, claim *models.CouponClaim) error
	GetClaim(ctx context.Context, userID, couponID string) (*models.CouponClaim, error)
	ListClaimsByUser(ctx context.Context, userID string, offset, limit int) ([]models.CouponClaim, int64, error)
	CountClaimsByUser(ctx context.Context, userID string) (int64, error)
	CountClaimsByUserSince(ctx context.Context, userID string, since time.Time) (int64, error)
}

type CouponRepositoryImpl struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &CouponRepositoryImpl{db: db}
}

func (r *CouponRepositoryImpl) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *CouponRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).Preload("Uploader").First(&coupon, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *CouponRepositoryImpl) Update(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}

func (r *CouponRepositoryImpl) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (r *CouponRepositoryImpl) List(ctx context.Context, filter CouponFilter) ([]models.Coupon, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Coupon{})

	if filter.Store != "" {
		q = q.Where("store = ?", filter.Store)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Tag != "" {
		q = q.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UploaderID != "" {
		q = q.Where("uploader_id = ?", filter.UploaderID)
	}
	if !filter.IncludeExclusive {
		q = q.Where("is_exclusive = ?", false)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ? OR store ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.SortBy {
	case "expiring":
		q = q.Order("expires_at ASC")
	case "popular":
		q = q.Order("claim_count DESC, created_at DESC")
	default:
		q = q.Order("created_at DESC")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var coupons []models.Coupon
	err := q.Preload("Uploader").Offset(filter.Offset).Limit(limit).Find(&coupons).Error
	return coupons, total, err
}

func (r *CouponRepositoryImpl) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// MarkExpired flips active coupons whose expiry has passed. Used by the
// background sweeper.
func (r *CouponRepositoryImpl) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("status = ? AND expires_at < ?", models.CouponStatusActive, now).
		Update("status", models.CouponStatusExpired)
	return res.RowsAffected, res.Error
}

func (r *CouponRepositoryImpl) CountByUploader(ctx context.Context, uploaderID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("uploader_id = ?", uploaderID).Count(&count).Error
	return count, err
}

func (r *CouponRepositoryImpl) CreateClaim(ctx context.Context, claim *models.CouponClaim) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(claim).Error; err != nil {
			return err
		}
		return tx.Model(&models.Coupon{}).
			Where("id = ?", claim.CouponID).
			UpdateColumn("claim_count", gorm.Expr("claim_count + 1")).Error
	})
	if err != nil && isUniqueViolation(err) {
		return ErrClaimExists
	}
	return err
}

func (r *CouponRepositoryImpl) GetClaim(ctx context.Context, userID, couponID string) (*models.CouponClaim, error) {
	var claim models.CouponClaim
	err := r.db.WithContext(ctx).
		First(&claim, "user_id = ? AND coupon_id = ?", userID, couponID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *CouponRepositoryImpl) ListClaimsByUser(ctx context.Context, userID string, offset, limit int) ([]models.CouponClaim, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.CouponClaim{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	var claims []models.CouponClaim
	err := r.db.WithContext(ctx).
		Preload("Coupon").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&claims).Error
	return claims, total, err
}

func (r *CouponRepositoryImpl) CountClaimsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CouponClaim{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *CouponRepositoryImpl) CountClaimsByUserSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CouponClaim{}).
		Where("user_id = ? AND created_at >= ?", userID, since).Count(&count).Error
	return count, err
}
