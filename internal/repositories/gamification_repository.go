package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"couponhub/internal/models"
)

var ErrBadgeNotFound = errors.New("badge not found")

// LeaderboardEntry is one row of the points ranking.
type LeaderboardEntry struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank"`
}

type GamificationRepository interface {
	CreatePointEvent(ctx context.Context, event *models.PointEvent) error
	ListPointEvents(ctx context.Context, userID string, offset, limit int) ([]models.PointEvent, int64, error)

	CreateBadge(ctx context.Context, badge *models.Badge) error
	GetBadgeByID(ctx context.Context, id string) (*models.Badge, error)
	GetBadgeBySlug(ctx context.Context, slug string) (*models.Badge, error)
	ListBadges(ctx context.Context, activeOnly bool) ([]models.Badge, error)
	UpdateBadge(ctx context.Context, badge *models.Badge) error
	DeleteBadge(ctx context.Context, id string) error

	AwardBadge(ctx context.Context, userBadge *models.UserBadge) (bool, error)
	ListUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error)

	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type GamificationRepositoryImpl struct {
	db *gorm.DB
}

func NewGamificationRepository(db *gorm.DB) GamificationRepository {
	return &GamificationRepositoryImpl{db: db}
}

func (r *GamificationRepositoryImpl) CreatePointEvent(ctx context.Context, event *models.PointEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GamificationRepositoryImpl) ListPointEvents(ctx context.Context, userID string, offset, limit int) ([]models.PointEvent, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.PointEvent{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	var events []models.PointEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&events).Error
	return events, total, err
}

func (r *GamificationRepositoryImpl) CreateBadge(ctx context.Context, badge *models.Badge) error {
	return r.db.WithContext(ctx).Create(badge).Error
}

func (r *GamificationRepositoryImpl) GetBadgeByID(ctx context.Context, id string) (*models.Badge, error) {
	var badge models.Badge
	err := r.db.WithContext(ctx).First(&badge, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadgeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *GamificationRepositoryImpl) GetBadgeBySlug(ctx context.Context, slug string) (*models.Badge, error) {
	var badge models.Badge
	err := r.db.WithContext(ctx).First(&badge, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadgeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *GamificationRepositoryImpl) ListBadges(ctx context.Context, activeOnly bool) ([]models.Badge, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var badges []models.Badge
	err := q.Find(&badges).Error
	return badges, err
}

func (r *GamificationRepositoryImpl) UpdateBadge(ctx context.Context, badge *models.Badge) error {
	return r.db.WithContext(ctx).Save(badge).Error
}

func (r *GamificationRepositoryImpl) DeleteBadge(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Badge{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBadgeNotFound
	}
	return nil
}

// AwardBadge inserts the unlock row. Returns false when the user already
// holds the badge, which keeps the engine idempotent.
func (r *GamificationRepositoryImpl) AwardBadge(ctx context.Context, userBadge *models.UserBadge) (bool, error) {
	err := r.db.WithContext(ctx).Create(userBadge).Error
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *GamificationRepositoryImpl) ListUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&badges).Error
	return badges, err
}

func (r *GamificationRepositoryImpl) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []LeaderboardEntry
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("id AS user_id, username, points").
		Where("status = ?", models.UserStatusActive).
		Order("points DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
