package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"couponhub/internal/models"
)

// EventCount aggregates usage rows per event type.
type EventCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

type UsageRepository interface {
	Record(ctx context.Context, event *models.UsageTrack) error
	CountSince(ctx context.Context, eventType string, since time.Time) (int64, error)
	SummarizeSince(ctx context.Context, since time.Time) ([]EventCount, error)
}

type UsageRepositoryImpl struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &UsageRepositoryImpl{db: db}
}

func (r *UsageRepositoryImpl) Record(ctx context.Context, event *models.UsageTrack) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *UsageRepositoryImpl) CountSince(ctx context.Context, eventType string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UsageTrack{}).
		Where("event_type = ? AND created_at >= ?", eventType, since).
		Count(&count).Error
	return count, err
}

func (r *UsageRepositoryImpl) SummarizeSince(ctx context.Context, since time.Time) ([]EventCount, error) {
	var counts []EventCount
	err := r.db.WithContext(ctx).Model(&models.UsageTrack{}).
		Select("event_type, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("event_type").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}
