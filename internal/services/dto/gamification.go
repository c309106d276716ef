package dto

import (
	"time"

	"couponhub/internal/models"
	"couponhub/internal/repositories"
)

type BadgeResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func NewBadgeResponse(b *models.Badge) *BadgeResponse {
	return &BadgeResponse{
		ID:          b.ID,
		Slug:        b.Slug,
		Name:        b.Name,
		Description: b.Description,
		Icon:        b.Icon,
	}
}

type UserBadgeResponse struct {
	Badge      *BadgeResponse `json:"badge"`
	UnlockedAt time.Time      `json:"unlocked_at"`
}

type AchievementsResponse struct {
	Points       int                 `json:"points"`
	TotalUploads int64               `json:"total_uploads"`
	TotalClaims  int64               `json:"total_claims"`
	Badges       []UserBadgeResponse `json:"badges"`
}

type PointEventResponse struct {
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	RefID     string    `json:"ref_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LeaderboardResponse struct {
	Entries []repositories.LeaderboardEntry `json:"entries"`
}

type CreateBadgeRequest struct {
	Slug        string `json:"slug" binding:"required,min=2,max=50"`
	Name        string `json:"name" binding:"required,min=2,max=80"`
	Description string `json:"description" binding:"max=300"`
	Icon        string `json:"icon" binding:"max=100"`
	Metric      string `json:"metric" binding:"required,oneof=uploads claims points"`
	Threshold   int64  `json:"threshold" binding:"required,gt=0"`
}
