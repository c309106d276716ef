package services

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"

	"couponhub/internal/logger"
	"couponhub/internal/models"
	"couponhub/internal/repositories"
	"couponhub/internal/services/dto"
	"couponhub/pkg/apperrors"
)

type GamificationService interface {
	// AwardPoints appends a ledger event, bumps the cached balance and
	// re-runs the badge engine for the user.
	AwardPoints(ctx context.Context, userID string, delta int, reason, refID string) error
	EvaluateBadges(ctx context.Context, userID string) ([]dto.BadgeResponse, error)
	GetAchievements(ctx context.Context, userID string) (*dto.AchievementsResponse, error)
	ListBadges(ctx context.Context) ([]dto.BadgeResponse, error)
	ListPointEvents(ctx context.Context, userID string, q dto.ListQuery) (*dto.Paginated[dto.PointEventResponse], error)
	Leaderboard(ctx context.Context, limit int) (*dto.LeaderboardResponse, error)

	CreateBadge(ctx context.Context, req dto.CreateBadgeRequest) (*dto.BadgeResponse, error)
	DeleteBadge(ctx context.Context, badgeID string) error
}

type GamificationServiceImpl struct {
	gamification repositories.GamificationRepository
	users        repositories.UserRepository
	coupons      repositories.CouponRepository
}

func NewGamificationService(
	gamification repositories.GamificationRepository,
	users repositories.UserRepository,
	coupons repositories.CouponRepository,
) GamificationService {
	return &GamificationServiceImpl{
		gamification: gamification,
		users:        users,
		coupons:      coupons,
	}
}

func (s *GamificationServiceImpl) AwardPoints(ctx context.Context, userID string, delta int, reason, refID string) error {
	event := &models.PointEvent{
		UserID: userID,
		Delta:  delta,
		Reason: reason,
		RefID:  refID,
	}
	if err := s.gamification.CreatePointEvent(ctx, event); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.users.AddPoints(ctx, userID, delta); err != nil {
		return apperrors.InternalError(err)
	}

	if _, err := s.EvaluateBadges(ctx, userID); err != nil {
		// Badge evaluation is best-effort; the next accrual retries it.
		logger.CtxWithError(ctx, "badge evaluation failed", err, "user_id", userID)
	}
	return nil
}

// EvaluateBadges checks every active badge against the user's current
// metrics and awards the ones newly satisfied. The unique user+badge index
// makes repeat awards no-ops.
func (s *GamificationServiceImpl) EvaluateBadges(ctx context.Context, userID string) ([]dto.BadgeResponse, error) {
	badges, err := s.gamification.ListBadges(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(badges) == 0 {
		return nil, nil
	}

	metrics, err := s.userMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []dto.BadgeResponse
	for i := range badges {
		badge := &badges[i]
		var criteria models.BadgeCriteria
		if err := json.Unmarshal(badge.Criteria, &criteria); err != nil {
			logger.Warn("badge has malformed criteria", "badge", badge.Slug, "error", err)
			continue
		}
		value, ok := metrics[criteria.Metric]
		if !ok || value < criteria.Threshold {
			continue
		}
		awarded, err := s.gamification.AwardBadge(ctx, &models.UserBadge{UserID: userID, BadgeID: badge.ID})
		if err != nil {
			return nil, err
		}
		if awarded {
			logger.CtxInfo(ctx, "badge unlocked", "user_id", userID, "badge", badge.Slug)
			unlocked = append(unlocked, *dto.NewBadgeResponse(badge))
		}
	}
	return unlocked, nil
}

func (s *GamificationServiceImpl) userMetrics(ctx context.Context, userID string) (map[string]int64, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	uploads, err := s.coupons.CountByUploader(ctx, userID)
	if err != nil {
		return nil, err
	}
	claims, err := s.coupons.CountClaimsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return map[string]int64{
		models.MetricUploads: uploads,
		models.MetricClaims:  claims,
		models.MetricPoints:  int64(user.Points),
	}, nil
}

func (s *GamificationServiceImpl) GetAchievements(ctx context.Context, userID string) (*dto.AchievementsResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	uploads, err := s.coupons.CountByUploader(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	claims, err := s.coupons.CountClaimsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	userBadges, err := s.gamification.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.AchievementsResponse{
		Points:       user.Points,
		TotalUploads: uploads,
		TotalClaims:  claims,
		Badges:       make([]dto.UserBadgeResponse, 0, len(userBadges)),
	}
	for _, ub := range userBadges {
		if ub.Badge == nil {
			continue
		}
		resp.Badges = append(resp.Badges, dto.UserBadgeResponse{
			Badge:      dto.NewBadgeResponse(ub.Badge),
			UnlockedAt: ub.CreatedAt,
		})
	}
	return resp, nil
}

func (s *GamificationServiceImpl) ListBadges(ctx context.Context) ([]dto.BadgeResponse, error) {
	badges, err := s.gamification.ListBadges(ctx, true)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.BadgeResponse, 0, len(badges))
	for i := range badges {
		out = append(out, *dto.NewBadgeResponse(&badges[i]))
	}
	return out, nil
}

func (s *GamificationServiceImpl) ListPointEvents(ctx context.Context, userID string, q dto.ListQuery) (*dto.Paginated[dto.PointEventResponse], error) {
	events, total, err := s.gamification.ListPointEvents(ctx, userID, q.Offset(), q.Limit())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]dto.PointEventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, dto.PointEventResponse{
			Delta:     e.Delta,
			Reason:    e.Reason,
			RefID:     e.RefID,
			CreatedAt: e.CreatedAt,
		})
	}
	return &dto.Paginated[dto.PointEventResponse]{
		Items:   items,
		Total:   total,
		Page:    q.Page,
		PerPage: q.Limit(),
	}, nil
}

func (s *GamificationServiceImpl) Leaderboard(ctx context.Context, limit int) (*dto.LeaderboardResponse, error) {
	entries, err := s.gamification.Leaderboard(ctx, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.LeaderboardResponse{Entries: entries}, nil
}

func (s *GamificationServiceImpl) CreateBadge(ctx context.Context, req dto.CreateBadgeRequest) (*dto.BadgeResponse, error) {
	criteria, err := json.Marshal(models.BadgeCriteria{Metric: req.Metric, Threshold: req.Threshold})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	badge := &models.Badge{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Criteria:    datatypes.JSON(criteria),
		IsActive:    true,
	}
	if err := s.gamification.CreateBadge(ctx, badge); err != nil {
		return nil, apperrors.ErrConflict(err, "gamification", "badge slug already exists")
	}
	return dto.NewBadgeResponse(badge), nil
}

func (s *GamificationServiceImpl) DeleteBadge(ctx context.Context, badgeID string) error {
	if err := s.gamification.DeleteBadge(ctx, badgeID); err != nil {
		if errors.Is(err, repositories.ErrBadgeNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}
