package services

import (
	"context"
	"errors"
	"time"

	"couponhub/internal/auth"
	"couponhub/internal/cache"
	"couponhub/internal/config"
	"couponhub/internal/logger"
	"couponhub/internal/models"
	"couponhub/internal/repositories"
	"couponhub/internal/services/dto"
	"couponhub/pkg/apperrors"
)

type CouponService interface {
	Create(ctx context.Context, uploaderID string, req dto.CreateCouponRequest) (*dto.CouponResponse, error)
	Get(ctx context.Context, viewerID, viewerRole, couponID string) (*dto.CouponResponse, error)
	List(ctx context.Context, viewerRole string, q dto.CouponQuery) (*dto.Paginated[dto.CouponResponse], error)
	Update(ctx context.Context, actorID, actorRole, couponID string, req dto.UpdateCouponRequest) (*dto.CouponResponse, error)
	Delete(ctx context.Context, actorID, actorRole, couponID string) error
	SetStatus(ctx context.Context, couponID string, status models.CouponStatus) error

	Claim(ctx context.Context, userID, couponID string) (*dto.ClaimResponse, error)
	ListClaims(ctx context.Context, userID string, q dto.ListQuery) (*dto.Paginated[dto.CouponResponse], error)
	ListByUploader(ctx context.Context, uploaderID string, q dto.ListQuery) (*dto.Paginated[dto.CouponResponse], error)
}

type CouponServiceImpl struct {
	coupons      repositories.CouponRepository
	users        repositories.UserRepository
	usage        repositories.UsageRepository
	gamification GamificationService
	limiter      cache.ClaimLimiter
	points       config.PointsConfig
}

func NewCouponService(
	coupons repositories.CouponRepository,
	users repositories.UserRepository,
	usage repositories.UsageRepository,
	gamification GamificationService,
	limiter cache.ClaimLimiter,
	points config.PointsConfig,
) CouponService {
	return &CouponServiceImpl{
		coupons:      coupons,
		users:        users,
		usage:        usage,
		gamification: gamification,
		limiter:      limiter,
		points:       points,
	}
}

func (s *CouponServiceImpl) Create(ctx context.Context, uploaderID string, req dto.CreateCouponRequest) (*dto.CouponResponse, error) {
	if !req.ExpiresAt.After(time.Now()) {
		return nil, apperrors.NewBadRequestError("expiry date must be in the future")
	}

	uploader, err := s.users.GetByID(ctx, uploaderID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if req.IsExclusive && !auth.CanAccess(string(uploader.Role), auth.CapExclusiveDeals) {
		return nil, apperrors.NewForbiddenError("exclusive deals require a premium account")
	}

	coupon := &models.Coupon{
		Title:         req.Title,
		Description:   req.Description,
		Code:          req.Code,
		Store:         req.Store,
		Category:      req.Category,
		DiscountType:  models.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		Tags:          models.TagList(req.Tags),
		Status:        models.CouponStatusActive,
		IsExclusive:   req.IsExclusive,
		ExpiresAt:     req.ExpiresAt,
		UploaderID:    uploaderID,
	}
	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.recordEvent(uploaderID, models.EventCouponUpload)
	if err := s.gamification.AwardPoints(ctx, uploaderID, s.points.Upload, models.PointReasonUpload, coupon.ID); err != nil {
		logger.CtxWithError(ctx, "failed to award upload points", err, "coupon_id", coupon.ID)
	}

	// Uploader sees their own code.
	return dto.NewCouponResponse(coupon, true, false), nil
}

func (s *CouponServiceImpl) Get(ctx context.Context, viewerID, viewerRole, couponID string) (*dto.CouponResponse, error) {
	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, repositories.ErrCouponNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if coupon.IsExclusive && !auth.CanAccess(viewerRole, auth.CapExclusiveDeals) {
		return nil, apperrors.NewForbiddenError("this deal is for premium members")
	}

	if err := s.coupons.IncrementViews(ctx, couponID); err != nil {
		logger.CtxWithError(ctx, "failed to count view", err, "coupon_id", couponID)
	}
	s.recordEvent(viewerID, models.EventCouponView)

	claimed := false
	if viewerID != "" {
		claim, err := s.coupons.GetClaim(ctx, viewerID, couponID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		claimed = claim != nil
	}

	reveal := claimed || coupon.UploaderID == viewerID || auth.IsAdmin(viewerRole)
	return dto.NewCouponResponse(coupon, reveal, claimed), nil
}

func (s *CouponServiceImpl) List(ctx context.Context, viewerRole string, q dto.CouponQuery) (*dto.Paginated[dto.CouponResponse], error) {
	filter := repositories.CouponFilter{
		Store:            q.Store,
		Category:         q.Category,
		Tag:              q.Tag,
		Status:           models.CouponStatusActive,
		IncludeExclusive: auth.CanAccess(viewerRole, auth.CapExclusiveDeals),
		Search:           q.Search,
		SortBy:           q.SortBy,
		Offset:           q.Offset(),
		Limit:            q.Limit(),
	}

	coupons, total, err := s.coupons.List(ctx, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.CouponResponse, 0, len(coupons))
	for i := range coupons {
		items = append(items, *dto.NewCouponResponse(&coupons[i], false, false))
	}
	return &dto.Paginated[dto.CouponResponse]{
		Items:   items,
		Total:   total,
		Page:    q.Page,
		PerPage: q.Limit(),
	}, nil
}

func (s *CouponServiceImpl) Update(ctx context.Context, actorID, actorRole, couponID string, req dto.UpdateCouponRequest) (*dto.CouponResponse, error) {
	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, repositories.ErrCouponNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if coupon.UploaderID != actorID && !auth.IsAdmin(actorRole) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	if req.Title != nil {
		coupon.Title = *req.Title
	}
	if req.Description != nil {
		coupon.Description = *req.Description
	}
	if req.Category != nil {
		coupon.Category = *req.Category
	}
	if req.DiscountType != nil {
		coupon.DiscountType = models.DiscountType(*req.DiscountType)
	}
	if req.DiscountValue != nil {
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.Tags != nil {
		coupon.Tags = models.TagList(req.Tags)
	}
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(time.Now()) {
			return nil, apperrors.NewBadRequestError("expiry date must be in the future")
		}
		coupon.ExpiresAt = *req.ExpiresAt
		if coupon.Status == models.CouponStatusExpired {
			coupon.Status = models.CouponStatusActive
		}
	}

	if err := s.coupons.Update(ctx, coupon); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewCouponResponse(coupon, true, false), nil
}

func (s *CouponServiceImpl) Delete(ctx context.Context, actorID, actorRole, couponID string) error {
	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, repositories.ErrCouponNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if coupon.UploaderID != actorID && !auth.IsAdmin(actorRole) {
		return apperrors.ErrInsufficientPermissions
	}

	coupon.Status = models.CouponStatusRemoved
	if err := s.coupons.Update(ctx, coupon); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// SetStatus is the moderation entry point, admin only at the route level.
func (s *CouponServiceImpl) SetStatus(ctx context.Context, couponID string, status models.CouponStatus) error {
	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, repositories.ErrCouponNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	coupon.Status = status
	if err := s.coupons.Update(ctx, coupon); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *CouponServiceImpl) Claim(ctx context.Context, userID, couponID string) (*dto.ClaimResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, repositories.ErrCouponNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if coupon.UploaderID == userID {
		return nil, apperrors.ErrCannotClaimOwnCoupon
	}
	if coupon.IsExclusive && !auth.CanAccess(string(user.Role), auth.CapExclusiveDeals) {
		return nil, apperrors.NewForbiddenError("this deal is for premium members")
	}
	if coupon.Status != models.CouponStatusActive {
		return nil, apperrors.ErrCouponNotActive
	}
	if coupon.Expired(time.Now()) {
		return nil, apperrors.ErrCouponExpired
	}

	existing, err := s.coupons.GetClaim(ctx, userID, couponID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if existing != nil {
		return nil, apperrors.ErrAlreadyClaimed
	}

	limit := int64(s.points.DailyClaimsLimit)
	if user.IsPremium || auth.IsAdmin(string(user.Role)) {
		limit = int64(s.points.PremiumDailyClaimsFree)
	}
	used, err := s.claimsToday(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if used >= limit {
		return nil, apperrors.ErrClaimLimitReached
	}

	claim := &models.CouponClaim{UserID: userID, CouponID: couponID}
	if err := s.coupons.CreateClaim(ctx, claim); err != nil {
		if errors.Is(err, repositories.ErrClaimExists) {
			return nil, apperrors.ErrAlreadyClaimed
		}
		return nil, apperrors.InternalError(err)
	}

	used++
	if s.limiter != nil {
		if n, err := s.limiter.Increment(ctx, userID); err != nil {
			logger.CtxWithError(ctx, "failed to bump claim counter", err, "user_id", userID)
		} else {
			used = n
		}
	}

	s.recordEvent(userID, models.EventCouponClaim)
	if err := s.gamification.AwardPoints(ctx, userID, s.points.Claim, models.PointReasonClaim, couponID); err != nil {
		logger.CtxWithError(ctx, "failed to award claim points", err, "coupon_id", couponID)
	}
	if s.points.ClaimBonus > 0 {
		if err := s.gamification.AwardPoints(ctx, coupon.UploaderID, s.points.ClaimBonus, models.PointReasonClaimBonus, couponID); err != nil {
			logger.CtxWithError(ctx, "failed to award uploader bonus", err, "coupon_id", couponID)
		}
	}

	coupon.ClaimCount++
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &dto.ClaimResponse{
		Coupon:          dto.NewCouponResponse(coupon, true, true),
		PointsAwarded:   s.points.Claim,
		ClaimsRemaining: remaining,
	}, nil
}

// claimsToday prefers the redis counter and falls back to counting rows
// since UTC midnight when redis is not wired.
func (s *CouponServiceImpl) claimsToday(ctx context.Context, userID string) (int64, error) {
	if s.limiter != nil {
		return s.limiter.Count(ctx, userID)
	}
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.coupons.CountClaimsByUserSince(ctx, userID, midnight)
}

func (s *CouponServiceImpl) ListClaims(ctx context.Context, userID string, q dto.ListQuery) (*dto.Paginated[dto.CouponResponse], error) {
	claims, total, err := s.coupons.ListClaimsByUser(ctx, userID, q.Offset(), q.Limit())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.CouponResponse, 0, len(claims))
	for _, claim := range claims {
		if claim.Coupon == nil {
			continue
		}
		items = append(items, *dto.NewCouponResponse(claim.Coupon, true, true))
	}
	return &dto.Paginated[dto.CouponResponse]{
		Items:   items,
		Total:   total,
		Page:    q.Page,
		PerPage: q.Limit(),
	}, nil
}

func (s *CouponServiceImpl) ListByUploader(ctx context.Context, uploaderID string, q dto.ListQuery) (*dto.Paginated[dto.CouponResponse], error) {
	filter := repositories.CouponFilter{
		UploaderID:       uploaderID,
		IncludeExclusive: true,
		Offset:           q.Offset(),
		Limit:            q.Limit(),
	}
	coupons, total, err := s.coupons.List(ctx, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.CouponResponse, 0, len(coupons))
	for i := range coupons {
		items = append(items, *dto.NewCouponResponse(&coupons[i], true, false))
	}
	return &dto.Paginated[dto.CouponResponse]{
		Items:   items,
		Total:   total,
		Page:    q.Page,
		PerPage: q.Limit(),
	}, nil
}

func (s *CouponServiceImpl) recordEvent(userID, eventType string) {
	if s.usage == nil {
		return
	}
	go func() {
		event := &models.UsageTrack{EventType: eventType}
		if userID != "" {
			uid := userID
			event.UserID = &uid
		}
		if err := s.usage.Record(context.Background(), event); err != nil {
			logger.Error("failed to record usage event", "event", eventType, "error", err)
		}
	}()
}
