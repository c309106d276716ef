package services

import (
	"context"
	"errors"

	"couponhub/internal/models"
	"couponhub/internal/repositories"
	"couponhub/internal/services/dto"
	"couponhub/pkg/apperrors"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.PublicProfile, error)
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserResponse, error)

	// Admin operations.
	ListUsers(ctx context.Context, q dto.ListQuery) (*dto.Paginated[dto.UserResponse], error)
	SetStatus(ctx context.Context, userID string, status models.UserStatus) error
	SetRole(ctx context.Context, userID string, role models.UserRole) error
	DeleteUser(ctx context.Context, userID string) error
}

type UserServiceImpl struct {
	users  repositories.UserRepository
	tokens repositories.RefreshTokenRepository
}

func NewUserService(users repositories.UserRepository, tokens repositories.RefreshTokenRepository) UserService {
	return &UserServiceImpl{users: users, tokens: tokens}
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (*dto.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPublicProfile(user), nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, q dto.ListQuery) (*dto.Paginated[dto.UserResponse], error) {
	users, total, err := s.users.List(ctx, q.Offset(), q.Limit())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, *dto.NewUserResponse(&users[i]))
	}
	return &dto.Paginated[dto.UserResponse]{
		Items:   items,
		Total:   total,
		Page:    q.Page,
		PerPage: q.Limit(),
	}, nil
}

func (s *UserServiceImpl) SetStatus(ctx context.Context, userID string, status models.UserStatus) error {
	err := s.users.UpdateFields(ctx, userID, map[string]interface{}{"status": status})
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrNotFound(err)
	}
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserServiceImpl) SetRole(ctx context.Context, userID string, role models.UserRole) error {
	fields := map[string]interface{}{
		"role":       role,
		"is_premium": role == models.UserRolePremium || role == models.UserRoleAdmin,
	}
	err := s.users.UpdateFields(ctx, userID, fields)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrNotFound(err)
	}
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// DeleteUser removes the account and ends every session it had.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return apperrors.InternalError(err)
	}
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrNotFound(err)
	}
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
