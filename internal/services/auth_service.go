package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"couponhub/internal/auth"
	"couponhub/internal/config"
	"couponhub/internal/email"
	"couponhub/internal/logger"
	"couponhub/internal/models"
	"couponhub/internal/repositories"
	"couponhub/internal/services/dto"
	"couponhub/pkg/apperrors"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type AuthServiceImpl struct {
	users  repositories.UserRepository
	tokens repositories.RefreshTokenRepository
	usage  repositories.UsageRepository
	jwt    *auth.Manager
	mailer email.Provider
	cfg    config.JWTConfig
}

func NewAuthService(
	users repositories.UserRepository,
	tokens repositories.RefreshTokenRepository,
	usage repositories.UsageRepository,
	jwtManager *auth.Manager,
	mailer email.Provider,
	cfg config.JWTConfig,
) AuthService {
	return &AuthServiceImpl{
		users:  users,
		tokens: tokens,
		usage:  usage,
		jwt:    jwtManager,
		mailer: mailer,
		cfg:    cfg,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	verifyToken, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:          req.Username,
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:      hash,
		Role:              models.UserRoleUser,
		Status:            models.UserStatusActive,
		VerificationToken: verifyToken,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrUserExists
		}
		return nil, apperrors.InternalError(err)
	}

	s.recordEvent(user.ID, models.EventUserRegister)
	go func() {
		if err := s.mailer.SendVerificationEmail(context.Background(), user.Email, user.Username, user.VerificationToken); err != nil {
			logger.Error("failed to send verification email", "user_id", user.ID, "error", err)
		}
	}()

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{User: dto.NewUserResponse(user), Tokens: *tokens}, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Same error as a wrong password so emails cannot be probed.
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserStatusSuspended:
		return nil, apperrors.ErrUserSuspended
	case models.UserStatusBanned:
		return nil, apperrors.ErrUserBanned
	}

	s.recordEvent(user.ID, models.EventUserLogin)

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{User: dto.NewUserResponse(user), Tokens: *tokens}, nil
}

// Refresh rotates the refresh token: the presented token is consumed and a
// new pair is issued. A reused token therefore fails, which bounds the
// damage of a leaked one.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	stored, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokens.Delete(ctx, refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			_ = s.tokens.Delete(ctx, refreshToken)
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	switch user.Status {
	case models.UserStatusSuspended:
		return nil, apperrors.ErrUserSuspended
	case models.UserStatusBanned:
		return nil, apperrors.ErrUserBanned
	}

	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// LogoutAll drops every refresh token for the user, ending all sessions.
func (s *AuthServiceImpl) LogoutAll(ctx context.Context, userID string) error {
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// GetCurrentUser reads fresh state from the database, so role or premium
// changes made after the token was issued are reflected immediately.
func (s *AuthServiceImpl) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	err = s.users.UpdateFields(ctx, user.ID, map[string]interface{}{
		"is_email_verified":  true,
		"verification_token": "",
	})
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// RequestPasswordReset always reports success to the caller. Whether the
// email exists is only visible on our side.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			logger.CtxInfo(ctx, "password reset requested for unknown email")
			return nil
		}
		return apperrors.InternalError(err)
	}

	token, err := auth.GenerateOpaqueToken()
	if err != nil {
		return apperrors.InternalError(err)
	}
	exp := time.Now().Add(time.Hour)
	err = s.users.UpdateFields(ctx, user.ID, map[string]interface{}{
		"reset_token":     token,
		"reset_token_exp": &exp,
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	go func() {
		if err := s.mailer.SendPasswordResetEmail(context.Background(), user.Email, user.Username, token); err != nil {
			logger.Error("failed to send password reset email", "user_id", user.ID, "error", err)
		}
	}()
	return nil
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}
	if user.ResetTokenExp == nil || time.Now().After(*user.ResetTokenExp) {
		return apperrors.ErrInvalidToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	err = s.users.UpdateFields(ctx, user.ID, map[string]interface{}{
		"password_hash":   hash,
		"reset_token":     "",
		"reset_token_exp": nil,
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	// Password changed, all existing sessions are void.
	if err := s.tokens.DeleteByUser(ctx, user.ID); err != nil {
		logger.CtxWithError(ctx, "failed to revoke sessions after password reset", err, "user_id", user.ID)
	}
	return nil
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	err = s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"password_hash": hash})
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		logger.CtxWithError(ctx, "failed to revoke sessions after password change", err, "user_id", userID)
	}
	return nil
}

func (s *AuthServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.TokenPair, error) {
	access, accessExp, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	opaque, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshExp := time.Now().Add(time.Duration(s.cfg.RefreshExpiry) * time.Hour)
	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     opaque,
		ExpiresAt: refreshExp,
	}
	if err := s.tokens.Create(ctx, refresh); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthServiceImpl) recordEvent(userID, eventType string) {
	if s.usage == nil {
		return
	}
	go func() {
		uid := userID
		event := &models.UsageTrack{UserID: &uid, EventType: eventType}
		if err := s.usage.Record(context.Background(), event); err != nil {
			logger.Error("failed to record usage event", "event", eventType, "error", err)
		}
	}()
}
