package dto

import (
	"time"

	"couponhub/internal/models"
)

type UserResponse struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	Status          string    `json:"status"`
	IsPremium       bool      `json:"is_premium"`
	IsEmailVerified bool      `json:"is_email_verified"`
	Points          int       `json:"points"`
	Bio             string    `json:"bio,omitempty"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            string(u.Role),
		Status:          string(u.Status),
		IsPremium:       u.IsPremium,
		IsEmailVerified: u.IsEmailVerified,
		Points:          u.Points,
		Bio:             u.Bio,
		AvatarURL:       u.AvatarURL,
		CreatedAt:       u.CreatedAt,
	}
}

// PublicProfile hides the email for non-owner viewers.
type PublicProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Points    int       `json:"points"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPublicProfile(u *models.User) *PublicProfile {
	return &PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		Points:    u.Points,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

type UpdateProfileRequest struct {
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url,max=500"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended banned"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user premium admin"`
}

type ListQuery struct {
	Page    int `form:"page,default=1" binding:"omitempty,min=1"`
	PerPage int `form:"per_page,default=20" binding:"omitempty,min=1,max=100"`
}

func (q ListQuery) Offset() int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * q.Limit()
}

func (q ListQuery) Limit() int {
	if q.PerPage < 1 {
		return 20
	}
	return q.PerPage
}

type Paginated[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}
