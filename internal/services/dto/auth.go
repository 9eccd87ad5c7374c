package dto

import (
	"time"

	"tutormatch_backend/internal/models"
)

type WechatLoginRequest struct {
	Code string `json:"code" validate:"required"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

type UserResponse struct {
	ID            string          `json:"id"`
	Nickname      string          `json:"nickname"`
	Avatar        string          `json:"avatar"`
	School        string          `json:"school"`
	Major         string          `json:"major"`
	Grade         string          `json:"grade"`
	VIPStatus     bool            `json:"vip_status"`
	VIPExpireDate *time.Time      `json:"vip_expire_date"`
	Role          models.UserRole `json:"role"`
	CreatedAt     time.Time       `json:"created_at"`
}

func NewUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		Nickname:      u.Nickname,
		Avatar:        u.Avatar,
		School:        u.School,
		Major:         u.Major,
		Grade:         u.Grade,
		VIPStatus:     u.VIPStatus,
		VIPExpireDate: u.VIPExpireDate,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
	}
}
