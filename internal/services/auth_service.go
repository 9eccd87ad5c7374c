package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/repositories"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/internal/wechat"
	"tutormatch_backend/pkg/apperrors"
)

type AuthService interface {
	WechatLogin(ctx context.Context, db *gorm.DB, req *dto.WechatLoginRequest) (*dto.LoginResponse, error)
	AdminLogin(ctx context.Context, db *gorm.DB, req *dto.AdminLoginRequest) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, db *gorm.DB, userID string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userID string) error
	SeedFirstAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error)
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	wechat   wechat.Authenticator
}

func NewAuthService(userRepo repositories.UserRepository, tokens *auth.TokenManager, wx wechat.Authenticator) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		wechat:   wx,
	}
}

// WechatLogin exchanges a mini-program code and signs in, creating the user on first visit.
func (s *AuthServiceImpl) WechatLogin(ctx context.Context, db *gorm.DB, req *dto.WechatLoginRequest) (*dto.LoginResponse, error) {
	session, err := s.wechat.Code2Session(ctx, req.Code)
	if err != nil {
		if errors.Is(err, wechat.ErrAuthFailed) {
			logger.CtxWarn(ctx, "wechat code rejected", "error", err)
			return nil, apperrors.ErrWechatAuthFailed.WithError(err)
		}
		logger.CtxWithError(ctx, "wechat code2session failed", err)
		return nil, apperrors.Wrap(err, apperrors.CodeExternalServiceError, "auth", "微信服务暂不可用", http.StatusBadGateway)
	}

	user, err := s.userRepo.FindByOpenID(db, session.OpenID)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrUserNotFound):
		user, err = s.createWechatUser(db, session)
		if err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, "wechat user created", "user_id", user.ID)
	default:
		return nil, apperrors.InternalError(err)
	}

	return s.issue(user)
}

func (s *AuthServiceImpl) createWechatUser(db *gorm.DB, session *wechat.Session) (*models.User, error) {
	openID := session.OpenID
	prefix := openID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	user := &models.User{
		OpenID:   &openID,
		UnionID:  session.UnionID,
		Nickname: "用户_" + prefix,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		// Lost a race against a concurrent first login.
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			existing, findErr := s.userRepo.FindByOpenID(db, openID)
			if findErr == nil {
				return existing, nil
			}
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *AuthServiceImpl) AdminLogin(ctx context.Context, db *gorm.DB, req *dto.AdminLoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !user.IsAdmin() || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "admin login rejected", "email", req.Email)
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthServiceImpl) RefreshToken(ctx context.Context, db *gorm.DB, userID string) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return s.issue(user)
}

// Logout only records the event; tokens are stateless.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID string) error {
	logger.CtxInfo(ctx, "user logged out", "user_id", userID)
	return nil
}

// SeedFirstAdmin creates an admin account unless one already exists.
func (s *AuthServiceImpl) SeedFirstAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	if err := auth.ValidatePassword(password); err != nil {
		return false, apperrors.NewBadRequestError(err.Error())
	}

	count, err := s.userRepo.CountByRole(db, models.RoleAdmin)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	admin := &models.User{
		Email:        &normalized,
		Nickname:     "管理员",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(db, admin); err != nil {
		return false, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "first admin created", "user_id", admin.ID, "email", normalized)
	return true, nil
}

func (s *AuthServiceImpl) issue(user *models.User) (*dto.LoginResponse, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}
