package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutormatch_backend/internal/imageprocessor"
	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/repositories"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/internal/storage"
	"tutormatch_backend/pkg/apperrors"
)

// UploadOptions limits avatar uploads.
type UploadOptions struct {
	MaxSize      int64
	AllowedTypes []string
	AvatarSide   int // longest stored edge; 0 means imageprocessor.AvatarSide
}

type UserService interface {
	GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error)
	UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file io.Reader) (*dto.AvatarResponse, error)
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
	storage  storage.Storage
	upload   UploadOptions
	images   *imageprocessor.Processor
}

func NewUserService(userRepo repositories.UserRepository, store storage.Storage, upload UploadOptions) UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
		storage:  store,
		upload:   upload,
		images:   imageprocessor.NewProcessor(85, upload.AvatarSide),
	}
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponse(user), nil
}

// UpdateProfile writes only the fields present in the request.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error) {
	fields := map[string]interface{}{}
	var updated []string
	set := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
			updated = append(updated, column)
		}
	}
	set("nickname", req.Nickname)
	set("avatar", req.Avatar)
	set("school", req.School)
	set("major", req.Major)
	set("grade", req.Grade)

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(db, userID, fields); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctx, "profile updated", "user_id", userID, "fields", updated)
	}

	profile, err := s.GetProfile(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		updated = []string{}
	}
	return &dto.UpdateProfileResponse{User: profile, UpdatedFields: updated}, nil
}

// UploadAvatar stores the image and points the profile at it.
func (s *UserServiceImpl) UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file io.Reader) (*dto.AvatarResponse, error) {
	data, err := io.ReadAll(io.LimitReader(file, s.upload.MaxSize+1))
	if err != nil {
		return nil, apperrors.NewBadRequestError("读取上传文件失败")
	}
	if len(data) == 0 {
		return nil, apperrors.NewBadRequestError("上传文件为空")
	}
	if int64(len(data)) > s.upload.MaxSize {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "upload",
			fmt.Sprintf("文件大小不能超过%dMB", s.upload.MaxSize>>20), http.StatusRequestEntityTooLarge)
	}

	mtype := mimetype.Detect(data)
	if !s.allowed(mtype) {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "upload", "不支持的文件类型", http.StatusBadRequest).
			WithDetails(map[string]string{"content_type": mtype.String()})
	}

	if imageprocessor.Supports(strings.TrimPrefix(mtype.String(), "image/")) {
		if data, err = s.images.Shrink(data); err != nil {
			logger.CtxWarn(ctx, "avatar decode failed", "user_id", userID, "error", err)
			return nil, apperrors.NewBadRequestError("图片文件已损坏")
		}
	}

	path := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), mtype.Extension())
	if err := s.storage.Save(ctx, path, bytes.NewReader(data), mtype.String()); err != nil {
		logger.CtxWithError(ctx, "failed to store avatar", err, "user_id", userID)
		return nil, apperrors.InternalError(err)
	}
	url, err := s.storage.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"avatar": url}); err != nil {
		_ = s.storage.Delete(ctx, path)
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	return &dto.AvatarResponse{Avatar: url}, nil
}

func (s *UserServiceImpl) allowed(m *mimetype.MIME) bool {
	if len(s.upload.AllowedTypes) == 0 {
		return true
	}
	for _, t := range s.upload.AllowedTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}
