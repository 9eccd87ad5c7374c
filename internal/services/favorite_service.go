package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/repositories"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/pkg/apperrors"
)

const (
	ActionCollected   = "collected"
	ActionUncollected = "uncollected"
)

type FavoriteService interface {
	Toggle(ctx context.Context, db *gorm.DB, userID, tutorID string) (*dto.ToggleFavoriteResponse, error)
	List(ctx context.Context, db *gorm.DB, userID string, page dto.Pagination) (*dto.PageResult[dto.FavoriteTutor], error)
	Status(ctx context.Context, db *gorm.DB, userID, tutorID string) (*dto.FavoriteStatus, error)
	BatchStatus(ctx context.Context, db *gorm.DB, userID string, tutorIDs []string) (map[string]bool, error)
	Remove(ctx context.Context, db *gorm.DB, userID, tutorID string) error
}

type FavoriteServiceImpl struct {
	favoriteRepo repositories.FavoriteRepository
	tutorRepo    repositories.TutorRepository
}

func NewFavoriteService(favoriteRepo repositories.FavoriteRepository, tutorRepo repositories.TutorRepository) FavoriteService {
	return &FavoriteServiceImpl{favoriteRepo: favoriteRepo, tutorRepo: tutorRepo}
}

// Toggle collects an uncollected tutor and uncollects a collected one.
func (s *FavoriteServiceImpl) Toggle(ctx context.Context, db *gorm.DB, userID, tutorID string) (*dto.ToggleFavoriteResponse, error) {
	if _, err := s.tutorRepo.FindByID(db, tutorID, false); err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return nil, apperrors.ErrTutorNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	removed, err := s.favoriteRepo.Delete(db, userID, models.FavoriteTutor, tutorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if removed {
		logger.CtxInfo(ctx, "tutor uncollected", "user_id", userID, "tutor_id", tutorID)
		return &dto.ToggleFavoriteResponse{Action: ActionUncollected, TutorID: tutorID, Message: "取消收藏成功"}, nil
	}

	fav := &models.Favorite{UserID: userID, TargetType: models.FavoriteTutor, TargetID: tutorID}
	if err := s.favoriteRepo.Create(db, fav); err != nil {
		// A concurrent toggle may have inserted the same row.
		if _, findErr := s.favoriteRepo.Find(db, userID, models.FavoriteTutor, tutorID); findErr != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	logger.CtxInfo(ctx, "tutor collected", "user_id", userID, "tutor_id", tutorID)
	return &dto.ToggleFavoriteResponse{Action: ActionCollected, TutorID: tutorID, Message: "收藏成功"}, nil
}

func (s *FavoriteServiceImpl) List(ctx context.Context, db *gorm.DB, userID string, page dto.Pagination) (*dto.PageResult[dto.FavoriteTutor], error) {
	page.Normalize(20)

	favs, total, err := s.favoriteRepo.ListByUser(db, userID, models.FavoriteTutor, page.PageSize, page.Offset())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := make([]string, len(favs))
	for i, f := range favs {
		ids[i] = f.TargetID
	}
	tutors, err := s.tutorRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	list := make([]dto.FavoriteTutor, 0, len(favs))
	for _, f := range favs {
		t, ok := tutors[f.TargetID]
		if !ok {
			continue
		}
		list = append(list, dto.FavoriteTutor{TutorBrief: dto.NewTutorBrief(&t), CollectedAt: f.CreatedAt})
	}
	return dto.NewPageResult(list, total, page.Page, page.PageSize), nil
}

func (s *FavoriteServiceImpl) Status(ctx context.Context, db *gorm.DB, userID, tutorID string) (*dto.FavoriteStatus, error) {
	collected, err := s.favoriteRepo.CollectedIDs(db, userID, models.FavoriteTutor, []string{tutorID})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.FavoriteStatus{TutorID: tutorID, IsCollected: collected[tutorID]}, nil
}

// BatchStatus reports every requested id, false when not collected.
func (s *FavoriteServiceImpl) BatchStatus(ctx context.Context, db *gorm.DB, userID string, tutorIDs []string) (map[string]bool, error) {
	collected, err := s.favoriteRepo.CollectedIDs(db, userID, models.FavoriteTutor, tutorIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make(map[string]bool, len(tutorIDs))
	for _, id := range tutorIDs {
		out[id] = collected[id]
	}
	return out, nil
}

func (s *FavoriteServiceImpl) Remove(ctx context.Context, db *gorm.DB, userID, tutorID string) error {
	removed, err := s.favoriteRepo.Delete(db, userID, models.FavoriteTutor, tutorID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !removed {
		return apperrors.ErrNotCollected
	}
	logger.CtxInfo(ctx, "tutor uncollected", "user_id", userID, "tutor_id", tutorID)
	return nil
}
