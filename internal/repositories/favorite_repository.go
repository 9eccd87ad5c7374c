package repositories

import (
	"errors"

	"gorm.io/gorm"

	"tutormatch_backend/internal/models"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

type FavoriteRepository interface {
	Find(db *gorm.DB, userID string, target models.FavoriteTarget, targetID string) (*models.Favorite, error)
	Create(db *gorm.DB, fav *models.Favorite) error
	Delete(db *gorm.DB, userID string, target models.FavoriteTarget, targetID string) (bool, error)
	ListByUser(db *gorm.DB, userID string, target models.FavoriteTarget, limit, offset int) ([]models.Favorite, int64, error)
	CollectedIDs(db *gorm.DB, userID string, target models.FavoriteTarget, targetIDs []string) (map[string]bool, error)
}

type FavoriteRepositoryImpl struct{}

func NewFavoriteRepository() FavoriteRepository {
	return &FavoriteRepositoryImpl{}
}

func (r *FavoriteRepositoryImpl) Find(db *gorm.DB, userID string, target models.FavoriteTarget, targetID string) (*models.Favorite, error) {
	var fav models.Favorite
	err := db.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target, targetID).
		First(&fav).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}
	return &fav, nil
}

func (r *FavoriteRepositoryImpl) Create(db *gorm.DB, fav *models.Favorite) error {
	return db.Create(fav).Error
}

// Delete reports whether a row was removed.
func (r *FavoriteRepositoryImpl) Delete(db *gorm.DB, userID string, target models.FavoriteTarget, targetID string) (bool, error) {
	result := db.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target, targetID).
		Delete(&models.Favorite{})
	return result.RowsAffected > 0, result.Error
}

func (r *FavoriteRepositoryImpl) ListByUser(db *gorm.DB, userID string, target models.FavoriteTarget, limit, offset int) ([]models.Favorite, int64, error) {
	q := db.Model(&models.Favorite{}).
		Where("user_id = ? AND target_type = ?", userID, target).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favs []models.Favorite
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&favs).Error
	return favs, total, err
}

func (r *FavoriteRepositoryImpl) CollectedIDs(db *gorm.DB, userID string, target models.FavoriteTarget, targetIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, target, targetIDs).
		Pluck("target_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
