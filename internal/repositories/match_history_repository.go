package repositories

import (
	"errors"

	"gorm.io/gorm"

	"tutormatch_backend/internal/models"
)

var ErrMatchHistoryNotFound = errors.New("match history not found")

type MatchHistoryRepository interface {
	Create(db *gorm.DB, history *models.MatchHistory) error
	FindByIDAndUser(db *gorm.DB, id, userID string) (*models.MatchHistory, error)
	ListByUser(db *gorm.DB, userID string, limit, offset int) ([]models.MatchHistory, int64, error)
}

type MatchHistoryRepositoryImpl struct{}

func NewMatchHistoryRepository() MatchHistoryRepository {
	return &MatchHistoryRepositoryImpl{}
}

func (r *MatchHistoryRepositoryImpl) Create(db *gorm.DB, history *models.MatchHistory) error {
	return db.Create(history).Error
}

// FindByIDAndUser never distinguishes a missing id from a foreign one.
func (r *MatchHistoryRepositoryImpl) FindByIDAndUser(db *gorm.DB, id, userID string) (*models.MatchHistory, error) {
	var h models.MatchHistory
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchHistoryNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *MatchHistoryRepositoryImpl) ListByUser(db *gorm.DB, userID string, limit, offset int) ([]models.MatchHistory, int64, error) {
	q := db.Model(&models.MatchHistory{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.MatchHistory
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}
