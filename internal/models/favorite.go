package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteTarget string

const (
	FavoriteTutor   FavoriteTarget = "tutor"
	FavoriteProject FavoriteTarget = "project"
)

type Favorite struct {
	ID         string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_target" json:"user_id"`
	TargetType FavoriteTarget `gorm:"type:varchar(20);not null;uniqueIndex:idx_favorite_target" json:"target_type"`
	TargetID   string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_target" json:"target_id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
