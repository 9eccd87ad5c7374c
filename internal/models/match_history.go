package models

import (
	"time"

	"gorm.io/datatypes"
)

// MatchHistory is written once per match submission and never updated.
type MatchHistory struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string         `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Discipline  string         `gorm:"type:varchar(200)" json:"discipline"`
	Keywords    string         `gorm:"type:text" json:"keywords"`
	Preferences datatypes.JSON `json:"preferences"`
	ResultJSON  datatypes.JSON `gorm:"column:result_json" json:"result_json"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (MatchHistory) TableName() string {
	return "match_histories"
}
