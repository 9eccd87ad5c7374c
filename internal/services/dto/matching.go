package dto

import (
	"time"

	"tutormatch_backend/internal/algorithms"
)

type MatchRequest struct {
	Discipline  string                 `json:"discipline" validate:"required,max=100"`
	Keywords    string                 `json:"keywords" validate:"max=500"`
	Preferences algorithms.Preferences `json:"preferences"`
}

type MatchResponse struct {
	MatchID string                   `json:"match_id"`
	Results []algorithms.MatchResult `json:"results"`
}

type MatchHistoryItem struct {
	ID          string                 `json:"id"`
	Discipline  string                 `json:"discipline"`
	Keywords    string                 `json:"keywords"`
	Preferences algorithms.Preferences `json:"preferences"`
	CreatedAt   time.Time              `json:"created_at"`
	ResultCount int                    `json:"result_count"`
}

type MatchHistoryList struct {
	List     []MatchHistoryItem `json:"list"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

type MatchHistoryDetail struct {
	MatchID     string                   `json:"match_id"`
	Discipline  string                   `json:"discipline"`
	Keywords    string                   `json:"keywords"`
	Preferences algorithms.Preferences   `json:"preferences"`
	CreatedAt   time.Time                `json:"created_at"`
	Results     []algorithms.MatchResult `json:"results"`
}
