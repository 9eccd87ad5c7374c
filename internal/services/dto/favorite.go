package dto

import "time"

type ToggleFavoriteRequest struct {
	TutorID string `json:"tutor_id" validate:"required"`
}

type ToggleFavoriteResponse struct {
	Action  string `json:"action"` // collected | uncollected
	TutorID string `json:"tutor_id"`
	Message string `json:"message"`
}

type FavoriteTutor struct {
	TutorBrief
	CollectedAt time.Time `json:"collected_at"`
}

type FavoriteStatus struct {
	TutorID     string `json:"tutor_id"`
	IsCollected bool   `json:"is_collected"`
}

type BatchStatusRequest struct {
	TutorIDs []string `json:"tutor_ids" validate:"required,min=1,max=100"`
}
