package dto

import (
	"time"

	"tutormatch_backend/internal/models"
)

type ProjectListQuery struct {
	Pagination
	Type string `form:"type"`
}

type ApplyProjectRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	Reason    string `json:"reason" validate:"required,min=1,max=1000"`
	Resume    string `json:"resume" validate:"omitempty,max=5000"`
}

type ApplyProjectResponse struct {
	ApplicationID string                   `json:"application_id"`
	Status        models.ApplicationStatus `json:"status"`
}

type ApplicationListQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=pending approved rejected"`
}

type ApplicationResponse struct {
	ID           string                   `json:"id"`
	ProjectID    string                   `json:"project_id"`
	ProjectTitle string                   `json:"project_title"`
	ProjectType  models.ProjectType       `json:"project_type"`
	Reason       string                   `json:"reason"`
	Status       models.ApplicationStatus `json:"status"`
	CreatedAt    time.Time                `json:"created_at"`
}
