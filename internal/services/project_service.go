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

type ProjectService interface {
	List(ctx context.Context, db *gorm.DB, q *dto.ProjectListQuery) (*dto.PageResult[models.Project], error)
	Detail(ctx context.Context, db *gorm.DB, projectID string) (*models.Project, error)
	Apply(ctx context.Context, db *gorm.DB, userID string, req *dto.ApplyProjectRequest) (*dto.ApplyProjectResponse, error)
	Applications(ctx context.Context, db *gorm.DB, userID string, status models.ApplicationStatus) ([]dto.ApplicationResponse, error)
}

type ProjectServiceImpl struct {
	projectRepo repositories.ProjectRepository
}

func NewProjectService(projectRepo repositories.ProjectRepository) ProjectService {
	return &ProjectServiceImpl{projectRepo: projectRepo}
}

// List accepts "all" or an empty type as no filter.
func (s *ProjectServiceImpl) List(ctx context.Context, db *gorm.DB, q *dto.ProjectListQuery) (*dto.PageResult[models.Project], error) {
	q.Normalize(20)

	var projectType models.ProjectType
	if q.Type != "" && q.Type != "all" {
		projectType = models.ProjectType(q.Type)
		if !projectType.Valid() {
			return nil, apperrors.ErrInvalidProjectType
		}
	}

	projects, total, err := s.projectRepo.List(db, projectType, q.PageSize, q.Offset())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPageResult(projects, total, q.Page, q.PageSize), nil
}

func (s *ProjectServiceImpl) Detail(ctx context.Context, db *gorm.DB, projectID string) (*models.Project, error) {
	p, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return p, nil
}

func (s *ProjectServiceImpl) Apply(ctx context.Context, db *gorm.DB, userID string, req *dto.ApplyProjectRequest) (*dto.ApplyProjectResponse, error) {
	if _, err := s.Detail(ctx, db, req.ProjectID); err != nil {
		return nil, err
	}

	tx := db.Begin()
	defer tx.Rollback()

	_, err := s.projectRepo.FindApplication(tx, userID, req.ProjectID)
	switch {
	case err == nil:
		return nil, apperrors.ErrAlreadyApplied
	case errors.Is(err, repositories.ErrApplicationNotFound):
	default:
		return nil, apperrors.InternalError(err)
	}

	app := &models.ProjectApplication{
		UserID:    userID,
		ProjectID: req.ProjectID,
		Reason:    req.Reason,
		Resume:    req.Resume,
		Status:    models.ApplicationPending,
	}
	if err := s.projectRepo.CreateApplication(tx, app); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "project application submitted", "application_id", app.ID, "project_id", req.ProjectID, "user_id", userID)
	return &dto.ApplyProjectResponse{ApplicationID: app.ID, Status: app.Status}, nil
}

func (s *ProjectServiceImpl) Applications(ctx context.Context, db *gorm.DB, userID string, status models.ApplicationStatus) ([]dto.ApplicationResponse, error) {
	apps, err := s.projectRepo.ListApplications(db, userID, status)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := make([]string, len(apps))
	for i, a := range apps {
		ids[i] = a.ProjectID
	}
	projects, err := s.projectRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.ApplicationResponse, len(apps))
	for i, a := range apps {
		p := projects[a.ProjectID]
		out[i] = dto.ApplicationResponse{
			ID:           a.ID,
			ProjectID:    a.ProjectID,
			ProjectTitle: p.Title,
			ProjectType:  p.Type,
			Reason:       a.Reason,
			Status:       a.Status,
			CreatedAt:    a.CreatedAt,
		}
	}
	return out, nil
}
