package repositories

import (
	"errors"

	"gorm.io/gorm"

	"tutormatch_backend/internal/models"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrApplicationNotFound = errors.New("application not found")
)

type ProjectRepository interface {
	List(db *gorm.DB, projectType models.ProjectType, limit, offset int) ([]models.Project, int64, error)
	FindByID(db *gorm.DB, id string) (*models.Project, error)
	FindByIDs(db *gorm.DB, ids []string) (map[string]models.Project, error)

	FindApplication(db *gorm.DB, userID, projectID string) (*models.ProjectApplication, error)
	CreateApplication(db *gorm.DB, app *models.ProjectApplication) error
	ListApplications(db *gorm.DB, userID string, status models.ApplicationStatus) ([]models.ProjectApplication, error)
}

type ProjectRepositoryImpl struct{}

func NewProjectRepository() ProjectRepository {
	return &ProjectRepositoryImpl{}
}

// List filters by type unless projectType is empty.
func (r *ProjectRepositoryImpl) List(db *gorm.DB, projectType models.ProjectType, limit, offset int) ([]models.Project, int64, error) {
	q := db.Model(&models.Project{})
	if projectType != "" {
		q = q.Where("type = ?", projectType)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&projects).Error
	return projects, total, err
}

func (r *ProjectRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Project, error) {
	var p models.Project
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) (map[string]models.Project, error) {
	out := make(map[string]models.Project, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var projects []models.Project
	if err := db.Where("id IN ?", ids).Find(&projects).Error; err != nil {
		return nil, err
	}
	for _, p := range projects {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProjectRepositoryImpl) FindApplication(db *gorm.DB, userID, projectID string) (*models.ProjectApplication, error) {
	var app models.ProjectApplication
	err := db.Where("user_id = ? AND project_id = ?", userID, projectID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ProjectRepositoryImpl) CreateApplication(db *gorm.DB, app *models.ProjectApplication) error {
	return db.Create(app).Error
}

func (r *ProjectRepositoryImpl) ListApplications(db *gorm.DB, userID string, status models.ApplicationStatus) ([]models.ProjectApplication, error) {
	q := db.Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var apps []models.ProjectApplication
	err := q.Order("created_at DESC").Find(&apps).Error
	return apps, err
}
