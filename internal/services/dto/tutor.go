package dto

import (
	"time"

	"gorm.io/datatypes"

	"tutormatch_backend/internal/models"
)

type TutorListQuery struct {
	Pagination
	Keyword    string `form:"keyword" validate:"omitempty,max=100"`
	School     string `form:"school" validate:"omitempty,max=100"`
	Department string `form:"department" validate:"omitempty,max=100"`
	City       string `form:"city" validate:"omitempty,max=50"`
}

type TutorSearchQuery struct {
	Pagination
	Keyword           string `form:"keyword" validate:"omitempty,max=100"`
	Name              string `form:"name" validate:"omitempty,max=50"`
	School            string `form:"school" validate:"omitempty,max=100"`
	Department        string `form:"department" validate:"omitempty,max=100"`
	ResearchDirection string `form:"research_direction" validate:"omitempty,max=200"`
	Title             string `form:"title" validate:"omitempty,max=50"`
	RecruitmentType   string `form:"recruitment_type" validate:"is-recruitment-type"`
	HasProjects       *bool  `form:"has_projects"`
	HasFunding        *bool  `form:"has_funding"`
	Tags              string `form:"tags"` // comma separated, any-of
	MinPapers         *int   `form:"min_papers" validate:"omitempty,min=0"`
	MaxPapers         *int   `form:"max_papers" validate:"omitempty,min=0"`
	MinProjects       *int   `form:"min_projects" validate:"omitempty,min=0"`
	MaxProjects       *int   `form:"max_projects" validate:"omitempty,min=0"`
	SortBy            string `form:"sort_by" validate:"is-sort-field"`
	SortOrder         string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// TutorBrief is the list representation of a tutor.
type TutorBrief struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Title             string                 `json:"title"`
	School            string                 `json:"school"`
	Department        string                 `json:"department"`
	City              string                 `json:"city"`
	Avatar            string                 `json:"avatar"`
	ResearchDirection string                 `json:"research_direction"`
	Tags              []string               `json:"tags"`
	RecruitmentType   models.RecruitmentType `json:"recruitment_type"`
	HasFunding        bool                   `json:"has_funding"`
	PaperCount        int                    `json:"paper_count"`
	ProjectCount      int                    `json:"project_count"`
}

func NewTutorBrief(t *models.Tutor) TutorBrief {
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}
	return TutorBrief{
		ID:                t.ID,
		Name:              t.Name,
		Title:             t.Title,
		School:            t.SchoolName,
		Department:        t.DepartmentName,
		City:              t.City,
		Avatar:            t.AvatarURL,
		ResearchDirection: t.ResearchDirection,
		Tags:              tags,
		RecruitmentType:   t.RecruitmentType,
		HasFunding:        t.HasFunding,
		PaperCount:        t.PaperCount,
		ProjectCount:      t.ProjectCount,
	}
}

type TutorDetailResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Title           string `json:"title"`
	School          string `json:"school"`
	SchoolID        string `json:"school_id"`
	Department      string `json:"department"`
	DepartmentID    string `json:"department_id"`
	Avatar          string `json:"avatar"`
	Bio             string `json:"bio"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	PersonalPage    string `json:"personal_page"`
	City            string `json:"city"`
	RecruitmentType string `json:"recruitment_type"`

	ResearchDirection string   `json:"research_direction"`
	Tags              []string `json:"tags"`
	HasFunding        bool     `json:"has_funding"`

	PaperCount   int `json:"paper_count"`
	ProjectCount int `json:"project_count"`
	StudentCount int `json:"student_count"`

	Papers              []models.Paper        `json:"papers"`
	Projects            []models.TutorProject `json:"projects"`
	AchievementsSummary string                `json:"achievements_summary"`
	Socials             datatypes.JSON        `json:"socials"`
	Students            datatypes.JSON        `json:"students"`
	Coops               datatypes.JSON        `json:"coops"`
	Risks               datatypes.JSON        `json:"risks"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CrawledAt   *time.Time `json:"crawled_at"`
	IsCollected bool       `json:"is_collected"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FilterOptions struct {
	Schools            []string `json:"schools"`
	Departments        []string `json:"departments"`
	Titles             []string `json:"titles"`
	ResearchDirections []string `json:"research_directions"`
	Tags               []string `json:"tags"`
	RecruitmentTypes   []Option `json:"recruitment_types"`
}

var RecruitmentTypeOptions = []Option{
	{Value: string(models.RecruitAcademic), Label: "学硕"},
	{Value: string(models.RecruitProfessional), Label: "专硕"},
	{Value: string(models.RecruitBoth), Label: "学硕+专硕"},
}

type SuggestionQuery struct {
	Keyword string `form:"keyword" validate:"omitempty,max=100"`
	Field   string `form:"field" validate:"omitempty,oneof=all name school department"`
}

type Suggestion struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Label string `json:"label"`
}

type PaperInput struct {
	Title    string   `json:"title" validate:"required,min=1,max=500"`
	Authors  []string `json:"authors" validate:"required,min=1"`
	Journal  string   `json:"journal" validate:"omitempty,max=200"`
	Year     int      `json:"year" validate:"required,min=1900,max=2100"`
	DOI      string   `json:"doi" validate:"omitempty,max=100"`
	Abstract string   `json:"abstract" validate:"omitempty,max=2000"`
}

type ProjectInput struct {
	Title       string `json:"title" validate:"required,min=1,max=500"`
	Funding     string `json:"funding" validate:"omitempty,max=200"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type CreateTutorRequest struct {
	Name              string         `json:"name" validate:"required,min=1,max=50"`
	School            string         `json:"school" validate:"required,min=1,max=100"`
	Department        string         `json:"department" validate:"required,min=1,max=100"`
	Title             string         `json:"title" validate:"omitempty,max=50"`
	City              string         `json:"city" validate:"omitempty,max=50"`
	ResearchDirection string         `json:"research_direction" validate:"omitempty,max=500"`
	Email             string         `json:"email" validate:"omitempty,email"`
	Phone             string         `json:"phone" validate:"omitempty,max=20"`
	AvatarURL         string         `json:"avatar_url" validate:"omitempty,max=500"`
	PersonalPageURL   string         `json:"personal_page_url" validate:"omitempty,max=500"`
	Bio               string         `json:"bio" validate:"omitempty,max=2000"`
	RecruitmentType   string         `json:"recruitment_type" validate:"is-recruitment-type"`
	HasFunding        bool           `json:"has_funding"`
	Papers            []PaperInput   `json:"papers" validate:"omitempty,dive"`
	Projects          []ProjectInput `json:"projects" validate:"omitempty,dive"`
	Tags              []string       `json:"tags" validate:"omitempty,max=20"`
}

// UpdateTutorRequest replaces papers, projects and tags wholesale when present.
type UpdateTutorRequest struct {
	Name              *string         `json:"name" validate:"omitempty,min=1,max=50"`
	School            *string         `json:"school" validate:"omitempty,min=1,max=100"`
	Department        *string         `json:"department" validate:"omitempty,min=1,max=100"`
	Title             *string         `json:"title" validate:"omitempty,max=50"`
	City              *string         `json:"city" validate:"omitempty,max=50"`
	ResearchDirection *string         `json:"research_direction" validate:"omitempty,max=500"`
	Email             *string         `json:"email" validate:"omitempty,email"`
	Phone             *string         `json:"phone" validate:"omitempty,max=20"`
	AvatarURL         *string         `json:"avatar_url" validate:"omitempty,max=500"`
	PersonalPageURL   *string         `json:"personal_page_url" validate:"omitempty,max=500"`
	Bio               *string         `json:"bio" validate:"omitempty,max=2000"`
	RecruitmentType   *string         `json:"recruitment_type" validate:"omitempty,is-recruitment-type"`
	HasFunding        *bool           `json:"has_funding"`
	Papers            *[]PaperInput   `json:"papers" validate:"omitempty,dive"`
	Projects          *[]ProjectInput `json:"projects" validate:"omitempty,dive"`
	Tags              *[]string       `json:"tags" validate:"omitempty,max=20"`
}

type TutorIDsRequest struct {
	TutorIDs []string `json:"tutor_ids" validate:"required,min=1"`
}

type BatchUpdateRequest struct {
	TutorIDs     []string               `json:"tutor_ids"`
	UpdateFields map[string]interface{} `json:"update_fields"`
}

type BatchResult struct {
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	TotalCount   int      `json:"total_count"`
	FailedIDs    []string `json:"failed_ids"`
}

type ExportQuery struct {
	Format     string `form:"format" validate:"is-export-format"`
	Keyword    string `form:"keyword" validate:"omitempty,max=100"`
	School     string `form:"school" validate:"omitempty,max=100"`
	Department string `form:"department" validate:"omitempty,max=100"`
	Title      string `form:"title" validate:"omitempty,max=50"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=10000"`
}

type ExportStats struct {
	TotalCount     int64         `json:"total_count"`
	MaxExportLimit int           `json:"max_export_limit"`
	CanExport      bool          `json:"can_export"`
	SchoolStats    []SchoolCount `json:"school_stats"`
	TitleStats     []TitleCount  `json:"title_stats"`
}

type SchoolCount struct {
	School string `json:"school"`
	Count  int64  `json:"count"`
}

type TitleCount struct {
	Title string `json:"title"`
	Count int64  `json:"count"`
}

// ExportFile is a fully rendered attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}
