package models

import (
	"time"

	"gorm.io/datatypes"
)

type RecruitmentType string

const (
	RecruitAcademic     RecruitmentType = "academic"
	RecruitProfessional RecruitmentType = "professional"
	RecruitBoth         RecruitmentType = "both"
)

// Tutor is the primary tutor record. Rows are soft-deleted through IsDeleted
// so admins can restore them.
type Tutor struct {
	BaseModel
	Name              string                      `gorm:"type:varchar(100);not null;index" json:"name"`
	Title             string                      `gorm:"type:varchar(100)" json:"title"`
	SchoolID          string                      `gorm:"type:varchar(36)" json:"school_id"`
	SchoolName        string                      `gorm:"type:varchar(200);index" json:"school_name"`
	DepartmentID      string                      `gorm:"type:varchar(36)" json:"department_id"`
	DepartmentName    string                      `gorm:"type:varchar(200)" json:"department_name"`
	City              string                      `gorm:"type:varchar(100)" json:"city"`
	Email             string                      `gorm:"type:varchar(255)" json:"email"`
	Phone             string                      `gorm:"type:varchar(50)" json:"phone"`
	AvatarURL         string                      `gorm:"type:varchar(500)" json:"avatar_url"`
	PersonalPageURL   string                      `gorm:"type:varchar(500)" json:"personal_page_url"`
	ResearchDirection string                      `gorm:"type:text" json:"research_direction"`
	Bio               string                      `gorm:"type:text" json:"bio"`
	Tags              datatypes.JSONSlice[string] `json:"tags"`
	RecruitmentType   RecruitmentType             `gorm:"type:varchar(20)" json:"recruitment_type"`
	HasFunding        bool                        `gorm:"default:false" json:"has_funding"`
	PaperCount        int                         `gorm:"default:0" json:"paper_count"`
	ProjectCount      int                         `gorm:"default:0" json:"project_count"`
	IsDeleted         bool                        `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt         *time.Time                  `json:"deleted_at,omitempty"`
	DeletedBy         string                      `gorm:"type:varchar(36)" json:"deleted_by,omitempty"`
	CreatedBy         string                      `gorm:"type:varchar(36)" json:"created_by,omitempty"`
	UpdatedBy         string                      `gorm:"type:varchar(36)" json:"updated_by,omitempty"`
	CrawledAt         *time.Time                  `json:"crawled_at,omitempty"`
}

// TutorDetail holds the extended, loosely structured part of a tutor profile.
type TutorDetail struct {
	BaseModel
	TutorID             string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"tutor_id"`
	Bio                 string         `gorm:"type:text" json:"bio"`
	AchievementsSummary string         `gorm:"type:text" json:"achievements_summary"`
	Socials             datatypes.JSON `json:"socials"`
	Students            datatypes.JSON `json:"students"`
	Coops               datatypes.JSON `json:"coops"`
	Risks               datatypes.JSON `json:"risks"`
}

type Paper struct {
	BaseModel
	TutorID   string                      `gorm:"type:varchar(36);index;not null" json:"tutor_id"`
	Title     string                      `gorm:"type:varchar(500);not null" json:"title"`
	Authors   datatypes.JSONSlice[string] `json:"authors"`
	Journal   string                      `gorm:"type:varchar(300)" json:"journal"`
	Year      int                         `gorm:"index" json:"year"`
	DOI       string                      `gorm:"type:varchar(200)" json:"doi"`
	Abstract  string                      `gorm:"type:text" json:"abstract"`
	Citations int                         `gorm:"default:0" json:"citations"`
	URL       string                      `gorm:"type:varchar(500)" json:"url"`
}

type TutorProject struct {
	BaseModel
	TutorID     string     `gorm:"type:varchar(36);index;not null" json:"tutor_id"`
	Title       string     `gorm:"type:varchar(500);not null" json:"title"`
	Funding     string     `gorm:"type:varchar(200)" json:"funding"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `gorm:"type:text" json:"description"`
	Amount      float64    `json:"amount"`
	Status      string     `gorm:"type:varchar(50)" json:"status"`
}
