package models

import "gorm.io/datatypes"

type ProjectType string

const (
	ProjectAI      ProjectType = "ai"
	ProjectBigData ProjectType = "bigdata"
	ProjectIoT     ProjectType = "iot"
)

func (t ProjectType) Valid() bool {
	switch t {
	case ProjectAI, ProjectBigData, ProjectIoT:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Project is a research project students can apply to join.
type Project struct {
	BaseModel
	Title        string                      `gorm:"type:varchar(300);not null" json:"title"`
	Type         ProjectType                 `gorm:"type:varchar(20);index;not null" json:"type"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Description  string                      `gorm:"type:text" json:"description"`
	Requirements string                      `gorm:"type:text" json:"requirements"`
	ContactInfo  string                      `gorm:"type:varchar(300)" json:"contact_info"`
	Members      datatypes.JSON              `json:"members"`
}

type ProjectApplication struct {
	BaseModel
	UserID    string            `gorm:"type:varchar(36);index;not null" json:"user_id"`
	ProjectID string            `gorm:"type:varchar(36);index;not null" json:"project_id"`
	Reason    string            `gorm:"type:text" json:"reason"`
	Resume    string            `gorm:"type:text" json:"resume"`
	Status    ApplicationStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
}
