package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/database"
)

// ProjectModel is the GORM model for the projects table.
type ProjectModel struct {
	ID          string           `gorm:"type:varchar(36);primaryKey"`
	OrgID       string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_projects_org_name"`
	Name        string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_projects_org_name"`
	Description string           `gorm:"type:varchar(255)"`
	Meta        database.JSONMap `gorm:"type:text"`
	Audit
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ProjectModel) TableName() string {
	return "projects"
}

type Project struct {
	ID             string                 `json:"id"`
	OrgID          string                 `json:"org_id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description,omitempty"`
	Meta           map[string]interface{} `json:"meta"`
	CreatedBy      string                 `json:"created_by"`
	LastModifiedBy string                 `json:"last_modified_by"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func (m *ProjectModel) ToDomain() *Project {
	return &Project{
		ID:             m.ID,
		OrgID:          m.OrgID,
		Name:           m.Name,
		Description:    m.Description,
		Meta:           metaOrEmpty(m.Meta),
		CreatedBy:      m.CreatedBy,
		LastModifiedBy: m.LastModifiedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ProjectToModel(p *Project) *ProjectModel {
	return &ProjectModel{
		ID:          p.ID,
		OrgID:       p.OrgID,
		Name:        p.Name,
		Description: p.Description,
		Meta:        database.JSONMap(p.Meta),
		Audit:       Audit{CreatedBy: p.CreatedBy, LastModifiedBy: p.LastModifiedBy},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type CreateProjectRequest struct {
	Name        string                 `json:"name" binding:"required,min=1,max=255"`
	Description string                 `json:"description" binding:"max=255"`
	Meta        map[string]interface{} `json:"meta"`
}

type UpdateProjectRequest struct {
	Name        *string                `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string                `json:"description" binding:"omitempty,max=255"`
	Meta        map[string]interface{} `json:"meta"`
}
