package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/database"
)

// OrganizationModel is the GORM model for the organizations table. Prefix
// holds the first four groups of ID and is unique so that scoped task and
// feature identifiers never collide across organizations.
type OrganizationModel struct {
	ID          string           `gorm:"type:varchar(36);primaryKey"`
	Prefix      string           `gorm:"type:varchar(23);uniqueIndex;not null"`
	Name        string           `gorm:"type:varchar(255);uniqueIndex;not null"`
	Alias       string           `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string           `gorm:"type:text"`
	Meta        database.JSONMap `gorm:"type:text"`
	Audit
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (OrganizationModel) TableName() string {
	return "organizations"
}

// Organization is a tenant. Its ID is the namespace source for scoped
// identifiers.
type Organization struct {
	ID             string                 `json:"id"`
	Prefix         string                 `json:"prefix"`
	Name           string                 `json:"name"`
	Alias          string                 `json:"alias"`
	Description    string                 `json:"description,omitempty"`
	Meta           map[string]interface{} `json:"meta"`
	CreatedBy      string                 `json:"created_by"`
	LastModifiedBy string                 `json:"last_modified_by"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func (m *OrganizationModel) ToDomain() *Organization {
	return &Organization{
		ID:             m.ID,
		Prefix:         m.Prefix,
		Name:           m.Name,
		Alias:          m.Alias,
		Description:    m.Description,
		Meta:           metaOrEmpty(m.Meta),
		CreatedBy:      m.CreatedBy,
		LastModifiedBy: m.LastModifiedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func OrganizationToModel(o *Organization) *OrganizationModel {
	return &OrganizationModel{
		ID:          o.ID,
		Prefix:      o.Prefix,
		Name:        o.Name,
		Alias:       o.Alias,
		Description: o.Description,
		Meta:        database.JSONMap(o.Meta),
		Audit:       Audit{CreatedBy: o.CreatedBy, LastModifiedBy: o.LastModifiedBy},
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

type CreateOrganizationRequest struct {
	Name        string                 `json:"name" binding:"required,min=1,max=255"`
	Alias       string                 `json:"alias" binding:"required,min=1,max=255"`
	Description string                 `json:"description"`
	Meta        map[string]interface{} `json:"meta"`
}

type UpdateOrganizationRequest struct {
	Name        *string                `json:"name" binding:"omitempty,min=1,max=255"`
	Alias       *string                `json:"alias" binding:"omitempty,min=1,max=255"`
	Description *string                `json:"description"`
	Meta        map[string]interface{} `json:"meta"`
}

// OrganizationWithRole is an organization together with the caller's role.
type OrganizationWithRole struct {
	Organization
	Role MemberRole `json:"role"`
}

// OrganizationSummary reports entity counts and the last numbers handed
// out in an organization's namespace.
type OrganizationSummary struct {
	OrgID             string `json:"org_id"`
	Projects          int64  `json:"projects"`
	Sprints           int64  `json:"sprints"`
	Tasks             int64  `json:"tasks"`
	Features          int64  `json:"features"`
	LastTaskNumber    int64  `json:"last_task_number"`
	LastFeatureNumber int64  `json:"last_feature_number"`
}

func metaOrEmpty(m database.JSONMap) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}(m)
}
