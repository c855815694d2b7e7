package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/database"
)

type SprintStatus string

const (
	SprintBacklog SprintStatus = "Backlog"
	SprintActive  SprintStatus = "Active"
	SprintDone    SprintStatus = "Done"
)

// SprintModel is the GORM model for the sprints table. IDs are UUIDv7 so
// primary key order follows creation time.
type SprintModel struct {
	ID     string           `gorm:"type:varchar(36);primaryKey"`
	OrgID  string           `gorm:"type:varchar(36);index;not null"`
	Title  string           `gorm:"type:varchar(255)"`
	Status string           `gorm:"type:varchar(20);not null;default:'Backlog'"`
	EndTs  *time.Time       `gorm:"column:end_ts"`
	Meta   database.JSONMap `gorm:"type:text"`
	Audit
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (SprintModel) TableName() string {
	return "sprints"
}

type Sprint struct {
	ID             string                 `json:"id"`
	OrgID          string                 `json:"org_id"`
	Title          string                 `json:"title,omitempty"`
	Status         SprintStatus           `json:"status"`
	EndTs          *time.Time             `json:"end_ts,omitempty"`
	Meta           map[string]interface{} `json:"meta"`
	CreatedBy      string                 `json:"created_by"`
	LastModifiedBy string                 `json:"last_modified_by"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func (m *SprintModel) ToDomain() *Sprint {
	return &Sprint{
		ID:             m.ID,
		OrgID:          m.OrgID,
		Title:          m.Title,
		Status:         SprintStatus(m.Status),
		EndTs:          m.EndTs,
		Meta:           metaOrEmpty(m.Meta),
		CreatedBy:      m.CreatedBy,
		LastModifiedBy: m.LastModifiedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func SprintToModel(s *Sprint) *SprintModel {
	return &SprintModel{
		ID:        s.ID,
		OrgID:     s.OrgID,
		Title:     s.Title,
		Status:    string(s.Status),
		EndTs:     s.EndTs,
		Meta:      database.JSONMap(s.Meta),
		Audit:     Audit{CreatedBy: s.CreatedBy, LastModifiedBy: s.LastModifiedBy},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type CreateSprintRequest struct {
	Title  string                 `json:"title" binding:"max=255"`
	Status SprintStatus           `json:"status" binding:"omitempty,oneof=Backlog Active Done"`
	EndTs  *time.Time             `json:"end_ts"`
	Meta   map[string]interface{} `json:"meta"`
}

type UpdateSprintRequest struct {
	Title  *string                `json:"title" binding:"omitempty,max=255"`
	Status *SprintStatus          `json:"status" binding:"omitempty,oneof=Backlog Active Done"`
	EndTs  *time.Time             `json:"end_ts"`
	Meta   map[string]interface{} `json:"meta"`
}

// SprintTaskModel links a task to a sprint.
type SprintTaskModel struct {
	SprintID  string    `gorm:"type:varchar(36);primaryKey"`
	TaskID    string    `gorm:"type:varchar(36);primaryKey;index"`
	OrgID     string    `gorm:"type:varchar(36);index;not null"`
	CreatedBy string    `gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SprintTaskModel) TableName() string {
	return "sprint_tasks"
}
