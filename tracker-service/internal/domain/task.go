package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/database"
	"github.com/atdaga/skrm-server/pkg/scopedid"
)

type TaskStatus string

const (
	TaskBacklog    TaskStatus = "Backlog"
	TaskOnDeck     TaskStatus = "OnDeck"
	TaskInProgress TaskStatus = "InProgress"
	TaskCompleted  TaskStatus = "Completed"
	TaskDeployed   TaskStatus = "Deployed"
	TaskReview     TaskStatus = "Review"
	TaskDone       TaskStatus = "Done"
	TaskArchived   TaskStatus = "Archived"
)

// TaskModel is the GORM model for the tasks table. ID is a scoped
// identifier in the organization's namespace; ordering by ID inside one
// organization is ordering by task number.
type TaskModel struct {
	ID           string           `gorm:"type:varchar(36);primaryKey"`
	OrgID        string           `gorm:"type:varchar(36);index;not null"`
	ProjectID    *string          `gorm:"type:varchar(36);index"`
	Summary      string           `gorm:"type:text;not null"`
	Description  string           `gorm:"type:text"`
	Status       string           `gorm:"type:varchar(20);not null;default:'Backlog'"`
	Guestimate   *float64
	ReviewResult *string          `gorm:"type:varchar(20)"`
	Meta         database.JSONMap `gorm:"type:text"`
	Audit
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (TaskModel) TableName() string {
	return "tasks"
}

type Task struct {
	ID             string                 `json:"id"`
	Number         int64                  `json:"number"`
	OrgID          string                 `json:"org_id"`
	ProjectID      *string                `json:"project_id,omitempty"`
	Summary        string                 `json:"summary"`
	Description    string                 `json:"description,omitempty"`
	Status         TaskStatus             `json:"status"`
	Guestimate     *float64               `json:"guestimate,omitempty"`
	ReviewResult   *ReviewResult          `json:"review_result,omitempty"`
	Meta           map[string]interface{} `json:"meta"`
	CreatedBy      string                 `json:"created_by"`
	LastModifiedBy string                 `json:"last_modified_by"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// ToDomain converts the row and decodes its task number. Rows whose ID
// does not decode report number 0.
func (m *TaskModel) ToDomain() *Task {
	var number int64
	if id, err := uuid.Parse(m.ID); err == nil {
		number, _ = scopedid.Tasks.Decode(id)
	}
	var rr *ReviewResult
	if m.ReviewResult != nil {
		v := ReviewResult(*m.ReviewResult)
		rr = &v
	}
	return &Task{
		ID:             m.ID,
		Number:         number,
		OrgID:          m.OrgID,
		ProjectID:      m.ProjectID,
		Summary:        m.Summary,
		Description:    m.Description,
		Status:         TaskStatus(m.Status),
		Guestimate:     m.Guestimate,
		ReviewResult:   rr,
		Meta:           metaOrEmpty(m.Meta),
		CreatedBy:      m.CreatedBy,
		LastModifiedBy: m.LastModifiedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func TaskToModel(t *Task) *TaskModel {
	var rr *string
	if t.ReviewResult != nil {
		v := string(*t.ReviewResult)
		rr = &v
	}
	return &TaskModel{
		ID:           t.ID,
		OrgID:        t.OrgID,
		ProjectID:    t.ProjectID,
		Summary:      t.Summary,
		Description:  t.Description,
		Status:       string(t.Status),
		Guestimate:   t.Guestimate,
		ReviewResult: rr,
		Meta:         database.JSONMap(t.Meta),
		Audit:        Audit{CreatedBy: t.CreatedBy, LastModifiedBy: t.LastModifiedBy},
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type CreateTaskRequest struct {
	Summary      string                 `json:"summary" binding:"required,min=1"`
	Description  string                 `json:"description"`
	ProjectID    *string                `json:"project_id" binding:"omitempty,uuid"`
	Status       TaskStatus             `json:"status" binding:"omitempty,oneof=Backlog OnDeck InProgress Completed Deployed Review Done Archived"`
	Guestimate   *float64               `json:"guestimate" binding:"omitempty,gt=0"`
	ReviewResult *ReviewResult          `json:"review_result" binding:"omitempty,oneof=Queued Reviewing Passed Failed Skipped"`
	Meta         map[string]interface{} `json:"meta"`
}

type UpdateTaskRequest struct {
	Summary      *string                `json:"summary" binding:"omitempty,min=1"`
	Description  *string                `json:"description"`
	ProjectID    *string                `json:"project_id" binding:"omitempty,uuid"`
	Status       *TaskStatus            `json:"status" binding:"omitempty,oneof=Backlog OnDeck InProgress Completed Deployed Review Done Archived"`
	Guestimate   *float64               `json:"guestimate" binding:"omitempty,gt=0"`
	ReviewResult *ReviewResult          `json:"review_result" binding:"omitempty,oneof=Queued Reviewing Passed Failed Skipped"`
	Meta         map[string]interface{} `json:"meta"`
}

// ListTasksRequest filters a task listing.
type ListTasksRequest struct {
	ListRequest
	Status    string `form:"status"`
	ProjectID string `form:"project_id"`
}
