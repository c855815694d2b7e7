package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/database"
	"github.com/atdaga/skrm-server/pkg/scopedid"
)

type FeatureType string

const (
	FeatureProduct     FeatureType = "Product"
	FeatureEngineering FeatureType = "Engineering"
)

// FeatureModel is the GORM model for the features table. Like tasks, IDs
// are scoped identifiers with their own sequence.
type FeatureModel struct {
	ID           string           `gorm:"type:varchar(36);primaryKey"`
	OrgID        string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_features_org_name"`
	Name         string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_features_org_name"`
	ParentID     *string          `gorm:"type:varchar(36);index"`
	FeatureType  string           `gorm:"type:varchar(20);not null"`
	Summary      string           `gorm:"type:text"`
	Notes        string           `gorm:"type:text"`
	Guestimate   *float64
	ReviewResult *string          `gorm:"type:varchar(20)"`
	Meta         database.JSONMap `gorm:"type:text"`
	Audit
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (FeatureModel) TableName() string {
	return "features"
}

type Feature struct {
	ID             string                 `json:"id"`
	Number         int64                  `json:"number"`
	OrgID          string                 `json:"org_id"`
	Name           string                 `json:"name"`
	ParentID       *string                `json:"parent_id,omitempty"`
	FeatureType    FeatureType            `json:"feature_type"`
	Summary        string                 `json:"summary,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
	Guestimate     *float64               `json:"guestimate,omitempty"`
	ReviewResult   *ReviewResult          `json:"review_result,omitempty"`
	Meta           map[string]interface{} `json:"meta"`
	CreatedBy      string                 `json:"created_by"`
	LastModifiedBy string                 `json:"last_modified_by"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func (m *FeatureModel) ToDomain() *Feature {
	var number int64
	if id, err := uuid.Parse(m.ID); err == nil {
		number, _ = scopedid.Features.Decode(id)
	}
	var rr *ReviewResult
	if m.ReviewResult != nil {
		v := ReviewResult(*m.ReviewResult)
		rr = &v
	}
	return &Feature{
		ID:             m.ID,
		Number:         number,
		OrgID:          m.OrgID,
		Name:           m.Name,
		ParentID:       m.ParentID,
		FeatureType:    FeatureType(m.FeatureType),
		Summary:        m.Summary,
		Notes:          m.Notes,
		Guestimate:     m.Guestimate,
		ReviewResult:   rr,
		Meta:           metaOrEmpty(m.Meta),
		CreatedBy:      m.CreatedBy,
		LastModifiedBy: m.LastModifiedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func FeatureToModel(f *Feature) *FeatureModel {
	var rr *string
	if f.ReviewResult != nil {
		v := string(*f.ReviewResult)
		rr = &v
	}
	return &FeatureModel{
		ID:           f.ID,
		OrgID:        f.OrgID,
		Name:         f.Name,
		ParentID:     f.ParentID,
		FeatureType:  string(f.FeatureType),
		Summary:      f.Summary,
		Notes:        f.Notes,
		Guestimate:   f.Guestimate,
		ReviewResult: rr,
		Meta:         database.JSONMap(f.Meta),
		Audit:        Audit{CreatedBy: f.CreatedBy, LastModifiedBy: f.LastModifiedBy},
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

type CreateFeatureRequest struct {
	Name         string                 `json:"name" binding:"required,min=1,max=255"`
	ParentID     *string                `json:"parent_id" binding:"omitempty,uuid"`
	FeatureType  FeatureType            `json:"feature_type" binding:"required,oneof=Product Engineering"`
	Summary      string                 `json:"summary"`
	Notes        string                 `json:"notes"`
	Guestimate   *float64               `json:"guestimate" binding:"omitempty,gt=0"`
	ReviewResult *ReviewResult          `json:"review_result" binding:"omitempty,oneof=Queued Reviewing Passed Failed Skipped"`
	Meta         map[string]interface{} `json:"meta"`
}

type UpdateFeatureRequest struct {
	Name         *string                `json:"name" binding:"omitempty,min=1,max=255"`
	ParentID     *string                `json:"parent_id" binding:"omitempty,uuid"`
	FeatureType  *FeatureType           `json:"feature_type" binding:"omitempty,oneof=Product Engineering"`
	Summary      *string                `json:"summary"`
	Notes        *string                `json:"notes"`
	Guestimate   *float64               `json:"guestimate" binding:"omitempty,gt=0"`
	ReviewResult *ReviewResult          `json:"review_result" binding:"omitempty,oneof=Queued Reviewing Passed Failed Skipped"`
	Meta         map[string]interface{} `json:"meta"`
}

// FeatureDoc is the markdown document attached to a feature.
type FeatureDoc struct {
	FeatureID string `json:"feature_id"`
	Key       string `json:"key"`
	Content   string `json:"content"`
}

type PutFeatureDocRequest struct {
	Content string `json:"content" binding:"required"`
}
