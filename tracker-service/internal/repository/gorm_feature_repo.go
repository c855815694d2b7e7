package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

// GormFeatureRepository implements FeatureRepository using GORM.
type GormFeatureRepository struct {
	db *gorm.DB
}

func NewGormFeatureRepository(db *gorm.DB) *GormFeatureRepository {
	return &GormFeatureRepository{db: db}
}

func (r *GormFeatureRepository) Create(ctx context.Context, feature *domain.Feature) error {
	l := log.Ctx(ctx)

	model := domain.FeatureToModel(feature)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrFeatureExists
		}
		l.Error().Err(err).Str(log.FieldEntityID, feature.ID).Msg("failed to create feature in db")
		return err
	}

	*feature = *model.ToDomain()
	l.Debug().Str(log.FieldEntityID, feature.ID).Int64(log.FieldSequence, feature.Number).Msg("feature created in db")
	return nil
}

func (r *GormFeatureRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Feature, error) {
	var model domain.FeatureModel
	result := r.db.WithContext(ctx).First(&model, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrFeatureNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldEntityID, id).Msg("failed to get feature by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List returns features in number order.
func (r *GormFeatureRepository) List(ctx context.Context, orgID string, req domain.ListRequest) ([]domain.Feature, int, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).Model(&domain.FeatureModel{}).Where("org_id = ?", orgID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count features")
		return nil, 0, err
	}

	var models []domain.FeatureModel
	if err := query.Order("id ASC").Offset(req.Offset()).Limit(req.PageSize).Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list features from db")
		return nil, 0, err
	}

	features := make([]domain.Feature, len(models))
	for i := range models {
		features[i] = *models[i].ToDomain()
	}
	return features, int(total), nil
}

func (r *GormFeatureRepository) Update(ctx context.Context, feature *domain.Feature) error {
	model := domain.FeatureToModel(feature)
	result := r.db.WithContext(ctx).Model(&domain.FeatureModel{}).
		Where("org_id = ? AND id = ?", feature.OrgID, feature.ID).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"parent_id":        model.ParentID,
			"feature_type":     model.FeatureType,
			"summary":          model.Summary,
			"notes":            model.Notes,
			"guestimate":       model.Guestimate,
			"review_result":    model.ReviewResult,
			"meta":             model.Meta,
			"last_modified_by": model.LastModifiedBy,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrFeatureExists
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldEntityID, feature.ID).Msg("failed to update feature")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFeatureNotFound
	}
	return nil
}

// Delete removes a feature and detaches its children.
func (r *GormFeatureRepository) Delete(ctx context.Context, orgID, id string, hard bool) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx
		if hard {
			del = tx.Unscoped()
		}
		result := del.Delete(&domain.FeatureModel{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		return tx.Model(&domain.FeatureModel{}).
			Where("org_id = ? AND parent_id = ?", orgID, id).
			Update("parent_id", nil).Error
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldEntityID, id).Bool("hard", hard).Msg("failed to delete feature")
		return err
	}
	if affected == 0 {
		return ErrFeatureNotFound
	}
	return nil
}

func (r *GormFeatureRepository) NameTaken(ctx context.Context, orgID, name, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Unscoped().Model(&domain.FeatureModel{}).
		Where("org_id = ? AND name = ?", orgID, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *GormFeatureRepository) Count(ctx context.Context, orgID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FeatureModel{}).Where("org_id = ?", orgID).Count(&count).Error
	return count, err
}
