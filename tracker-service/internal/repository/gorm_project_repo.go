package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

// GormProjectRepository implements ProjectRepository using GORM.
type GormProjectRepository struct {
	db *gorm.DB
}

func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	l := log.Ctx(ctx)

	model := domain.ProjectToModel(project)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrProjectExists
		}
		l.Error().Err(err).Msg("failed to create project in db")
		return err
	}

	*project = *model.ToDomain()
	l.Debug().Str(log.FieldEntityID, project.ID).Msg("project created in db")
	return nil
}

func (r *GormProjectRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Project, error) {
	var model domain.ProjectModel
	result := r.db.WithContext(ctx).First(&model, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldEntityID, id).Msg("failed to get project by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

func (r *GormProjectRepository) List(ctx context.Context, orgID string, req domain.ListRequest) ([]domain.Project, int, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).Model(&domain.ProjectModel{}).Where("org_id = ?", orgID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count projects")
		return nil, 0, err
	}

	var models []domain.ProjectModel
	if err := query.Order("name ASC").Offset(req.Offset()).Limit(req.PageSize).Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list projects from db")
		return nil, 0, err
	}

	projects := make([]domain.Project, len(models))
	for i := range models {
		projects[i] = *models[i].ToDomain()
	}
	return projects, int(total), nil
}

func (r *GormProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	model := domain.ProjectToModel(project)
	result := r.db.WithContext(ctx).Model(&domain.ProjectModel{}).
		Where("org_id = ? AND id = ?", project.OrgID, project.ID).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"description":      model.Description,
			"meta":             model.Meta,
			"last_modified_by": model.LastModifiedBy,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrProjectExists
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldEntityID, project.ID).Msg("failed to update project")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes a project. Tasks that referenced it are detached.
func (r *GormProjectRepository) Delete(ctx context.Context, orgID, id string, hard bool) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx
		if hard {
			del = tx.Unscoped()
		}
		result := del.Delete(&domain.ProjectModel{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		return tx.Model(&domain.TaskModel{}).
			Where("org_id = ? AND project_id = ?", orgID, id).
			Update("project_id", nil).Error
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldEntityID, id).Bool("hard", hard).Msg("failed to delete project")
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *GormProjectRepository) NameTaken(ctx context.Context, orgID, name, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Unscoped().Model(&domain.ProjectModel{}).
		Where("org_id = ? AND name = ?", orgID, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *GormProjectRepository) Count(ctx context.Context, orgID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ProjectModel{}).Where("org_id = ?", orgID).Count(&count).Error
	return count, err
}
