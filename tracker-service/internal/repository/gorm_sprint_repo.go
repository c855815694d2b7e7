package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

// GormSprintRepository implements SprintRepository using GORM.
type GormSprintRepository struct {
	db *gorm.DB
}

func NewGormSprintRepository(db *gorm.DB) *GormSprintRepository {
	return &GormSprintRepository{db: db}
}

func (r *GormSprintRepository) Create(ctx context.Context, sprint *domain.Sprint) error {
	l := log.Ctx(ctx)

	model := domain.SprintToModel(sprint)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Msg("failed to create sprint in db")
		return err
	}

	*sprint = *model.ToDomain()
	l.Debug().Str(log.FieldEntityID, sprint.ID).Msg("sprint created in db")
	return nil
}

func (r *GormSprintRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Sprint, error) {
	var model domain.SprintModel
	result := r.db.WithContext(ctx).First(&model, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSprintNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldEntityID, id).Msg("failed to get sprint by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List returns sprints newest first; UUIDv7 ids sort by creation time.
func (r *GormSprintRepository) List(ctx context.Context, orgID string, req domain.ListRequest) ([]domain.Sprint, int, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).Model(&domain.SprintModel{}).Where("org_id = ?", orgID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count sprints")
		return nil, 0, err
	}

	var models []domain.SprintModel
	if err := query.Order("id DESC").Offset(req.Offset()).Limit(req.PageSize).Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list sprints from db")
		return nil, 0, err
	}

	sprints := make([]domain.Sprint, len(models))
	for i := range models {
		sprints[i] = *models[i].ToDomain()
	}
	return sprints, int(total), nil
}

func (r *GormSprintRepository) Update(ctx context.Context, sprint *domain.Sprint) error {
	model := domain.SprintToModel(sprint)
	result := r.db.WithContext(ctx).Model(&domain.SprintModel{}).
		Where("org_id = ? AND id = ?", sprint.OrgID, sprint.ID).
		Updates(map[string]interface{}{
			"title":            model.Title,
			"status":           model.Status,
			"end_ts":           model.EndTs,
			"meta":             model.Meta,
			"last_modified_by": model.LastModifiedBy,
		})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldEntityID, sprint.ID).Msg("failed to update sprint")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSprintNotFound
	}
	return nil
}

// Delete removes a sprint. A hard delete also drops its task links.
func (r *GormSprintRepository) Delete(ctx context.Context, orgID, id string, hard bool) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx
		if hard {
			del = tx.Unscoped()
		}
		result := del.Delete(&domain.SprintModel{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 || !hard {
			return nil
		}
		return tx.Delete(&domain.SprintTaskModel{}, "sprint_id = ?", id).Error
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldEntityID, id).Bool("hard", hard).Msg("failed to delete sprint")
		return err
	}
	if affected == 0 {
		return ErrSprintNotFound
	}
	return nil
}

func (r *GormSprintRepository) Count(ctx context.Context, orgID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.SprintModel{}).Where("org_id = ?", orgID).Count(&count).Error
	return count, err
}

// AddTask links a task to a sprint. Linking twice is a no-op.
func (r *GormSprintRepository) AddTask(ctx context.Context, orgID, sprintID, taskID, userID string) error {
	link := &domain.SprintTaskModel{SprintID: sprintID, TaskID: taskID, OrgID: orgID, CreatedBy: userID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str("sprint_id", sprintID).Str("task_id", taskID).Msg("failed to link task to sprint")
		return err
	}
	return nil
}

func (r *GormSprintRepository) RemoveTask(ctx context.Context, orgID, sprintID, taskID string) error {
	result := r.db.WithContext(ctx).Delete(&domain.SprintTaskModel{}, "org_id = ? AND sprint_id = ? AND task_id = ?", orgID, sprintID, taskID)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str("sprint_id", sprintID).Str("task_id", taskID).Msg("failed to unlink task from sprint")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSprintTaskNotFound
	}
	return nil
}

// ListTasks returns the live tasks linked to a sprint in number order.
func (r *GormSprintRepository) ListTasks(ctx context.Context, orgID, sprintID string) ([]domain.Task, error) {
	var models []domain.TaskModel
	err := r.db.WithContext(ctx).
		Joins("JOIN sprint_tasks st ON st.task_id = tasks.id").
		Where("st.sprint_id = ? AND tasks.org_id = ?", sprintID, orgID).
		Order("tasks.id ASC").
		Find(&models).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str("sprint_id", sprintID).Msg("failed to list sprint tasks")
		return nil, err
	}
	tasks := make([]domain.Task, len(models))
	for i := range models {
		tasks[i] = *models[i].ToDomain()
	}
	return tasks, nil
}
