package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

// GormTaskRepository implements TaskRepository using GORM.
type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a task whose ID the caller has already encoded.
func (r *GormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	l := log.Ctx(ctx)

	model := domain.TaskToModel(task)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTaskExists
		}
		l.Error().Err(err).Str(log.FieldEntityID, task.ID).Msg("failed to create task in db")
		return err
	}

	*task = *model.ToDomain()
	l.Debug().Str(log.FieldEntityID, task.ID).Int64(log.FieldSequence, task.Number).Msg("task created in db")
	return nil
}

func (r *GormTaskRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Task, error) {
	var model domain.TaskModel
	result := r.db.WithContext(ctx).First(&model, "org_id = ? AND id = ?", orgID, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldEntityID, id).Msg("failed to get task by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List returns tasks in number order.
func (r *GormTaskRepository) List(ctx context.Context, orgID string, req domain.ListTasksRequest) ([]domain.Task, int, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).Model(&domain.TaskModel{}).Where("org_id = ?", orgID)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.ProjectID != "" {
		query = query.Where("project_id = ?", req.ProjectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count tasks")
		return nil, 0, err
	}

	var models []domain.TaskModel
	if err := query.Order("id ASC").Offset(req.Offset()).Limit(req.PageSize).Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list tasks from db")
		return nil, 0, err
	}

	tasks := make([]domain.Task, len(models))
	for i := range models {
		tasks[i] = *models[i].ToDomain()
	}
	return tasks, int(total), nil
}

func (r *GormTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	model := domain.TaskToModel(task)
	result := r.db.WithContext(ctx).Model(&domain.TaskModel{}).
		Where("org_id = ? AND id = ?", task.OrgID, task.ID).
		Updates(map[string]interface{}{
			"project_id":       model.ProjectID,
			"summary":          model.Summary,
			"description":      model.Description,
			"status":           model.Status,
			"guestimate":       model.Guestimate,
			"review_result":    model.ReviewResult,
			"meta":             model.Meta,
			"last_modified_by": model.LastModifiedBy,
		})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldEntityID, task.ID).Msg("failed to update task")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task. A hard delete also drops its sprint links. The
// task's number is never handed out again either way.
func (r *GormTaskRepository) Delete(ctx context.Context, orgID, id string, hard bool) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx
		if hard {
			del = tx.Unscoped()
		}
		result := del.Delete(&domain.TaskModel{}, "org_id = ? AND id = ?", orgID, id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 || !hard {
			return nil
		}
		return tx.Delete(&domain.SprintTaskModel{}, "task_id = ?", id).Error
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldEntityID, id).Bool("hard", hard).Msg("failed to delete task")
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *GormTaskRepository) Count(ctx context.Context, orgID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.TaskModel{}).Where("org_id = ?", orgID).Count(&count).Error
	return count, err
}
