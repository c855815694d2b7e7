package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/pubsub"
	"github.com/atdaga/skrm-server/pkg/sequence"
	"github.com/atdaga/skrm-server/tracker-service/internal/audit"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

// TaskService defines task business logic.
type TaskService interface {
	CreateTask(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.CreateTaskRequest) (*domain.Task, error)
	GetTask(ctx context.Context, actor Actor, orgID uuid.UUID, taskID string) (*domain.Task, error)
	ListTasks(ctx context.Context, actor Actor, orgID uuid.UUID, req domain.ListTasksRequest) (*domain.ListResponse[domain.Task], error)
	UpdateTask(ctx context.Context, actor Actor, orgID uuid.UUID, taskID string, req *domain.UpdateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, actor Actor, orgID uuid.UUID, taskID string, hard bool) error
}

type taskServiceImpl struct {
	repo      repository.TaskRepository
	projects  repository.ProjectRepository
	allocator sequence.Allocator
	access    *AccessChecker
	events    eventEmitter
}

func NewTaskService(repo repository.TaskRepository, projects repository.ProjectRepository, allocator sequence.Allocator, access *AccessChecker, publisher pubsub.Publisher) TaskService {
	return &taskServiceImpl{
		repo:      repo,
		projects:  projects,
		allocator: allocator,
		access:    access,
		events:    newEventEmitter(publisher),
	}
}

// CreateTask allocates the organization's next task number and stores the
// task under the identifier encoded from it.
func (s *taskServiceImpl) CreateTask(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.CreateTaskRequest) (*domain.Task, error) {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}
	projectID := req.ProjectID
	if projectID != nil && *projectID == "" {
		projectID = nil
	}
	if err := s.checkProject(ctx, id, projectID); err != nil {
		return nil, err
	}

	taskID, number, err := nextScopedID(ctx, s.allocator, orgID, taskCodec)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.TaskBacklog
	}
	task := &domain.Task{
		ID:             taskID,
		Number:         number,
		OrgID:          id,
		ProjectID:      projectID,
		Summary:        req.Summary,
		Description:    req.Description,
		Status:         status,
		Guestimate:     req.Guestimate,
		ReviewResult:   req.ReviewResult,
		Meta:           req.Meta,
		CreatedBy:      actor.UserID,
		LastModifiedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskExists) {
			l := log.Ctx(ctx)
			l.Error().Str(log.FieldOrgID, id).Str(log.FieldEntityID, taskID).Int64(log.FieldSequence, number).
				Msg("allocated task id already exists")
			return nil, ErrIdentifierConflict
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateTask, actor.UserID, id, task.ID, "task created")
	s.events.emit(ctx, id, pubsub.EntityTask, pubsub.ActionCreated, task)
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, actor Actor, orgID uuid.UUID, taskID string) (*domain.Task, error) {
	if err := validateScopedID(orgID, taskID, taskCodec, ErrInvalidTaskID); err != nil {
		return nil, err
	}
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	return s.get(ctx, orgID.String(), taskID)
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, actor Actor, orgID uuid.UUID, req domain.ListTasksRequest) (*domain.ListResponse[domain.Task], error) {
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	req.Normalize()
	tasks, total, err := s.repo.List(ctx, orgID.String(), req)
	if err != nil {
		return nil, err
	}
	return domain.NewListResponse(tasks, total, req.ListRequest), nil
}

// UpdateTask applies the non-nil fields of req. An empty project id
// detaches the task from its project.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, actor Actor, orgID uuid.UUID, taskID string, req *domain.UpdateTaskRequest) (*domain.Task, error) {
	if err := validateScopedID(orgID, taskID, taskCodec, ErrInvalidTaskID); err != nil {
		return nil, err
	}
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}

	task, err := s.get(ctx, id, taskID)
	if err != nil {
		return nil, err
	}

	if req.ProjectID != nil {
		if *req.ProjectID == "" {
			task.ProjectID = nil
		} else {
			if err := s.checkProject(ctx, id, req.ProjectID); err != nil {
				return nil, err
			}
			task.ProjectID = req.ProjectID
		}
	}
	if req.Summary != nil {
		task.Summary = *req.Summary
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Guestimate != nil {
		task.Guestimate = req.Guestimate
	}
	if req.ReviewResult != nil {
		task.ReviewResult = req.ReviewResult
	}
	if req.Meta != nil {
		task.Meta = req.Meta
	}
	task.LastModifiedBy = actor.UserID

	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	updated, err := s.get(ctx, id, taskID)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.ActionUpdateTask, actor.UserID, id, taskID, "task updated")
	s.events.emit(ctx, id, pubsub.EntityTask, pubsub.ActionUpdated, updated)
	return updated, nil
}

// DeleteTask removes a task. Its number stays consumed.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor Actor, orgID uuid.UUID, taskID string, hard bool) error {
	if err := validateScopedID(orgID, taskID, taskCodec, ErrInvalidTaskID); err != nil {
		return err
	}
	id := orgID.String()
	if err := requireDeleteRole(ctx, s.access, id, actor, hard); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, taskID, hard); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionDeleteTask, actor.UserID, id, taskID, deleteDetail(hard), "task deleted")
	s.events.emit(ctx, id, pubsub.EntityTask, pubsub.ActionDeleted, deletedPayload{ID: taskID, Hard: hard})
	return nil
}

func (s *taskServiceImpl) checkProject(ctx context.Context, orgID string, projectID *string) error {
	if projectID == nil {
		return nil
	}
	if _, err := s.projects.GetByID(ctx, orgID, *projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	return nil
}

func (s *taskServiceImpl) get(ctx context.Context, orgID, taskID string) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, orgID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}
