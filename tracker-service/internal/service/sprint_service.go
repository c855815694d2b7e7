package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/pkg/pubsub"
	"github.com/atdaga/skrm-server/tracker-service/internal/audit"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

// SprintService defines sprint business logic.
type SprintService interface {
	CreateSprint(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.CreateSprintRequest) (*domain.Sprint, error)
	GetSprint(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID string) (*domain.Sprint, error)
	ListSprints(ctx context.Context, actor Actor, orgID uuid.UUID, req domain.ListRequest) (*domain.ListResponse[domain.Sprint], error)
	UpdateSprint(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID string, req *domain.UpdateSprintRequest) (*domain.Sprint, error)
	DeleteSprint(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID string, hard bool) error
	AddTask(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID, taskID string) error
	RemoveTask(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID, taskID string) error
	ListTasks(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID string) ([]domain.Task, error)
}

type sprintServiceImpl struct {
	repo   repository.SprintRepository
	tasks  repository.TaskRepository
	access *AccessChecker
	events eventEmitter
}

func NewSprintService(repo repository.SprintRepository, tasks repository.TaskRepository, access *AccessChecker, publisher pubsub.Publisher) SprintService {
	return &sprintServiceImpl{repo: repo, tasks: tasks, access: access, events: newEventEmitter(publisher)}
}

// CreateSprint stores a sprint under a UUIDv7 id.
func (s *sprintServiceImpl) CreateSprint(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.CreateSprintRequest) (*domain.Sprint, error) {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}

	sprintID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = domain.SprintBacklog
	}

	sprint := &domain.Sprint{
		ID:             sprintID.String(),
		OrgID:          id,
		Title:          req.Title,
		Status:         status,
		EndTs:          req.EndTs,
		Meta:           req.Meta,
		CreatedBy:      actor.UserID,
		LastModifiedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, sprint); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateSprint, actor.UserID, id, sprint.ID, "sprint created")
	s.events.emit(ctx, id, pubsub.EntitySprint, pubsub.ActionCreated, sprint)
	return sprint, nil
}

func (s *sprintServiceImpl) GetSprint(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID string) (*domain.Sprint, error) {
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	return s.get(ctx, orgID.String(), sprintID)
}

func (s *sprintServiceImpl) ListSprints(ctx context.Context, actor Actor, orgID uuid.UUID, req domain.ListRequest) (*domain.ListResponse[domain.Sprint], error) {
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	req.Normalize()
	sprints, total, err := s.repo.List(ctx, orgID.String(), req)
	if err != nil {
		return nil, err
	}
	return domain.NewListResponse(sprints, total, req), nil
}

func (s *sprintServiceImpl) UpdateSprint(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID string, req *domain.UpdateSprintRequest) (*domain.Sprint, error) {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}

	sprint, err := s.get(ctx, id, sprintID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		sprint.Title = *req.Title
	}
	if req.Status != nil {
		sprint.Status = *req.Status
	}
	if req.EndTs != nil {
		sprint.EndTs = req.EndTs
	}
	if req.Meta != nil {
		sprint.Meta = req.Meta
	}
	sprint.LastModifiedBy = actor.UserID

	if err := s.repo.Update(ctx, sprint); err != nil {
		if errors.Is(err, repository.ErrSprintNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, err
	}

	updated, err := s.get(ctx, id, sprintID)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.ActionUpdateSprint, actor.UserID, id, sprintID, "sprint updated")
	s.events.emit(ctx, id, pubsub.EntitySprint, pubsub.ActionUpdated, updated)
	return updated, nil
}

func (s *sprintServiceImpl) DeleteSprint(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID string, hard bool) error {
	id := orgID.String()
	if err := requireDeleteRole(ctx, s.access, id, actor, hard); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, sprintID, hard); err != nil {
		if errors.Is(err, repository.ErrSprintNotFound) {
			return ErrSprintNotFound
		}
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionDeleteSprint, actor.UserID, id, sprintID, deleteDetail(hard), "sprint deleted")
	s.events.emit(ctx, id, pubsub.EntitySprint, pubsub.ActionDeleted, deletedPayload{ID: sprintID, Hard: hard})
	return nil
}

// AddTask links a task to a sprint. Both must belong to the organization.
func (s *sprintServiceImpl) AddTask(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID, taskID string) error {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return err
	}
	if err := validateScopedID(orgID, taskID, taskCodec, ErrInvalidTaskID); err != nil {
		return err
	}
	if _, err := s.get(ctx, id, sprintID); err != nil {
		return err
	}
	if _, err := s.tasks.GetByID(ctx, id, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if err := s.repo.AddTask(ctx, id, sprintID, taskID, actor.UserID); err != nil {
		return err
	}
	audit.LogWithDetail(ctx, audit.ActionLinkSprintTask, actor.UserID, id, sprintID, taskID, "task linked to sprint")
	return nil
}

func (s *sprintServiceImpl) RemoveTask(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID, taskID string) error {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return err
	}
	if err := validateScopedID(orgID, taskID, taskCodec, ErrInvalidTaskID); err != nil {
		return err
	}

	if err := s.repo.RemoveTask(ctx, id, sprintID, taskID); err != nil {
		if errors.Is(err, repository.ErrSprintTaskNotFound) {
			return ErrSprintTaskNotFound
		}
		return err
	}
	audit.LogWithDetail(ctx, audit.ActionUnlinkSprintTask, actor.UserID, id, sprintID, taskID, "task unlinked from sprint")
	return nil
}

func (s *sprintServiceImpl) ListTasks(ctx context.Context, actor Actor, orgID uuid.UUID, sprintID string) ([]domain.Task, error) {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}
	if _, err := s.get(ctx, id, sprintID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, id, sprintID)
}

func (s *sprintServiceImpl) get(ctx context.Context, orgID, sprintID string) (*domain.Sprint, error) {
	sprint, err := s.repo.GetByID(ctx, orgID, sprintID)
	if err != nil {
		if errors.Is(err, repository.ErrSprintNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, err
	}
	return sprint, nil
}
