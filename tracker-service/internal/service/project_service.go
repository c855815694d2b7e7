package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/pkg/pubsub"
	"github.com/atdaga/skrm-server/tracker-service/internal/audit"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

// ProjectService defines project business logic.
type ProjectService interface {
	CreateProject(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.CreateProjectRequest) (*domain.Project, error)
	GetProject(ctx context.Context, actor Actor, orgID uuid.UUID, projectID string) (*domain.Project, error)
	ListProjects(ctx context.Context, actor Actor, orgID uuid.UUID, req domain.ListRequest) (*domain.ListResponse[domain.Project], error)
	UpdateProject(ctx context.Context, actor Actor, orgID uuid.UUID, projectID string, req *domain.UpdateProjectRequest) (*domain.Project, error)
	DeleteProject(ctx context.Context, actor Actor, orgID uuid.UUID, projectID string, hard bool) error
}

type projectServiceImpl struct {
	repo   repository.ProjectRepository
	access *AccessChecker
	events eventEmitter
}

func NewProjectService(repo repository.ProjectRepository, access *AccessChecker, publisher pubsub.Publisher) ProjectService {
	return &projectServiceImpl{repo: repo, access: access, events: newEventEmitter(publisher)}
}

func (s *projectServiceImpl) CreateProject(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.CreateProjectRequest) (*domain.Project, error) {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, id, name, ""); err != nil {
		return nil, err
	}

	project := &domain.Project{
		ID:             uuid.New().String(),
		OrgID:          id,
		Name:           name,
		Description:    req.Description,
		Meta:           req.Meta,
		CreatedBy:      actor.UserID,
		LastModifiedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectExists) {
			return nil, ErrProjectExists
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateProject, actor.UserID, id, project.ID, "project created")
	s.events.emit(ctx, id, pubsub.EntityProject, pubsub.ActionCreated, project)
	return project, nil
}

func (s *projectServiceImpl) GetProject(ctx context.Context, actor Actor, orgID uuid.UUID, projectID string) (*domain.Project, error) {
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	return s.get(ctx, orgID.String(), projectID)
}

func (s *projectServiceImpl) ListProjects(ctx context.Context, actor Actor, orgID uuid.UUID, req domain.ListRequest) (*domain.ListResponse[domain.Project], error) {
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	req.Normalize()
	projects, total, err := s.repo.List(ctx, orgID.String(), req)
	if err != nil {
		return nil, err
	}
	return domain.NewListResponse(projects, total, req), nil
}

func (s *projectServiceImpl) UpdateProject(ctx context.Context, actor Actor, orgID uuid.UUID, projectID string, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}

	project, err := s.get(ctx, id, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != project.Name {
			if err := s.checkName(ctx, id, name, project.ID); err != nil {
				return nil, err
			}
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Meta != nil {
		project.Meta = req.Meta
	}
	project.LastModifiedBy = actor.UserID

	if err := s.repo.Update(ctx, project); err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectExists):
			return nil, ErrProjectExists
		case errors.Is(err, repository.ErrProjectNotFound):
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	updated, err := s.get(ctx, id, projectID)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.ActionUpdateProject, actor.UserID, id, projectID, "project updated")
	s.events.emit(ctx, id, pubsub.EntityProject, pubsub.ActionUpdated, updated)
	return updated, nil
}

func (s *projectServiceImpl) DeleteProject(ctx context.Context, actor Actor, orgID uuid.UUID, projectID string, hard bool) error {
	id := orgID.String()
	if err := requireDeleteRole(ctx, s.access, id, actor, hard); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, projectID, hard); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionDeleteProject, actor.UserID, id, projectID, deleteDetail(hard), "project deleted")
	s.events.emit(ctx, id, pubsub.EntityProject, pubsub.ActionDeleted, deletedPayload{ID: projectID, Hard: hard})
	return nil
}

func (s *projectServiceImpl) checkName(ctx context.Context, orgID, name, excludeID string) error {
	taken, err := s.repo.NameTaken(ctx, orgID, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrProjectExists
	}
	return nil
}

func (s *projectServiceImpl) get(ctx context.Context, orgID, projectID string) (*domain.Project, error) {
	project, err := s.repo.GetByID(ctx, orgID, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// deletedPayload is the event body for deletions.
type deletedPayload struct {
	ID   string `json:"id"`
	Hard bool   `json:"hard"`
}

func deleteDetail(hard bool) string {
	if hard {
		return "hard"
	}
	return "soft"
}

// requireDeleteRole lets any member soft-delete; hard deletes need owner
// or admin.
func requireDeleteRole(ctx context.Context, access *AccessChecker, orgID string, actor Actor, hard bool) error {
	var err error
	if hard {
		_, err = access.RequireManager(ctx, orgID, actor)
	} else {
		_, err = access.RequireMember(ctx, orgID, actor)
	}
	return err
}
