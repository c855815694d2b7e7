package repository

import (
	"context"
	"errors"

	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrganizationExists   = errors.New("organization name or alias already exists")
	ErrPrefixTaken          = errors.New("organization prefix already taken")
	ErrMemberNotFound       = errors.New("member not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectExists        = errors.New("project name already exists")
	ErrSprintNotFound       = errors.New("sprint not found")
	ErrSprintTaskNotFound   = errors.New("task is not in sprint")
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskExists           = errors.New("task id already exists")
	ErrFeatureNotFound      = errors.New("feature not found")
	ErrFeatureExists        = errors.New("feature name already exists")
)

// OrganizationRepository persists organizations.
type OrganizationRepository interface {
	// Create inserts the organization and its first member atomically.
	Create(ctx context.Context, org *domain.Organization, owner *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	ListByUser(ctx context.Context, userID string, req domain.ListRequest) ([]domain.OrganizationWithRole, int, error)
	Update(ctx context.Context, org *domain.Organization) error
	Delete(ctx context.Context, id string) error
	// PrefixExists includes deleted organizations; a prefix is never reused.
	PrefixExists(ctx context.Context, prefix string) (bool, error)
	NameOrAliasTaken(ctx context.Context, name, alias, excludeID string) (bool, error)
}

// MemberRepository persists organization membership.
type MemberRepository interface {
	Get(ctx context.Context, orgID, userID string) (*domain.Member, error)
	List(ctx context.Context, orgID string) ([]domain.Member, error)
	Upsert(ctx context.Context, member *domain.Member) error
	Delete(ctx context.Context, orgID, userID string) error
	CountByRole(ctx context.Context, orgID string, role domain.MemberRole) (int64, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Project, error)
	List(ctx context.Context, orgID string, req domain.ListRequest) ([]domain.Project, int, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, orgID, id string, hard bool) error
	NameTaken(ctx context.Context, orgID, name, excludeID string) (bool, error)
	Count(ctx context.Context, orgID string) (int64, error)
}

type SprintRepository interface {
	Create(ctx context.Context, sprint *domain.Sprint) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Sprint, error)
	List(ctx context.Context, orgID string, req domain.ListRequest) ([]domain.Sprint, int, error)
	Update(ctx context.Context, sprint *domain.Sprint) error
	Delete(ctx context.Context, orgID, id string, hard bool) error
	Count(ctx context.Context, orgID string) (int64, error)
	AddTask(ctx context.Context, orgID, sprintID, taskID, userID string) error
	RemoveTask(ctx context.Context, orgID, sprintID, taskID string) error
	ListTasks(ctx context.Context, orgID, sprintID string) ([]domain.Task, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Task, error)
	List(ctx context.Context, orgID string, req domain.ListTasksRequest) ([]domain.Task, int, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, orgID, id string, hard bool) error
	Count(ctx context.Context, orgID string) (int64, error)
}

type FeatureRepository interface {
	Create(ctx context.Context, feature *domain.Feature) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Feature, error)
	List(ctx context.Context, orgID string, req domain.ListRequest) ([]domain.Feature, int, error)
	Update(ctx context.Context, feature *domain.Feature) error
	Delete(ctx context.Context, orgID, id string, hard bool) error
	NameTaken(ctx context.Context, orgID, name, excludeID string) (bool, error)
	Count(ctx context.Context, orgID string) (int64, error)
}
