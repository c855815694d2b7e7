package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/scopedid"
	"github.com/atdaga/skrm-server/pkg/sequence"
	"github.com/atdaga/skrm-server/tracker-service/internal/audit"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

// OrganizationService defines organization business logic.
type OrganizationService interface {
	CreateOrganization(ctx context.Context, actor Actor, req *domain.CreateOrganizationRequest) (*domain.Organization, error)
	ListMyOrganizations(ctx context.Context, actor Actor, req domain.ListRequest) (*domain.ListResponse[domain.OrganizationWithRole], error)
	GetOrganization(ctx context.Context, actor Actor, orgID uuid.UUID) (*domain.Organization, error)
	UpdateOrganization(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.UpdateOrganizationRequest) (*domain.Organization, error)
	DeleteOrganization(ctx context.Context, actor Actor, orgID uuid.UUID) error
	GetSummary(ctx context.Context, actor Actor, orgID uuid.UUID) (*domain.OrganizationSummary, error)
}

// Counters reports entity totals for the summary.
type Counters struct {
	Projects repository.ProjectRepository
	Sprints  repository.SprintRepository
	Tasks    repository.TaskRepository
	Features repository.FeatureRepository
}

type organizationServiceImpl struct {
	repo      repository.OrganizationRepository
	registry  *NamespaceRegistry
	access    *AccessChecker
	counters  Counters
	allocator sequence.Allocator
}

func NewOrganizationService(repo repository.OrganizationRepository, registry *NamespaceRegistry, access *AccessChecker, counters Counters, allocator sequence.Allocator) OrganizationService {
	return &organizationServiceImpl{
		repo:      repo,
		registry:  registry,
		access:    access,
		counters:  counters,
		allocator: allocator,
	}
}

// CreateOrganization creates an organization with a unique namespace
// prefix and makes the caller its owner. A prefix that loses a race at
// insert time is retried like any other collision.
func (s *organizationServiceImpl) CreateOrganization(ctx context.Context, actor Actor, req *domain.CreateOrganizationRequest) (*domain.Organization, error) {
	if !actor.SystemRole {
		return nil, ErrSystemRoleRequired
	}

	name, alias := strings.TrimSpace(req.Name), strings.TrimSpace(req.Alias)
	taken, err := s.repo.NameOrAliasTaken(ctx, name, alias, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrOrganizationExists
	}

	for attempt := 0; attempt < MaxPrefixAttempts; attempt++ {
		id, err := s.registry.NewOrganizationID(ctx)
		if err != nil {
			return nil, err
		}

		org := &domain.Organization{
			ID:             id.String(),
			Prefix:         string(scopedid.PrefixOf(id)),
			Name:           name,
			Alias:          alias,
			Description:    req.Description,
			Meta:           req.Meta,
			CreatedBy:      actor.UserID,
			LastModifiedBy: actor.UserID,
		}
		owner := &domain.Member{OrgID: org.ID, UserID: actor.UserID, Role: domain.RoleOwner, AddedBy: actor.UserID}

		err = s.repo.Create(ctx, org, owner)
		switch {
		case err == nil:
			ctx = log.WithOrg(ctx, org.ID)
			audit.Log(ctx, audit.ActionCreateOrganization, actor.UserID, org.ID, org.ID, "organization created")
			return org, nil
		case errors.Is(err, repository.ErrPrefixTaken):
			continue
		case errors.Is(err, repository.ErrOrganizationExists):
			return nil, ErrOrganizationExists
		default:
			return nil, err
		}
	}
	return nil, ErrOrganizationCreationFailed
}

func (s *organizationServiceImpl) ListMyOrganizations(ctx context.Context, actor Actor, req domain.ListRequest) (*domain.ListResponse[domain.OrganizationWithRole], error) {
	req.Normalize()
	orgs, total, err := s.repo.ListByUser(ctx, actor.UserID, req)
	if err != nil {
		return nil, err
	}
	return domain.NewListResponse(orgs, total, req), nil
}

func (s *organizationServiceImpl) GetOrganization(ctx context.Context, actor Actor, orgID uuid.UUID) (*domain.Organization, error) {
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	return s.get(ctx, orgID.String())
}

func (s *organizationServiceImpl) UpdateOrganization(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.UpdateOrganizationRequest) (*domain.Organization, error) {
	if _, err := s.access.RequireManager(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}

	org, err := s.get(ctx, orgID.String())
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	if req.Alias != nil {
		org.Alias = strings.TrimSpace(*req.Alias)
	}
	if req.Name != nil || req.Alias != nil {
		taken, err := s.repo.NameOrAliasTaken(ctx, org.Name, org.Alias, org.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrOrganizationExists
		}
	}
	if req.Description != nil {
		org.Description = *req.Description
	}
	if req.Meta != nil {
		org.Meta = req.Meta
	}
	org.LastModifiedBy = actor.UserID

	if err := s.repo.Update(ctx, org); err != nil {
		if errors.Is(err, repository.ErrOrganizationExists) {
			return nil, ErrOrganizationExists
		}
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionUpdateOrganization, actor.UserID, org.ID, org.ID, "organization updated")
	return s.get(ctx, org.ID)
}

// DeleteOrganization soft-deletes the organization. Its prefix and
// counters stay reserved.
func (s *organizationServiceImpl) DeleteOrganization(ctx context.Context, actor Actor, orgID uuid.UUID) error {
	if _, err := s.access.RequireManager(ctx, orgID.String(), actor); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, orgID.String()); err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	}
	s.access.ForgetOrganization(ctx, orgID.String())

	audit.Log(ctx, audit.ActionDeleteOrganization, actor.UserID, orgID.String(), orgID.String(), "organization deleted")
	return nil
}

// GetSummary gathers counts and the last issued numbers concurrently.
func (s *organizationServiceImpl) GetSummary(ctx context.Context, actor Actor, orgID uuid.UUID) (*domain.OrganizationSummary, error) {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}

	summary := &domain.OrganizationSummary{OrgID: id}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		summary.Projects, err = s.counters.Projects.Count(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		summary.Sprints, err = s.counters.Sprints.Count(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		summary.Tasks, err = s.counters.Tasks.Count(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		summary.Features, err = s.counters.Features.Count(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		summary.LastTaskNumber, err = s.allocator.Current(gctx, orgID, scopedid.KindTask)
		return err
	})
	g.Go(func() (err error) {
		summary.LastFeatureNumber, err = s.allocator.Current(gctx, orgID, scopedid.KindFeature)
		return err
	})

	if err := g.Wait(); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldOrgID, id).Msg("failed to build organization summary")
		return nil, err
	}
	return summary, nil
}

func (s *organizationServiceImpl) get(ctx context.Context, id string) (*domain.Organization, error) {
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return org, nil
}
