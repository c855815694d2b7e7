package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/tracker-service/internal/audit"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

// MemberService defines organization membership business logic.
type MemberService interface {
	ListMembers(ctx context.Context, actor Actor, orgID uuid.UUID) ([]domain.Member, error)
	AddMember(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.AddMemberRequest) (*domain.Member, error)
	RemoveMember(ctx context.Context, actor Actor, orgID uuid.UUID, userID string) error
}

type memberServiceImpl struct {
	repo   repository.MemberRepository
	access *AccessChecker
}

func NewMemberService(repo repository.MemberRepository, access *AccessChecker) MemberService {
	return &memberServiceImpl{repo: repo, access: access}
}

func (s *memberServiceImpl) ListMembers(ctx context.Context, actor Actor, orgID uuid.UUID) ([]domain.Member, error) {
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, orgID.String())
}

// AddMember adds a user or changes an existing member's role. Only owners
// may grant or revoke the owner role, and the last owner cannot be
// demoted.
func (s *memberServiceImpl) AddMember(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.AddMemberRequest) (*domain.Member, error) {
	id := orgID.String()
	role, err := s.access.RequireManager(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id, req.UserID)
	if err != nil && !errors.Is(err, repository.ErrMemberNotFound) {
		return nil, err
	}
	touchesOwner := req.Role == domain.RoleOwner || (existing != nil && existing.Role == domain.RoleOwner)
	if touchesOwner && role != domain.RoleOwner {
		return nil, ErrNotManager
	}
	if existing != nil && existing.Role == domain.RoleOwner && req.Role != domain.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, id); err != nil {
			return nil, err
		}
	}

	member := &domain.Member{OrgID: id, UserID: req.UserID, Role: req.Role, AddedBy: actor.UserID}
	if existing != nil {
		member.AddedBy = existing.AddedBy
	}
	if err := s.repo.Upsert(ctx, member); err != nil {
		return nil, err
	}
	s.access.Forget(ctx, id, req.UserID)

	audit.LogWithDetail(ctx, audit.ActionAddMember, actor.UserID, id, req.UserID, string(req.Role), "member added")
	return s.repo.Get(ctx, id, req.UserID)
}

// RemoveMember removes a user. Members may remove themselves; removing
// someone else needs owner or admin.
func (s *memberServiceImpl) RemoveMember(ctx context.Context, actor Actor, orgID uuid.UUID, userID string) error {
	id := orgID.String()

	var role domain.MemberRole
	var err error
	if userID == actor.UserID {
		role, err = s.access.RequireMember(ctx, id, actor)
	} else {
		role, err = s.access.RequireManager(ctx, id, actor)
	}
	if err != nil {
		return err
	}

	target, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	if target.Role == domain.RoleOwner {
		if userID != actor.UserID && role != domain.RoleOwner {
			return ErrNotManager
		}
		if err := s.ensureAnotherOwner(ctx, id); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	s.access.Forget(ctx, id, userID)

	audit.Log(ctx, audit.ActionRemoveMember, actor.UserID, id, userID, "member removed")
	return nil
}

func (s *memberServiceImpl) ensureAnotherOwner(ctx context.Context, orgID string) error {
	owners, err := s.repo.CountByRole(ctx, orgID, domain.RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}
