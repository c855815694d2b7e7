package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/tracker-service/internal/cache"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

// AccessChecker resolves a caller's role in an organization. Lookups go
// through the membership cache; concurrent misses for the same pair share
// one database read.
type AccessChecker struct {
	orgs    repository.OrganizationRepository
	members repository.MemberRepository
	cache   cache.MembershipCache
	ttl     time.Duration
	group   singleflight.Group
}

// NewAccessChecker creates an AccessChecker. A nil cache disables caching.
func NewAccessChecker(orgs repository.OrganizationRepository, members repository.MemberRepository, c cache.MembershipCache, ttl time.Duration) *AccessChecker {
	return &AccessChecker{orgs: orgs, members: members, cache: c, ttl: ttl}
}

// Role returns actor's role in orgID. Unknown organizations and
// non-members both yield an error so callers cannot probe for existence.
func (a *AccessChecker) Role(ctx context.Context, orgID, userID string) (domain.MemberRole, error) {
	l := log.Ctx(ctx)

	if a.cache != nil {
		role, err := a.cache.GetRole(ctx, orgID, userID)
		if err == nil {
			return role, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn().Err(err).Msg("membership cache read failed")
		}
	}

	// The shared lookup outlives any single caller; each caller still
	// gives up when its own context ends.
	lookupCtx := context.WithoutCancel(ctx)
	ch := a.group.DoChan(orgID+"/"+userID, func() (interface{}, error) {
		if _, err := a.orgs.GetByID(lookupCtx, orgID); err != nil {
			if errors.Is(err, repository.ErrOrganizationNotFound) {
				return nil, ErrOrganizationNotFound
			}
			return nil, err
		}
		member, err := a.members.Get(lookupCtx, orgID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrMemberNotFound) {
				return nil, ErrNotMember
			}
			return nil, err
		}
		if a.cache != nil {
			if err := a.cache.SetRole(lookupCtx, orgID, userID, member.Role, a.ttl); err != nil {
				l.Warn().Err(err).Msg("membership cache write failed")
			}
		}
		return member.Role, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(domain.MemberRole), nil
	}
}

// RequireMember fails unless actor belongs to orgID.
func (a *AccessChecker) RequireMember(ctx context.Context, orgID string, actor Actor) (domain.MemberRole, error) {
	return a.Role(ctx, orgID, actor.UserID)
}

// RequireManager fails unless actor is an owner or admin of orgID.
func (a *AccessChecker) RequireManager(ctx context.Context, orgID string, actor Actor) (domain.MemberRole, error) {
	role, err := a.Role(ctx, orgID, actor.UserID)
	if err != nil {
		return "", err
	}
	if !role.CanManage() {
		return "", ErrNotManager
	}
	return role, nil
}

// Forget drops cached roles after a membership change.
func (a *AccessChecker) Forget(ctx context.Context, orgID string, userIDs ...string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx, orgID, userIDs...); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("membership cache invalidation failed")
	}
}

// ForgetOrganization drops every cached role of orgID.
func (a *AccessChecker) ForgetOrganization(ctx context.Context, orgID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.InvalidateOrganization(ctx, orgID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("membership cache invalidation failed")
	}
}
