package cache

import (
	"context"
	"time"

	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

// MembershipCache caches a user's role in an organization.
type MembershipCache interface {
	GetRole(ctx context.Context, orgID, userID string) (domain.MemberRole, error)
	SetRole(ctx context.Context, orgID, userID string, role domain.MemberRole, ttl time.Duration) error
	Invalidate(ctx context.Context, orgID string, userIDs ...string) error
	InvalidateOrganization(ctx context.Context, orgID string) error
}
