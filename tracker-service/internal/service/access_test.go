package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

// gatedOrgs blocks GetByID until gate closes or the lookup context ends.
type gatedOrgs struct {
	repository.OrganizationRepository
	entered   chan struct{}
	enterOnce sync.Once
	gate      chan struct{}
}

func (g *gatedOrgs) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	g.enterOnce.Do(func() { close(g.entered) })
	select {
	case <-g.gate:
		return &domain.Organization{ID: id}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fixedMembers struct {
	repository.MemberRepository
	role domain.MemberRole
}

func (f fixedMembers) Get(_ context.Context, orgID, userID string) (*domain.Member, error) {
	return &domain.Member{OrgID: orgID, UserID: userID, Role: f.role}, nil
}

func TestAccessChecker_CancelledCallerDoesNotFailOthers(t *testing.T) {
	orgs := &gatedOrgs{entered: make(chan struct{}), gate: make(chan struct{})}
	access := NewAccessChecker(orgs, fixedMembers{role: domain.RoleMember}, nil, 0)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := access.Role(first, "org-1", "alice")
		firstErr <- err
	}()
	<-orgs.entered

	type result struct {
		role domain.MemberRole
		err  error
	}
	second := make(chan result, 1)
	go func() {
		role, err := access.Role(context.Background(), "org-1", "alice")
		second <- result{role, err}
	}()
	// Let the second caller join the in-flight lookup.
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(orgs.gate)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, domain.RoleMember, res.role)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller never returned")
	}
}
