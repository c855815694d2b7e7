package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

func TestMemberService_AddAndRemove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")

	_, err := env.members.AddMember(ctx, aliceActor, orgID, &domain.AddMemberRequest{UserID: bobActor.UserID, Role: domain.RoleMember})
	assert.ErrorIs(t, err, ErrNotManager)

	_, err = env.members.AddMember(ctx, rootActor, orgID, &domain.AddMemberRequest{UserID: aliceActor.UserID, Role: domain.RoleAdmin})
	require.NoError(t, err)

	member, err := env.members.AddMember(ctx, aliceActor, orgID, &domain.AddMemberRequest{UserID: bobActor.UserID, Role: domain.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, member.Role)
	assert.Equal(t, aliceActor.UserID, member.AddedBy)

	_, err = env.members.AddMember(ctx, aliceActor, orgID, &domain.AddMemberRequest{UserID: bobActor.UserID, Role: domain.RoleOwner})
	assert.ErrorIs(t, err, ErrNotManager, "admins cannot grant ownership")

	members, err := env.members.ListMembers(ctx, bobActor, orgID)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	require.NoError(t, env.members.RemoveMember(ctx, aliceActor, orgID, bobActor.UserID))
	_, err = env.orgs.GetOrganization(ctx, bobActor, orgID)
	assert.ErrorIs(t, err, ErrNotMember)

	assert.ErrorIs(t, env.members.RemoveMember(ctx, aliceActor, orgID, bobActor.UserID), ErrMemberNotFound)
}

func TestMemberService_LastOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")

	assert.ErrorIs(t, env.members.RemoveMember(ctx, rootActor, orgID, rootActor.UserID), ErrLastOwner)

	_, err := env.members.AddMember(ctx, rootActor, orgID, &domain.AddMemberRequest{UserID: rootActor.UserID, Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrLastOwner)

	_, err = env.members.AddMember(ctx, rootActor, orgID, &domain.AddMemberRequest{UserID: aliceActor.UserID, Role: domain.RoleOwner})
	require.NoError(t, err)
	require.NoError(t, env.members.RemoveMember(ctx, rootActor, orgID, rootActor.UserID))

	members, err := env.members.ListMembers(ctx, aliceActor, orgID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, aliceActor.UserID, members[0].UserID)
}

func TestMemberService_SelfRemoval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")

	require.NoError(t, env.members.RemoveMember(ctx, aliceActor, orgID, aliceActor.UserID))
	_, err := env.members.ListMembers(ctx, aliceActor, orgID)
	assert.ErrorIs(t, err, ErrNotMember)
}
