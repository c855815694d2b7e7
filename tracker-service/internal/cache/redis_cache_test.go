package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/tracker-service/internal/config"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

func newCache(t *testing.T) (*miniredis.Miniredis, *RedisMembershipCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisMembershipCache(client, "test")
}

func TestRedisMembershipCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mr, c := newCache(t)

	_, err := c.GetRole(ctx, "org-1", "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.SetRole(ctx, "org-1", "u1", domain.RoleAdmin, time.Minute))

	role, err := c.GetRole(ctx, "org-1", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	mr.FastForward(2 * time.Minute)
	_, err = c.GetRole(ctx, "org-1", "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisMembershipCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	_, c := newCache(t)

	require.NoError(t, c.SetRole(ctx, "org-1", "u1", domain.RoleOwner, time.Minute))
	require.NoError(t, c.SetRole(ctx, "org-1", "u2", domain.RoleMember, time.Minute))
	require.NoError(t, c.SetRole(ctx, "org-2", "u1", domain.RoleMember, time.Minute))

	require.NoError(t, c.Invalidate(ctx, "org-1", "u1"))
	_, err := c.GetRole(ctx, "org-1", "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	role, err := c.GetRole(ctx, "org-1", "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, role)

	require.NoError(t, c.InvalidateOrganization(ctx, "org-1"))
	_, err = c.GetRole(ctx, "org-1", "u2")
	assert.ErrorIs(t, err, ErrCacheMiss)

	role, err = c.GetRole(ctx, "org-2", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, role, "other organizations are untouched")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(config.RedisConfig{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}
