package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/pkg/scopedid"
)

type prefixSet map[string]bool

func (p prefixSet) PrefixExists(_ context.Context, prefix string) (bool, error) {
	return p[prefix], nil
}

type failingChecker struct{}

func (failingChecker) PrefixExists(context.Context, string) (bool, error) {
	return false, errors.New("db down")
}

func sequenceOf(ids ...string) func() uuid.UUID {
	i := 0
	return func() uuid.UUID {
		id := uuid.MustParse(ids[i%len(ids)])
		i++
		return id
	}
}

func TestNamespaceRegistry_RetriesOnCollision(t *testing.T) {
	taken := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	fresh := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	r := NewNamespaceRegistry(prefixSet{string(scopedid.PrefixOf(taken)): true})
	r.newID = sequenceOf(
		"11111111-2222-3333-4444-000000000001",
		taken.String(),
		fresh.String(),
	)

	id, err := r.NewOrganizationID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, id)
}

func TestNamespaceRegistry_GivesUp(t *testing.T) {
	taken := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	calls := 0
	r := NewNamespaceRegistry(prefixSet{string(scopedid.PrefixOf(taken)): true})
	r.newID = func() uuid.UUID {
		calls++
		return taken
	}

	_, err := r.NewOrganizationID(context.Background())
	assert.ErrorIs(t, err, ErrOrganizationCreationFailed)
	assert.Equal(t, MaxPrefixAttempts, calls)
}

func TestNamespaceRegistry_CheckerError(t *testing.T) {
	r := NewNamespaceRegistry(failingChecker{})
	_, err := r.NewOrganizationID(context.Background())
	assert.EqualError(t, err, "db down")
}
