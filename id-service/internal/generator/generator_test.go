package generator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/pkg/scopedid"
)

var org = "00000010-0000-0000-0001-000000000010"

func TestUUIDGenerators(t *testing.T) {
	ctx := context.Background()

	v4 := NewUUIDGenerator()
	id, err := v4.Generate(ctx, "")
	require.NoError(t, err)
	ok, reason := v4.Validate(id)
	assert.True(t, ok, reason)

	v7 := NewUUID7Generator()
	before := time.Now().UnixMilli()
	id7, err := v7.Generate(ctx, "")
	require.NoError(t, err)

	ok, _ = v4.Validate(id7)
	assert.False(t, ok, "v7 is not a v4")

	res, err := v7.Parse(id7)
	require.NoError(t, err)
	assert.Equal(t, 7, res.UUIDVersion)
	assert.Equal(t, "RFC4122", res.UUIDVariant)
	assert.GreaterOrEqual(t, res.TimestampMs, before)

	_, err = v4.GenerateBatch(ctx, "", 0)
	assert.ErrorIs(t, err, ErrInvalidCount)
	ids, err := v4.GenerateBatch(ctx, "", 5)
	require.NoError(t, err)
	assert.Len(t, ids, 5)
}

func TestScopedGenerator(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(scopedid.NewMemoryAllocator())

	tasks, err := reg.Get(TypeTask)
	require.NoError(t, err)

	ids, err := tasks.GenerateBatch(ctx, org, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00000010-0000-0000-0001-000000000001",
		"00000010-0000-0000-0001-000000000002",
		"00000010-0000-0000-0001-000000000003",
	}, ids)

	features, err := reg.Get(TypeFeature)
	require.NoError(t, err)
	id, err := features.Generate(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, "00000010-0000-0000-0001-000000000001", id, "features count separately")

	_, err = tasks.Generate(ctx, "")
	assert.ErrorIs(t, err, ErrNamespaceRequired)
	_, err = tasks.Generate(ctx, "acme")
	assert.ErrorIs(t, err, ErrInvalidNamespace)

	res, err := tasks.Parse("00000010-0000-0000-0001-000000000123")
	require.NoError(t, err)
	assert.Equal(t, "00000010-0000-0000-0001", res.Namespace)
	assert.Equal(t, int64(123), res.Sequence)
	assert.Equal(t, "task", res.Kind)

	ok, reason := tasks.Validate("00000010-0000-0000-0001-00000000abcd")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
	ok, _ = tasks.Validate(uuid.NewString())
	assert.False(t, ok)

	_, err = reg.Get("snowflake")
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Equal(t, []string{"feature", "task", "uuid", "uuid7"}, reg.Types())
}

func TestScopedGenerator_Exhausted(t *testing.T) {
	alloc := scopedid.NewMemoryAllocator()
	alloc.Seed(uuid.MustParse(org), scopedid.KindTask, scopedid.MaxSequence)

	_, err := NewScopedGenerator(scopedid.Tasks, alloc).Generate(context.Background(), org)
	assert.True(t, scopedid.IsExhausted(err))
}
