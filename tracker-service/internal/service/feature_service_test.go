package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/pkg/scopedid"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

func createFeature(t *testing.T, env *testEnv, orgID uuid.UUID, name string, parent *string) *domain.Feature {
	t.Helper()
	f, err := env.features.CreateFeature(context.Background(), aliceActor, orgID, &domain.CreateFeatureRequest{
		Name:        name,
		ParentID:    parent,
		FeatureType: domain.FeatureEngineering,
	})
	require.NoError(t, err)
	return f
}

func TestFeatureService_IndependentSequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")

	_, err := env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: "t"})
	require.NoError(t, err)
	_, err = env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: "t"})
	require.NoError(t, err)

	f := createFeature(t, env, orgID, "login", nil)
	assert.Equal(t, int64(1), f.Number)
	want, err := scopedid.Features.Encode(orgID, 1)
	require.NoError(t, err)
	assert.Equal(t, want.String(), f.ID)

	_, err = env.features.CreateFeature(ctx, aliceActor, orgID, &domain.CreateFeatureRequest{Name: "login", FeatureType: domain.FeatureProduct})
	assert.ErrorIs(t, err, ErrFeatureExists)
}

func TestFeatureService_Parents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")
	other := env.newOrg(t, "other")

	root := createFeature(t, env, orgID, "root", nil)
	child := createFeature(t, env, orgID, "child", &root.ID)
	grandchild := createFeature(t, env, orgID, "grandchild", &child.ID)
	foreign := createFeature(t, env, other, "foreign", nil)

	_, err := env.features.CreateFeature(ctx, aliceActor, orgID, &domain.CreateFeatureRequest{
		Name: "bad", ParentID: &foreign.ID, FeatureType: domain.FeatureProduct,
	})
	assert.ErrorIs(t, err, ErrInvalidParent)

	missing, err := scopedid.Features.Encode(orgID, 500)
	require.NoError(t, err)
	parent := missing.String()
	_, err = env.features.CreateFeature(ctx, aliceActor, orgID, &domain.CreateFeatureRequest{
		Name: "orphan", ParentID: &parent, FeatureType: domain.FeatureProduct,
	})
	assert.ErrorIs(t, err, ErrInvalidParent)

	_, err = env.features.UpdateFeature(ctx, aliceActor, orgID, root.ID, &domain.UpdateFeatureRequest{ParentID: &grandchild.ID})
	assert.ErrorIs(t, err, ErrInvalidParent, "cycles are rejected")
	_, err = env.features.UpdateFeature(ctx, aliceActor, orgID, root.ID, &domain.UpdateFeatureRequest{ParentID: &root.ID})
	assert.ErrorIs(t, err, ErrInvalidParent)

	require.NoError(t, env.features.DeleteFeature(ctx, aliceActor, orgID, child.ID, false))
	got, err := env.features.GetFeature(ctx, aliceActor, orgID, grandchild.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID, "children are detached from deleted parents")
}

func TestFeatureService_HardDeleteRemovesDocs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")
	f := createFeature(t, env, orgID, "login", nil)

	_, err := env.docs.PutDoc(ctx, aliceActor, orgID, f.ID, "# Login")
	require.NoError(t, err)

	assert.ErrorIs(t, env.features.DeleteFeature(ctx, aliceActor, orgID, f.ID, true), ErrNotManager)
	require.NoError(t, env.features.DeleteFeature(ctx, rootActor, orgID, f.ID, true))

	exists, err := env.store.Exists(ctx, FeatureDocKey(orgID.String(), f.ID))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDocService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")
	f := createFeature(t, env, orgID, "login", nil)

	_, err := env.docs.GetDoc(ctx, aliceActor, orgID, f.ID)
	assert.ErrorIs(t, err, ErrDocNotFound)

	doc, err := env.docs.PutDoc(ctx, aliceActor, orgID, f.ID, "# Login\n\nv1")
	require.NoError(t, err)
	assert.Equal(t, "orgs/"+orgID.String()+"/features/"+f.ID+"/doc.md", doc.Key)

	_, err = env.docs.PutDoc(ctx, aliceActor, orgID, f.ID, "# Login\n\nv2")
	require.NoError(t, err)

	doc, err = env.docs.GetDoc(ctx, aliceActor, orgID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Login\n\nv2", doc.Content)

	_, err = env.docs.GetDoc(ctx, mallory, orgID, f.ID)
	assert.ErrorIs(t, err, ErrNotMember)
	_, err = env.docs.GetDoc(ctx, aliceActor, orgID, "nope")
	assert.ErrorIs(t, err, ErrInvalidFeatureID)

	require.NoError(t, env.docs.DeleteDoc(ctx, aliceActor, orgID, f.ID))
	assert.ErrorIs(t, env.docs.DeleteDoc(ctx, aliceActor, orgID, f.ID), ErrDocNotFound)
}
