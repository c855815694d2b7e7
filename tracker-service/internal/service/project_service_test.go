package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/pkg/pubsub"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

func TestProjectService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")

	project, err := env.projects.CreateProject(ctx, aliceActor, orgID, &domain.CreateProjectRequest{
		Name:        "web",
		Description: "site",
		Meta:        map[string]interface{}{"color": "blue"},
	})
	require.NoError(t, err)
	assert.Equal(t, orgID.String(), project.OrgID)
	assert.Equal(t, aliceActor.UserID, project.CreatedBy)

	_, err = env.projects.CreateProject(ctx, aliceActor, orgID, &domain.CreateProjectRequest{Name: "web"})
	assert.ErrorIs(t, err, ErrProjectExists)

	other := env.newOrg(t, "other")
	_, err = env.projects.CreateProject(ctx, aliceActor, other, &domain.CreateProjectRequest{Name: "web"})
	assert.NoError(t, err, "names are unique per organization only")

	desc := strings.Repeat("x", 10)
	updated, err := env.projects.UpdateProject(ctx, aliceActor, orgID, project.ID, &domain.UpdateProjectRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, "blue", updated.Meta["color"])

	_, err = env.projects.GetProject(ctx, aliceActor, other, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	page, err := env.projects.ListProjects(ctx, aliceActor, orgID, domain.ListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	assert.ErrorIs(t, env.projects.DeleteProject(ctx, aliceActor, orgID, project.ID, true), ErrNotManager)
	require.NoError(t, env.projects.DeleteProject(ctx, aliceActor, orgID, project.ID, false))
	_, err = env.projects.GetProject(ctx, aliceActor, orgID, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	assert.Contains(t, env.publisher.types(), pubsub.EventProjectCreated)
	assert.Contains(t, env.publisher.types(), pubsub.EventProjectUpdated)
	assert.Contains(t, env.publisher.types(), pubsub.EventProjectDeleted)
}

func TestProjectService_NonMember(t *testing.T) {
	env := newTestEnv(t)
	orgID := env.newOrg(t, "acme")

	_, err := env.projects.CreateProject(context.Background(), mallory, orgID, &domain.CreateProjectRequest{Name: "web"})
	assert.ErrorIs(t, err, ErrNotMember)
	assert.Empty(t, env.publisher.types())
}
