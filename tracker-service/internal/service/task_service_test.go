package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/pkg/pubsub"
	"github.com/atdaga/skrm-server/pkg/scopedid"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

type exhaustedAllocator struct{}

func (exhaustedAllocator) Allocate(_ context.Context, org uuid.UUID, kind scopedid.Kind) (int64, error) {
	return 0, &scopedid.ExhaustedNamespaceError{Kind: kind, Organization: org}
}

func (exhaustedAllocator) Current(context.Context, uuid.UUID, scopedid.Kind) (int64, error) {
	return scopedid.MaxSequence, nil
}

func TestTaskService_SequentialScopedIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")
	prefix := string(scopedid.PrefixOf(orgID))

	for want := int64(1); want <= 3; want++ {
		task, err := env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: fmt.Sprintf("task %d", want)})
		require.NoError(t, err)
		assert.Equal(t, want, task.Number)
		assert.Equal(t, fmt.Sprintf("%s-%012d", prefix, want), task.ID)
		assert.Equal(t, domain.TaskBacklog, task.Status)
	}

	page, err := env.tasks.ListTasks(ctx, aliceActor, orgID, domain.ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	for i, task := range page.Items {
		assert.Equal(t, int64(i+1), task.Number)
	}

	other := env.newOrg(t, "other")
	task, err := env.tasks.CreateTask(ctx, aliceActor, other, &domain.CreateTaskRequest{Summary: "first"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.Number, "each organization has its own sequence")
	assert.Equal(t, string(scopedid.PrefixOf(other)), string(scopedid.PrefixOf(uuid.MustParse(task.ID))))
}

func TestTaskService_NumbersNotReused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")

	first, err := env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: "a"})
	require.NoError(t, err)
	second, err := env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: "b"})
	require.NoError(t, err)

	require.NoError(t, env.tasks.DeleteTask(ctx, rootActor, orgID, second.ID, true))
	require.NoError(t, env.tasks.DeleteTask(ctx, aliceActor, orgID, first.ID, false))

	third, err := env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.Number)
}

func TestTaskService_RejectsForeignIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")
	other := env.newOrg(t, "other")

	foreign, err := env.tasks.CreateTask(ctx, aliceActor, other, &domain.CreateTaskRequest{Summary: "theirs"})
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
	}{
		{"other organization", foreign.ID},
		{"not a uuid", "task-1"},
		{"random uuid", uuid.NewString()},
		{"hex sequence", string(scopedid.PrefixOf(orgID)) + "-00000000abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.GetTask(ctx, aliceActor, orgID, tt.id)
			assert.ErrorIs(t, err, ErrInvalidTaskID)
			assert.ErrorIs(t, env.tasks.DeleteTask(ctx, aliceActor, orgID, tt.id, false), ErrInvalidTaskID)
		})
	}

	missing, err := scopedid.Tasks.Encode(orgID, 99)
	require.NoError(t, err)
	_, err = env.tasks.GetTask(ctx, aliceActor, orgID, missing.String())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_ProjectMustBelongToOrganization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")
	other := env.newOrg(t, "other")

	theirs, err := env.projects.CreateProject(ctx, aliceActor, other, &domain.CreateProjectRequest{Name: "p"})
	require.NoError(t, err)
	ours, err := env.projects.CreateProject(ctx, aliceActor, orgID, &domain.CreateProjectRequest{Name: "p"})
	require.NoError(t, err)

	_, err = env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: "x", ProjectID: &theirs.ID})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	task, err := env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: "x", ProjectID: &ours.ID})
	require.NoError(t, err)
	require.NotNil(t, task.ProjectID)

	status := domain.TaskInProgress
	empty := ""
	updated, err := env.tasks.UpdateTask(ctx, aliceActor, orgID, task.ID, &domain.UpdateTaskRequest{Status: &status, ProjectID: &empty})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, updated.Status)
	assert.Nil(t, updated.ProjectID)
	assert.Equal(t, task.Number, updated.Number)

	page, err := env.tasks.ListTasks(ctx, aliceActor, orgID, domain.ListTasksRequest{Status: string(domain.TaskInProgress)})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestTaskService_Exhausted(t *testing.T) {
	env := newTestEnv(t)
	orgID := env.newOrg(t, "acme")
	env.tasks.(*taskServiceImpl).allocator = exhaustedAllocator{}

	_, err := env.tasks.CreateTask(context.Background(), aliceActor, orgID, &domain.CreateTaskRequest{Summary: "late"})
	assert.ErrorIs(t, err, ErrNamespaceExhausted)
}

func TestTaskService_ConcurrentCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")

	const n = 20
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: "x"})
			if assert.NoError(t, err) {
				ids <- task.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestTaskService_Events(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	orgID := env.newOrg(t, "acme")

	task, err := env.tasks.CreateTask(ctx, aliceActor, orgID, &domain.CreateTaskRequest{Summary: "x"})
	require.NoError(t, err)
	require.NoError(t, env.tasks.DeleteTask(ctx, aliceActor, orgID, task.ID, false))

	assert.Equal(t, []string{pubsub.EventTaskCreated, pubsub.EventTaskDeleted}, env.publisher.types())
	assert.Equal(t, pubsub.OrgChannel(orgID.String(), pubsub.EntityTask), env.publisher.channels[0])

	var payload domain.Task
	require.NoError(t, env.publisher.events[0].UnmarshalPayload(&payload))
	assert.Equal(t, task.ID, payload.ID)
	assert.Equal(t, orgID.String(), env.publisher.events[0].OrgID)
}
