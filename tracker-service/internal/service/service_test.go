package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/atdaga/skrm-server/pkg/database/databasetest"
	"github.com/atdaga/skrm-server/pkg/pubsub"
	"github.com/atdaga/skrm-server/pkg/sequence"
	"github.com/atdaga/skrm-server/pkg/storage"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

var (
	rootActor  = Actor{UserID: "root", Username: "root", SystemRole: true}
	aliceActor = Actor{UserID: "alice", Username: "alice"}
	bobActor   = Actor{UserID: "bob", Username: "bob"}
	mallory    = Actor{UserID: "mallory", Username: "mallory"}
)

var testModels = []interface{}{
	&domain.OrganizationModel{},
	&domain.MemberModel{},
	&domain.ProjectModel{},
	&domain.SprintModel{},
	&domain.SprintTaskModel{},
	&domain.TaskModel{},
	&domain.FeatureModel{},
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	events   []*pubsub.Event
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	orgs      OrganizationService
	members   MemberService
	projects  ProjectService
	sprints   SprintService
	tasks     TaskService
	features  FeatureService
	docs      DocService
	store     *storage.LocalStorage
	publisher *recordingPublisher
	allocator sequence.Allocator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := databasetest.New(t, testModels...)
	orgRepo := repository.NewGormOrganizationRepository(db)
	memberRepo := repository.NewGormMemberRepository(db)
	projectRepo := repository.NewGormProjectRepository(db)
	sprintRepo := repository.NewGormSprintRepository(db)
	taskRepo := repository.NewGormTaskRepository(db)
	featureRepo := repository.NewGormFeatureRepository(db)

	allocator, err := sequence.New(sequence.Config{Driver: sequence.DriverMemory}, nil, nil)
	require.NoError(t, err)
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	access := NewAccessChecker(orgRepo, memberRepo, nil, 0)
	counters := Counters{Projects: projectRepo, Sprints: sprintRepo, Tasks: taskRepo, Features: featureRepo}

	return &testEnv{
		orgs:      NewOrganizationService(orgRepo, NewNamespaceRegistry(orgRepo), access, counters, allocator),
		members:   NewMemberService(memberRepo, access),
		projects:  NewProjectService(projectRepo, access, publisher),
		sprints:   NewSprintService(sprintRepo, taskRepo, access, publisher),
		tasks:     NewTaskService(taskRepo, projectRepo, allocator, access, publisher),
		features:  NewFeatureService(featureRepo, allocator, store, access, publisher),
		docs:      NewDocService(store, featureRepo, access),
		store:     store,
		publisher: publisher,
		allocator: allocator,
	}
}

// newOrg creates an organization owned by root with alice as a member.
func (e *testEnv) newOrg(t *testing.T, name string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	org, err := e.orgs.CreateOrganization(ctx, rootActor, &domain.CreateOrganizationRequest{Name: name, Alias: name})
	require.NoError(t, err)
	orgID := uuid.MustParse(org.ID)

	_, err = e.members.AddMember(ctx, rootActor, orgID, &domain.AddMemberRequest{UserID: aliceActor.UserID, Role: domain.RoleMember})
	require.NoError(t, err)
	return orgID
}
