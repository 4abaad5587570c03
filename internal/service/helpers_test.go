package service

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/db"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/repository"
	"github.com/alexanderramin/kurva/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db    *sql.DB
	uow   db.UnitOfWork
	repos ScheduleRepos
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &testEnv{
		db:  database,
		uow: testutil.NewTestUoW(database),
		repos: ScheduleRepos{
			Projects:    repository.NewSQLiteProjectRepo(database),
			Phases:      repository.NewSQLitePhaseRepo(database),
			Nodes:       repository.NewSQLiteWorkNodeRepo(database),
			Assignments: repository.NewSQLiteAssignmentRepo(database),
			Progress:    repository.NewSQLiteProgressRepo(database),
		},
	}
}

func (e *testEnv) schedule(uow db.UnitOfWork, observers ...UseCaseObserver) ScheduleService {
	if uow == nil {
		uow = e.uow
	}
	return NewScheduleService(e.repos, uow, nil, 3, observers...)
}

// schedFixture is a three-week project (6-25 Jan 2025, weeks ending Saturday)
// with weekly generated phases and two pekerjaan under one klasifikasi.
type schedFixture struct {
	project *domain.Project
	phases  []*domain.Phase
	group   *domain.WorkNode
	p1, p2  *domain.WorkNode
}

func seedSchedule(t *testing.T, e *testEnv) *schedFixture {
	t.Helper()
	ctx := context.Background()

	project := testutil.NewTestProject("Gudang", testutil.WithEndDate(testutil.Date("2025-01-25")))
	require.NoError(t, e.repos.Projects.Create(ctx, project))

	phases, err := NewPhaseService(e.repos.Projects, e.repos.Phases, e.uow).Generate(ctx, project.ID, domain.ScaleWeekly)
	require.NoError(t, err)
	require.Len(t, phases, 3)

	group := testutil.NewTestNode(project.ID, "Pekerjaan Tanah", testutil.WithNodeKind(domain.NodeKlasifikasi))
	p1 := testutil.NewTestNode(project.ID, "Galian", testutil.WithParentID(group.ID), testutil.WithVolume(10, "m3"), testutil.WithOrderIndex(0))
	p2 := testutil.NewTestNode(project.ID, "Urugan", testutil.WithParentID(group.ID), testutil.WithVolume(30, "m3"), testutil.WithOrderIndex(1))
	for _, n := range []*domain.WorkNode{group, p1, p2} {
		require.NoError(t, e.repos.Nodes.Create(ctx, n))
	}

	return &schedFixture{project: project, phases: phases, group: group, p1: p1, p2: p2}
}

func openWorkspace(t *testing.T, svc ScheduleService, projectID string) *app.Workspace {
	t.Helper()
	ws, err := svc.Open(context.Background(), projectID, nil)
	require.NoError(t, err)
	return ws
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) named(name string) []UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []UseCaseEvent
	for _, e := range o.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// gatedAssignments counts item fetches and holds every one until release is
// closed.
type gatedAssignments struct {
	repository.AssignmentRepo
	calls   atomic.Int64
	started chan struct{}
	release chan struct{}
}

func newGatedAssignments(inner repository.AssignmentRepo) *gatedAssignments {
	return &gatedAssignments{
		AssignmentRepo: inner,
		started:        make(chan struct{}, 1),
		release:        make(chan struct{}),
	}
}

func (g *gatedAssignments) ListByWorkItem(ctx context.Context, workItemID string) ([]domain.PhaseAssignment, error) {
	g.calls.Add(1)
	select {
	case g.started <- struct{}{}:
	default:
	}
	<-g.release
	return g.AssignmentRepo.ListByWorkItem(ctx, workItemID)
}
