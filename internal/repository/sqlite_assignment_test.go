package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assignmentFixture struct {
	assignments *SQLiteAssignmentRepo
	progress    *SQLiteProgressRepo
	phases      *SQLitePhaseRepo
	project     *domain.Project
	item        *domain.WorkNode
	phase       *domain.Phase
}

func setupAssignments(t *testing.T) assignmentFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Assign Host")
	require.NoError(t, NewSQLiteProjectRepo(db).Create(ctx, proj))
	item := testutil.NewTestNode(proj.ID, "Galian", testutil.WithVolume(50, "m3"))
	require.NoError(t, NewSQLiteWorkNodeRepo(db).Create(ctx, item))
	phase := testutil.NewTestPhase(proj.ID, 1,
		testutil.WithPhaseRange(testutil.Date("2025-01-06"), testutil.Date("2025-01-11")),
		testutil.WithGeneration(domain.GenerationWeekly))
	phases := NewSQLitePhaseRepo(db)
	require.NoError(t, phases.Create(ctx, phase))

	return assignmentFixture{
		assignments: NewSQLiteAssignmentRepo(db),
		progress:    NewSQLiteProgressRepo(db),
		phases:      phases,
		project:     proj,
		item:        item,
		phase:       phase,
	}
}

func TestAssignmentRepo_UpsertReportsCreate(t *testing.T) {
	f := setupAssignments(t)
	ctx := context.Background()

	created, err := f.assignments.Upsert(ctx, domain.PhaseAssignment{WorkItemID: f.item.ID, PhaseID: f.phase.ID, Proportion: 40})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.assignments.Upsert(ctx, domain.PhaseAssignment{WorkItemID: f.item.ID, PhaseID: f.phase.ID, Proportion: 55.5})
	require.NoError(t, err)
	assert.False(t, created)

	list, err := f.assignments.ListByWorkItem(ctx, f.item.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 55.5, list[0].Proportion)
	assert.False(t, list[0].UpdatedAt.IsZero())

	byProject, err := f.assignments.ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, list, byProject)
}

func TestAssignmentRepo_Delete(t *testing.T) {
	f := setupAssignments(t)
	ctx := context.Background()

	_, err := f.assignments.Upsert(ctx, domain.PhaseAssignment{WorkItemID: f.item.ID, PhaseID: f.phase.ID, Proportion: 40})
	require.NoError(t, err)

	existed, err := f.assignments.Delete(ctx, f.item.ID, f.phase.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = f.assignments.Delete(ctx, f.item.ID, f.phase.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestAssignmentRepo_RejectsOutOfRange(t *testing.T) {
	f := setupAssignments(t)
	_, err := f.assignments.Upsert(context.Background(), domain.PhaseAssignment{WorkItemID: f.item.ID, PhaseID: f.phase.ID, Proportion: 120})
	assert.Error(t, err)
}

func TestAssignmentRepo_PhaseRegenerationDropsAssignmentsOnly(t *testing.T) {
	f := setupAssignments(t)
	ctx := context.Background()

	_, err := f.assignments.Upsert(ctx, domain.PhaseAssignment{WorkItemID: f.item.ID, PhaseID: f.phase.ID, Proportion: 40})
	require.NoError(t, err)
	_, err = f.progress.Upsert(ctx, domain.CanonicalRecord{WorkItemID: f.item.ID, WeekNumber: 1, Proportion: 40, Notes: "weekly"})
	require.NoError(t, err)

	_, err = f.phases.DeleteAutoGenerated(ctx, f.project.ID)
	require.NoError(t, err)

	list, err := f.assignments.ListByWorkItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	weekly, err := f.progress.ListByWorkItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Len(t, weekly, 1)
}

func TestProgressRepo_UpsertListDelete(t *testing.T) {
	f := setupAssignments(t)
	ctx := context.Background()

	created, err := f.progress.Upsert(ctx, domain.CanonicalRecord{WorkItemID: f.item.ID, WeekNumber: 2, Proportion: 10, Notes: "daily: aggregated from 2 day(s)"})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = f.progress.Upsert(ctx, domain.CanonicalRecord{WorkItemID: f.item.ID, WeekNumber: 1, Proportion: 30, Notes: "weekly"})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = f.progress.Upsert(ctx, domain.CanonicalRecord{WorkItemID: f.item.ID, WeekNumber: 2, Proportion: 25, Notes: "weekly"})
	require.NoError(t, err)
	assert.False(t, created)

	list, err := f.progress.ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.CanonicalRecord{
		{WorkItemID: f.item.ID, WeekNumber: 1, Proportion: 30, Notes: "weekly"},
		{WorkItemID: f.item.ID, WeekNumber: 2, Proportion: 25, Notes: "weekly"},
	}, list)

	existed, err := f.progress.Delete(ctx, f.item.ID, 1)
	require.NoError(t, err)
	assert.True(t, existed)

	list, err = f.progress.ListByWorkItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
