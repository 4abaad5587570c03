package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/contract"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/testutil"
	"github.com/alexanderramin/kurva/internal/timescale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleService_OpenBuildsWorkspace(t *testing.T) {
	e := setupEnv(t)
	fx := seedSchedule(t, e)

	var reports [][2]int
	ws, err := e.schedule(nil).Open(context.Background(), fx.project.ID, func(done, total int) {
		reports = append(reports, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ScaleWeekly, ws.Model.Scale)
	require.Len(t, ws.Model.Columns, 3)
	for i, col := range ws.Model.Columns {
		assert.Equal(t, i+1, col.WeekNumber)
	}
	require.Len(t, ws.Items, 2)
	assert.Equal(t, "Galian", ws.Items[0].Name)
	assert.Equal(t, []string{"Pekerjaan Tanah"}, ws.Items[0].Path)
	assert.True(t, ws.Expansion.IsExpanded(fx.group.ID))
	assert.Equal(t, 0, ws.Store.Len())
	assert.ElementsMatch(t, [][2]int{{1, 2}, {2, 2}}, reports)
}

func TestScheduleService_SaveAndReload(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	fx := seedSchedule(t, e)
	svc := e.schedule(nil)

	ws := openWorkspace(t, svc, fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, 40))
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[1].ID, 60))
	require.NoError(t, ws.SetProportion(fx.p2.ID, fx.phases[0].ID, 50))

	resp, err := svc.Save(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Created)
	assert.Equal(t, 0, resp.Updated)
	assert.Equal(t, 0, resp.Deleted)
	assert.ElementsMatch(t, []string{fx.p1.ID, fx.p2.ID}, resp.WorkItems)
	assert.False(t, ws.Store.IsDirty(), "overlay committed after save")

	weekly, err := svc.Weekly(ctx, fx.p1.ID)
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	assert.Equal(t, domain.CanonicalRecord{WorkItemID: fx.p1.ID, WeekNumber: 1, Proportion: 40, Notes: "weekly"}, weekly[0])
	assert.Equal(t, 60.0, weekly[1].Proportion)

	reloaded := openWorkspace(t, svc, fx.project.ID)
	col1 := timescale.ColumnID(fx.phases[0].ID)
	col2 := timescale.ColumnID(fx.phases[1].ID)
	assert.Equal(t, 40.0, reloaded.Store.Get(fx.p1.ID, col1))
	assert.Equal(t, 60.0, reloaded.Store.Get(fx.p1.ID, col2))
	assert.Equal(t, 50.0, reloaded.Store.Get(fx.p2.ID, col1))

	report := svc.Progress(reloaded)
	require.Len(t, report.Phases, 3)
	assert.Equal(t, 47.5, report.Phases[0].Progress, "(40*10 + 50*30) / 40")
	assert.Equal(t, 60.0, report.Phases[1].Progress)
	assert.Equal(t, 0.0, report.Phases[2].Progress)
	assert.Equal(t, 62.5, report.Project)
	require.Len(t, report.Curve, 3)
	assert.Equal(t, 62.5, report.Curve[2].Cumulative)
	require.Len(t, report.Bars, 2)
	assert.Equal(t, 100.0, report.Bars[0].Percent)
}

func TestScheduleService_SaveCountsUpdatesAndDeletes(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	fx := seedSchedule(t, e)
	svc := e.schedule(nil)

	ws := openWorkspace(t, svc, fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, 40))
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[1].ID, 60))
	require.NoError(t, ws.SetProportion(fx.p2.ID, fx.phases[0].ID, 50))
	_, err := svc.Save(ctx, ws)
	require.NoError(t, err)

	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[1].ID, 0))
	require.NoError(t, ws.SetProportion(fx.p2.ID, fx.phases[0].ID, 30))
	resp, err := svc.Save(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 1, resp.Deleted)

	weekly, err := svc.Weekly(ctx, fx.p1.ID)
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, 1, weekly[0].WeekNumber)

	assignments, err := e.repos.Assignments.ListByWorkItem(ctx, fx.p1.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, fx.phases[0].ID, assignments[0].PhaseID)
}

func TestScheduleService_SaveWithoutEditsIsNoop(t *testing.T) {
	e := setupEnv(t)
	fx := seedSchedule(t, e)
	svc := e.schedule(nil)

	ws := openWorkspace(t, svc, fx.project.ID)
	resp, err := svc.Save(context.Background(), ws)
	require.NoError(t, err)
	assert.True(t, resp.Unchanged())
}

func TestScheduleService_SaveRejectsOverAllocation(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	fx := seedSchedule(t, e)
	svc := e.schedule(nil)

	ws := openWorkspace(t, svc, fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, 70))
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[1].ID, 40))
	require.NoError(t, ws.SetProportion(fx.p2.ID, fx.phases[0].ID, 20))

	_, err := svc.Save(ctx, ws)
	require.Error(t, err)
	var ve *contract.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Issues, 1)
	assert.Equal(t, fx.p1.ID, ve.Issues[0].WorkItemID)
	assert.Contains(t, err.Error(), "VALIDATION_FAILED")

	assert.True(t, ws.Store.IsDirty(), "edits kept for correction")
	for _, id := range []string{fx.p1.ID, fx.p2.ID} {
		weekly, err := svc.Weekly(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, weekly, "nothing written for any item")
	}
}

func TestScheduleService_SetProportionRejectsBadInput(t *testing.T) {
	e := setupEnv(t)
	fx := seedSchedule(t, e)
	ws := openWorkspace(t, e.schedule(nil), fx.project.ID)

	assert.Error(t, ws.SetProportion(fx.group.ID, fx.phases[0].ID, 10), "klasifikasi is not assignable")
	assert.Error(t, ws.SetProportion(fx.p1.ID, "unknown", 10))
	assert.Error(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, 101))
	assert.Error(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, -1))
	assert.False(t, ws.Store.IsDirty())
}

func TestScheduleService_SaveRollsBackOnWriteFailure(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	fx := seedSchedule(t, e)

	// Week 1 of p1 is written, week 2 fails.
	failUoW := &testutil.FailingUoW{DB: e.db, Table: "progress_weekly", Nth: 2, Err: errors.New("injected write failure")}
	svc := e.schedule(failUoW)

	ws := openWorkspace(t, svc, fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, 40))
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[1].ID, 60))

	_, err := svc.Save(ctx, ws)
	require.Error(t, err)
	var se *contract.SaveError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, contract.SaveErrPersistence, se.Code)
	assert.Contains(t, err.Error(), "injected write failure")

	weekly, err := svc.Weekly(ctx, fx.p1.ID)
	require.NoError(t, err)
	assert.Empty(t, weekly, "transaction rolled back")
	assert.Equal(t, 2, ws.Store.DirtyCount())
}

func TestScheduleService_PhaseRowFailureRollsBackWeeklyRows(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	fx := seedSchedule(t, e)

	failUoW := &testutil.FailingUoW{DB: e.db, Table: "pekerjaan_tahapan", Nth: 1, Err: errors.New("injected phase row failure")}
	svc := e.schedule(failUoW)

	ws := openWorkspace(t, svc, fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, 40))
	_, err := svc.Save(ctx, ws)
	require.ErrorContains(t, err, "injected phase row failure")

	weekly, err := svc.Weekly(ctx, fx.p1.ID)
	require.NoError(t, err)
	assert.Empty(t, weekly)
	assignments, err := e.repos.Assignments.ListByWorkItem(ctx, fx.p1.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
	assert.True(t, ws.Store.IsDirty())
}

func TestScheduleService_RegenerationRederivesFromWeekly(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	fx := seedSchedule(t, e)
	svc := e.schedule(nil)

	ws := openWorkspace(t, svc, fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, 40))
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[1].ID, 35.5))
	_, err := svc.Save(ctx, ws)
	require.NoError(t, err)

	monthly, err := NewPhaseService(e.repos.Projects, e.repos.Phases, e.uow).Generate(ctx, fx.project.ID, domain.ScaleMonthly)
	require.NoError(t, err)
	require.Len(t, monthly, 1)

	assignments, err := e.repos.Assignments.ListByWorkItem(ctx, fx.p1.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments, "old phase assignments cascade away")

	reloaded := openWorkspace(t, svc, fx.project.ID)
	assert.Equal(t, domain.ScaleMonthly, reloaded.Model.Scale)
	assert.InDelta(t, 75.5, reloaded.Store.Get(fx.p1.ID, timescale.ColumnID(monthly[0].ID)), 0.01)
}

func rowTotal(ws *app.Workspace, itemID string) (float64, int) {
	var total float64
	cells := 0
	for _, c := range ws.Store.Row(itemID) {
		if c.Proportion != 0 {
			total += c.Proportion
			cells++
		}
	}
	return total, cells
}

func TestScheduleService_EditAfterRegenerationKeepsWholeRow(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	fx := seedSchedule(t, e)
	svc := e.schedule(nil)

	ws := openWorkspace(t, svc, fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, 40))
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[1].ID, 35))
	_, err := svc.Save(ctx, ws)
	require.NoError(t, err)

	daily, err := NewPhaseService(e.repos.Projects, e.repos.Phases, e.uow).Generate(ctx, fx.project.ID, domain.ScaleDaily)
	require.NoError(t, err)
	require.Len(t, daily, 20)

	ws = openWorkspace(t, svc, fx.project.ID)
	total, cells := rowTotal(ws, fx.p1.ID)
	assert.InDelta(t, 75.0, total, 1e-9)
	assert.Equal(t, 13, cells)

	// One edit on 6 Jan (week 1 spread 6.67, 6.67, 6.67, 6.67, 6.66, 6.66).
	require.Equal(t, 6.67, ws.Store.Get(fx.p1.ID, timescale.ColumnID(daily[0].ID)))
	require.NoError(t, ws.SetProportion(fx.p1.ID, daily[0].ID, 7.67))
	_, err = svc.Save(ctx, ws)
	require.NoError(t, err)

	ws = openWorkspace(t, svc, fx.project.ID)
	total, cells = rowTotal(ws, fx.p1.ID)
	assert.InDelta(t, 76.0, total, 1e-9)
	assert.Equal(t, 13, cells, "untouched days survive the reload")

	require.NoError(t, ws.SetProportion(fx.p1.ID, daily[7].ID, 6))
	_, err = svc.Save(ctx, ws)
	require.NoError(t, err)

	weekly, err := svc.Weekly(ctx, fx.p1.ID)
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	assert.Equal(t, 1, weekly[0].WeekNumber)
	assert.InDelta(t, 41.0, weekly[0].Proportion, 1e-9)
	assert.Equal(t, 2, weekly[1].WeekNumber)
	assert.InDelta(t, 36.0, weekly[1].Proportion, 1e-9)

	assignments, err := e.repos.Assignments.ListByWorkItem(ctx, fx.p1.ID)
	require.NoError(t, err)
	assert.Len(t, assignments, 13)
}

func TestScheduleService_FullWeekSurvivesDailyRegeneration(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	fx := seedSchedule(t, e)
	svc := e.schedule(nil)

	ws := openWorkspace(t, svc, fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[1].ID, 100))
	_, err := svc.Save(ctx, ws)
	require.NoError(t, err)

	daily, err := NewPhaseService(e.repos.Projects, e.repos.Phases, e.uow).Generate(ctx, fx.project.ID, domain.ScaleDaily)
	require.NoError(t, err)

	ws = openWorkspace(t, svc, fx.project.ID)
	total, _ := rowTotal(ws, fx.p1.ID)
	assert.InDelta(t, 100.0, total, 1e-9)

	// 12 Jan starts week 2; lowering it must still save.
	col := timescale.ColumnID(daily[6].ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, daily[6].ID, ws.Store.Get(fx.p1.ID, col)-0.01))
	_, err = svc.Save(ctx, ws)
	require.NoError(t, err)

	weekly, err := svc.Weekly(ctx, fx.p1.ID)
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.InDelta(t, 99.99, weekly[0].Proportion, 1e-9)
}

func TestScheduleService_ConcurrentOpensShareOneLoad(t *testing.T) {
	e := setupEnv(t)
	fx := seedSchedule(t, e)
	ctx := context.Background()

	ws := openWorkspace(t, e.schedule(nil), fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p1.ID, fx.phases[0].ID, 40))
	_, err := e.schedule(nil).Save(ctx, ws)
	require.NoError(t, err)

	gate := newGatedAssignments(e.repos.Assignments)
	repos := e.repos
	repos.Assignments = gate
	svc := NewScheduleService(repos, e.uow, nil, 3)

	type result struct {
		ws  *app.Workspace
		err error
	}
	results := make(chan result, 2)
	open := func() {
		ws, err := svc.Open(ctx, fx.project.ID, nil)
		results <- result{ws: ws, err: err}
	}

	go open()
	<-gate.started
	go open()
	time.Sleep(100 * time.Millisecond)
	close(gate.release)

	var opened []*app.Workspace
	for i := 0; i < 2; i++ {
		r := <-results
		require.NoError(t, r.err)
		opened = append(opened, r.ws)
	}
	assert.EqualValues(t, 2, gate.calls.Load(), "one fetch per item across both opens")
	assert.NotSame(t, opened[0].Store, opened[1].Store)
	col, _ := opened[0].Model.ColumnForPhase(fx.phases[0].ID)
	for _, w := range opened {
		assert.Equal(t, 40.0, w.Store.Get(fx.p1.ID, col.ID))
	}

	// A later open fetches again.
	_ = openWorkspace(t, svc, fx.project.ID)
	assert.EqualValues(t, 4, gate.calls.Load())
}

func TestScheduleService_ObserverSeesSave(t *testing.T) {
	e := setupEnv(t)
	fx := seedSchedule(t, e)
	obs := &recordingObserver{}
	svc := e.schedule(nil, obs)

	ws := openWorkspace(t, svc, fx.project.ID)
	require.NoError(t, ws.SetProportion(fx.p2.ID, fx.phases[2].ID, 25))
	_, err := svc.Save(context.Background(), ws)
	require.NoError(t, err)

	saves := obs.named("save-schedule")
	require.Len(t, saves, 1)
	assert.True(t, saves[0].Success)
	assert.Equal(t, 1, saves[0].Fields["created"])
	assert.Len(t, obs.named("open-schedule"), 1)
}
