package app

import (
	"testing"
	"time"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/grid"
	"github.com/alexanderramin/kurva/internal/timescale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkspace(t *testing.T) *Workspace {
	t.Helper()
	phases, err := timescale.GeneratePhases(
		time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC),
		domain.ScaleWeekly, time.Saturday)
	require.NoError(t, err)
	for i := range phases {
		phases[i].ID = []string{"w1", "w2"}[i]
	}
	phases = append(phases, domain.Phase{ID: "undated", Urutan: 3, Name: "Mobilisasi"})

	return &Workspace{
		Phases: phases,
		Model:  timescale.Generate(phases, domain.ScaleWeekly),
		Items:  []domain.WorkItem{{ID: "galian", Name: "Galian", Volume: 10}},
		Store:  grid.NewStore(),
	}
}

func TestSetProportion_RecordsRoundedEdit(t *testing.T) {
	ws := testWorkspace(t)

	require.NoError(t, ws.SetProportion("galian", "w2", 33.336))
	assert.True(t, ws.Store.IsDirty())
	assert.Equal(t, 33.34, ws.Store.Get("galian", timescale.ColumnID("w2")))
}

func TestSetProportion_Rejects(t *testing.T) {
	ws := testWorkspace(t)

	err := ws.SetProportion("beton", "w1", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a pekerjaan")

	err = ws.SetProportion("galian", "undated", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no column")

	for _, v := range []float64{-1, 100.5} {
		err = ws.SetProportion("galian", "w1", v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	}
	assert.False(t, ws.Store.IsDirty())
}

func TestValidationError_ListsIssues(t *testing.T) {
	err := &ValidationError{Issues: []Issue{
		{Message: "total proportion 110.00% exceeds 100%", WorkItemID: "galian"},
		{Message: "nothing to convert"},
	}}
	assert.Equal(t,
		"VALIDATION_FAILED: total proportion 110.00% exceeds 100% (galian); nothing to convert",
		err.Error())
}

func TestSaveResponse_Unchanged(t *testing.T) {
	assert.True(t, (&SaveResponse{}).Unchanged())
	assert.False(t, (&SaveResponse{Deleted: 1}).Unchanged())
}
