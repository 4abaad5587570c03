// Package progress derives phase, work item and project completion figures
// from grid snapshots. Every function is pure: inputs are never modified.
package progress

import (
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/grid"
	"github.com/alexanderramin/kurva/internal/timescale"
)

// Contribution is one work item's share of a phase, for drill-down views.
type Contribution struct {
	WorkItemID string
	Name       string
	Path       []string
	Volume     float64
	Percent    float64
}

// PhaseProgress is the aggregated completion of one phase.
type PhaseProgress struct {
	PhaseID       string
	Progress      float64
	TotalVolume   float64
	SampleCount   int
	Contributions []Contribution
}

// ComputePhaseProgress aggregates positive assignments per phase. A phase's
// progress is the volume-weighted mean of its assignments; when none of the
// contributing items has volume it falls back to the plain mean. Results are
// clamped to [0, 100] and rounded to two decimals. Every phase in phases has
// an entry, even without assignments.
func ComputePhaseProgress(phases []domain.Phase, items []domain.WorkItem, cells []grid.Cell, model *timescale.Model) map[string]PhaseProgress {
	columnPhase := make(map[string]string, len(model.Columns))
	for _, c := range model.Columns {
		if c.PhaseID != "" {
			columnPhase[c.ID] = c.PhaseID
		}
	}
	byID := indexItems(items)

	type accumulator struct {
		weightedSum float64
		volumeSum   float64
		percentSum  float64
		count       int
		contribs    []Contribution
	}
	acc := make(map[string]*accumulator, len(phases))
	for _, p := range phases {
		acc[p.ID] = &accumulator{}
	}

	for _, cell := range cells {
		if !(cell.Proportion > 0) || !domain.IsUsableNumber(cell.Proportion) {
			continue
		}
		phaseID, ok := columnPhase[cell.ColumnID]
		if !ok {
			continue
		}
		a, ok := acc[phaseID]
		if !ok {
			a = &accumulator{}
			acc[phaseID] = a
		}

		item := byID[cell.WorkItemID]
		a.weightedSum += item.Volume * cell.Proportion
		a.volumeSum += item.Volume
		a.percentSum += cell.Proportion
		a.count++
		a.contribs = append(a.contribs, Contribution{
			WorkItemID: cell.WorkItemID,
			Name:       domain.CoalesceStr(item.Name, cell.WorkItemID),
			Path:       item.Path,
			Volume:     item.Volume,
			Percent:    cell.Proportion,
		})
	}

	out := make(map[string]PhaseProgress, len(acc))
	for phaseID, a := range acc {
		var value float64
		switch {
		case a.volumeSum > 0:
			value = a.weightedSum / a.volumeSum
		case a.count > 0:
			// Unmeasured items: plain mean keeps the phase readable.
			value = a.percentSum / float64(a.count)
		}
		out[phaseID] = PhaseProgress{
			PhaseID:       phaseID,
			Progress:      domain.Round2(domain.ClampPercent(value)),
			TotalVolume:   a.volumeSum,
			SampleCount:   a.count,
			Contributions: a.contribs,
		}
	}
	return out
}

func indexItems(items []domain.WorkItem) map[string]domain.WorkItem {
	byID := make(map[string]domain.WorkItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return byID
}
