package progress

import (
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/grid"
	"github.com/alexanderramin/kurva/internal/timescale"
)

// ComputeProjectProgress returns the project-wide planned completion: each
// item's summed proportion (capped at 100) weighted by its volume. Projects
// without any volume use the plain mean over items.
func ComputeProjectProgress(items []domain.WorkItem, cells []grid.Cell, model *timescale.Model) float64 {
	if len(items) == 0 {
		return 0
	}
	totals := itemTotals(cells, model)

	var weighted, volume, plain float64
	for _, it := range items {
		pct := domain.ClampPercent(totals[it.ID])
		weighted += it.Volume * pct
		volume += it.Volume
		plain += pct
	}
	if volume > 0 {
		return domain.Round2(weighted / volume)
	}
	return domain.Round2(plain / float64(len(items)))
}

// CurvePoint is one column of the cumulative progress (S) curve.
type CurvePoint struct {
	ColumnID   string
	Label      string
	Period     float64
	Cumulative float64
}

// CumulativeCurve returns per-column and cumulative planned project
// progress, weighted the same way as ComputeProjectProgress.
func CumulativeCurve(items []domain.WorkItem, cells []grid.Cell, model *timescale.Model) []CurvePoint {
	byID := indexItems(items)
	var totalVolume float64
	for _, it := range items {
		totalVolume += it.Volume
	}

	perColumn := make(map[string]float64, len(model.Columns))
	for _, cell := range cells {
		if !(cell.Proportion > 0) || !domain.IsUsableNumber(cell.Proportion) {
			continue
		}
		it, known := byID[cell.WorkItemID]
		if !known {
			continue
		}
		switch {
		case totalVolume > 0:
			perColumn[cell.ColumnID] += it.Volume * cell.Proportion / totalVolume
		case len(items) > 0:
			perColumn[cell.ColumnID] += cell.Proportion / float64(len(items))
		}
	}

	points := make([]CurvePoint, 0, len(model.Columns))
	var cumulative float64
	for _, c := range model.Columns {
		period := perColumn[c.ID]
		cumulative += period
		points = append(points, CurvePoint{
			ColumnID:   c.ID,
			Label:      c.Label,
			Period:     domain.Round2(period),
			Cumulative: domain.Round2(domain.ClampPercent(cumulative)),
		})
	}
	return points
}

func itemTotals(cells []grid.Cell, model *timescale.Model) map[string]float64 {
	totals := make(map[string]float64)
	for _, cell := range cells {
		if !(cell.Proportion > 0) || !domain.IsUsableNumber(cell.Proportion) {
			continue
		}
		if _, ok := model.Column(cell.ColumnID); !ok {
			continue
		}
		totals[cell.WorkItemID] += cell.Proportion
	}
	return totals
}
