package progress

import (
	"sort"
	"time"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/grid"
	"github.com/alexanderramin/kurva/internal/timescale"
)

// Segment is one column of a work item bar.
type Segment struct {
	ColumnID string
	Label    string
	Start    time.Time
	End      time.Time
	Percent  float64
}

// Bar is the timeline roll-up of one work item.
type Bar struct {
	WorkItemID string
	Name       string
	Start      time.Time
	End        time.Time
	// Percent is the summed proportion capped to [0, 100] for display;
	// RawPercent keeps the uncapped sum.
	Percent    float64
	RawPercent float64
	Segments   []Segment
}

// Empty reports whether the bar has no assigned columns.
func (b Bar) Empty() bool {
	return len(b.Segments) == 0
}

// ComputeWorkItemBars builds one bar per work item, in item order. A bar
// spans its assigned columns and its percent is the sum of their
// proportions. Items without assignments get a zero bar over the whole
// project range so every row keeps its slot.
func ComputeWorkItemBars(items []domain.WorkItem, cells []grid.Cell, model *timescale.Model) []Bar {
	perItem := make(map[string][]Segment)
	for _, cell := range cells {
		if cell.Proportion == 0 || !domain.IsUsableNumber(cell.Proportion) {
			continue
		}
		col, ok := model.Column(cell.ColumnID)
		if !ok {
			continue
		}
		perItem[cell.WorkItemID] = append(perItem[cell.WorkItemID], Segment{
			ColumnID: col.ID,
			Label:    col.Label,
			Start:    col.Start,
			End:      col.LastDay(),
			Percent:  cell.Proportion,
		})
	}

	projectStart, projectEnd, _ := model.Range()
	bars := make([]Bar, 0, len(items))
	for _, it := range items {
		segs := perItem[it.ID]
		bar := Bar{WorkItemID: it.ID, Name: it.Name}
		if len(segs) == 0 {
			bar.Start, bar.End = projectStart, projectEnd
			bars = append(bars, bar)
			continue
		}

		sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start.Before(segs[j].Start) })
		var sum float64
		for i, s := range segs {
			sum += s.Percent
			if i == 0 || s.Start.Before(bar.Start) {
				bar.Start = s.Start
			}
			if i == 0 || s.End.After(bar.End) {
				bar.End = s.End
			}
		}
		bar.RawPercent = domain.Round2(sum)
		bar.Percent = domain.ClampPercent(bar.RawPercent)
		bar.Segments = segs
		bars = append(bars, bar)
	}
	return bars
}
