// Package canonical converts display-mode assignments into weekly canonical
// records and derives display values back from them.
//
// Canonical records are indexed by project week (see calendar.WeekNumberOf).
// Weekly and custom columns map one to one onto a week, daily columns are
// summed into their week, and monthly columns are spread evenly over their
// days before being summed per week. Every emitted proportion is rounded to
// two decimals, ties away from zero.
package canonical

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/timescale"
)

// ColumnValue is one display cell of a work item. ColumnID may also hold a
// bare phase ID.
type ColumnValue struct {
	ColumnID   string
	Proportion float64
}

// Converter carries the logger used to report skipped input.
type Converter struct {
	logger *slog.Logger
}

// NewConverter returns a Converter. A nil logger discards warnings.
func NewConverter(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{logger: logger}
}

// resolved is a value whose column and phase have been looked up.
type resolved struct {
	value  float64
	phase  domain.Phase
	column timescale.Column
	hasCol bool
}

// ToCanonical converts one work item's display values into canonical weekly
// records using mode. Negative or non-finite proportions and phases without
// the dates the mode needs are skipped with a warning; zero proportions pass
// through so a cleared cell can clear its stored week. An empty result means
// there is nothing to persist for the item.
func (c *Converter) ToCanonical(workItemID string, values []ColumnValue, mode domain.TimeScale, model *timescale.Model, week calendar.Week) []domain.CanonicalRecord {
	entries := c.resolve(workItemID, values, model)

	switch mode {
	case domain.ScaleWeekly:
		return c.weekly(workItemID, entries, week, true, "weekly")
	case domain.ScaleDaily:
		return c.daily(workItemID, entries, week)
	case domain.ScaleMonthly:
		return c.monthly(workItemID, entries, week)
	default:
		return c.weekly(workItemID, entries, week, false, "custom")
	}
}

func (c *Converter) resolve(workItemID string, values []ColumnValue, model *timescale.Model) []resolved {
	out := make([]resolved, 0, len(values))
	for _, v := range values {
		if !domain.IsUsableNumber(v.Proportion) {
			c.logger.Warn("skipping non-numeric proportion",
				"work_item_id", workItemID, "column_id", v.ColumnID)
			continue
		}
		if v.Proportion < 0 {
			c.logger.Warn("skipping negative proportion",
				"work_item_id", workItemID, "column_id", v.ColumnID, "proportion", v.Proportion)
			continue
		}

		r := resolved{value: v.Proportion}
		if col, ok := model.Column(v.ColumnID); ok {
			r.column, r.hasCol = col, true
			r.phase, _ = model.Phase(col.PhaseID)
		} else if p, ok := model.Phase(v.ColumnID); ok {
			r.phase = p
			r.column, r.hasCol = model.ColumnForPhase(p.ID)
		} else {
			c.logger.Warn("skipping value for unknown column",
				"work_item_id", workItemID, "column_id", v.ColumnID)
			continue
		}

		if !r.phase.HasStart() {
			c.logger.Warn("skipping phase without start date",
				"work_item_id", workItemID, "phase_id", r.phase.ID)
			continue
		}
		out = append(out, r)
	}
	return out
}

// weekly emits one record per entry. When useColumnWeek is set, a week number
// already assigned to the column wins over the phase start date.
func (c *Converter) weekly(workItemID string, entries []resolved, week calendar.Week, useColumnWeek bool, note string) []domain.CanonicalRecord {
	records := make([]domain.CanonicalRecord, 0, len(entries))
	for _, e := range entries {
		n := 0
		if useColumnWeek && e.hasCol {
			n = e.column.WeekNumber
		}
		if n <= 0 {
			n = week.Of(*e.phase.StartDate)
		}
		records = append(records, domain.CanonicalRecord{
			WorkItemID: workItemID,
			WeekNumber: n,
			Proportion: domain.Round2(e.value),
			Notes:      note,
		})
	}
	return records
}

func (c *Converter) daily(workItemID string, entries []resolved, week calendar.Week) []domain.CanonicalRecord {
	acc := newWeekAccumulator()
	for _, e := range entries {
		acc.add(week.Of(*e.phase.StartDate), e.value)
	}
	return acc.records(workItemID, func(sources int) string {
		return fmt.Sprintf("daily: aggregated from %d day(s)", sources)
	})
}

func (c *Converter) monthly(workItemID string, entries []resolved, week calendar.Week) []domain.CanonicalRecord {
	acc := newWeekAccumulator()
	for _, e := range entries {
		if !e.phase.HasRange() {
			c.logger.Warn("skipping monthly phase without end date",
				"work_item_id", workItemID, "phase_id", e.phase.ID)
			continue
		}
		start, end := *e.phase.StartDate, *e.phase.EndDate
		days := calendar.DaysBetween(start, end) + 1
		if days <= 0 {
			c.logger.Warn("skipping monthly phase with end before start",
				"work_item_id", workItemID, "phase_id", e.phase.ID)
			continue
		}

		// Uniform daily rate across the month.
		perDay := e.value / float64(days)
		touched := make(map[int]bool)
		calendar.EachDay(start, end, func(d time.Time) bool {
			n := week.Of(d)
			acc.addPart(n, perDay, !touched[n])
			touched[n] = true
			return true
		})
	}
	return acc.records(workItemID, func(sources int) string {
		return fmt.Sprintf("monthly: split from %d month(s)", sources)
	})
}

type weekAccumulator struct {
	totals  map[int]float64
	sources map[int]int
}

func newWeekAccumulator() *weekAccumulator {
	return &weekAccumulator{totals: make(map[int]float64), sources: make(map[int]int)}
}

func (a *weekAccumulator) add(week int, v float64) {
	a.addPart(week, v, true)
}

func (a *weekAccumulator) addPart(week int, v float64, newSource bool) {
	a.totals[week] += v
	if newSource {
		a.sources[week]++
	}
}

func (a *weekAccumulator) records(workItemID string, note func(sources int) string) []domain.CanonicalRecord {
	weeks := make([]int, 0, len(a.totals))
	for w := range a.totals {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	records := make([]domain.CanonicalRecord, 0, len(weeks))
	for _, w := range weeks {
		records = append(records, domain.CanonicalRecord{
			WorkItemID: workItemID,
			WeekNumber: w,
			Proportion: domain.Round2(a.totals[w]),
			Notes:      note(a.sources[w]),
		})
	}
	return records
}

// MergeByWeek sums records of the same work item and week, keeping the first
// record's notes. Output is sorted by work item then week.
func MergeByWeek(records []domain.CanonicalRecord) []domain.CanonicalRecord {
	type key struct {
		item string
		week int
	}
	merged := make(map[key]*domain.CanonicalRecord)
	var order []key
	for _, r := range records {
		k := key{r.WorkItemID, r.WeekNumber}
		if m, ok := merged[k]; ok {
			m.Proportion = domain.Round2(m.Proportion + r.Proportion)
			continue
		}
		cp := r
		merged[k] = &cp
		order = append(order, k)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].item != order[j].item {
			return order[i].item < order[j].item
		}
		return order[i].week < order[j].week
	})
	out := make([]domain.CanonicalRecord, 0, len(order))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	return out
}
