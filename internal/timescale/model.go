// Package timescale turns phases into the ordered display columns of the
// schedule grid and detects the timeline's prevailing scale.
package timescale

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/domain"
)

// ColumnPrefix is prepended to a phase ID to form its column ID.
const ColumnPrefix = "tahap-"

// Column is one display time bucket (a day, week or month) backed by a phase.
type Column struct {
	ID       string
	PhaseID  string
	Start    time.Time
	End      time.Time // zero when the phase has no end date
	Label    string
	SubLabel string
	Mode     domain.GenerationMode
	// WeekNumber is the project week of a weekly column, 0 when unknown.
	WeekNumber int
}

// HasEnd reports whether the column has an end date.
func (c Column) HasEnd() bool {
	return !c.End.IsZero()
}

// LastDay returns the end date, or the start date for single-day columns.
func (c Column) LastDay() time.Time {
	if c.HasEnd() {
		return c.End
	}
	return c.Start
}

// Model is the generated column set plus the detected scale.
type Model struct {
	Columns []Column
	Scale   domain.TimeScale

	byID    map[string]int
	byPhase map[string]int
	phases  map[string]domain.Phase
}

// ColumnID returns the column ID used for a phase.
func ColumnID(phaseID string) string {
	return ColumnPrefix + phaseID
}

// Generate builds the column model for phases. fallback is kept as the scale
// when there are no phases at all.
func Generate(phases []domain.Phase, fallback domain.TimeScale) *Model {
	scale := DetectScale(phases, fallback)

	m := &Model{
		Scale:   scale,
		byID:    make(map[string]int, len(phases)),
		byPhase: make(map[string]int, len(phases)),
		phases:  make(map[string]domain.Phase, len(phases)),
	}

	ordered := make([]domain.Phase, 0, len(phases))
	for _, p := range phases {
		m.phases[p.ID] = p
		if p.HasStart() {
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.StartDate.Equal(*b.StartDate) {
			return a.StartDate.Before(*b.StartDate)
		}
		return a.Urutan < b.Urutan
	})

	for _, p := range ordered {
		col := Column{
			ID:      ColumnID(p.ID),
			PhaseID: p.ID,
			Start:   calendar.DateOnly(*p.StartDate),
			Label:   phaseLabel(p),
			Mode:    p.GenerationMode,
		}
		if col.Mode == domain.GenerationNone {
			col.Mode = scale.GenerationMode()
		}
		if p.EndDate != nil && !p.EndDate.IsZero() {
			col.End = calendar.DateOnly(*p.EndDate)
		}
		col.SubLabel = formatRange(col.Start, col.End)
		if p.IsAutoGenerated && p.GenerationMode == domain.GenerationWeekly && p.Urutan > 0 {
			col.WeekNumber = p.Urutan
		}

		m.byID[col.ID] = len(m.Columns)
		m.byPhase[p.ID] = len(m.Columns)
		m.Columns = append(m.Columns, col)
	}
	return m
}

// DetectScale returns the most common generation mode among auto-generated
// phases, ties going to the mode seen first. Projects with only manual phases
// are custom; projects without phases keep fallback.
func DetectScale(phases []domain.Phase, fallback domain.TimeScale) domain.TimeScale {
	if len(phases) == 0 {
		return fallback
	}
	counts := make(map[domain.GenerationMode]int)
	var order []domain.GenerationMode
	for _, p := range phases {
		if !p.IsAutoGenerated || p.GenerationMode == domain.GenerationNone {
			continue
		}
		if counts[p.GenerationMode] == 0 {
			order = append(order, p.GenerationMode)
		}
		counts[p.GenerationMode]++
	}
	if len(order) == 0 {
		return domain.ScaleCustom
	}
	best := order[0]
	for _, mode := range order[1:] {
		if counts[mode] > counts[best] {
			best = mode
		}
	}
	return best.Scale()
}

// Column looks up a column by ID.
func (m *Model) Column(id string) (Column, bool) {
	i, ok := m.byID[id]
	if !ok {
		return Column{}, false
	}
	return m.Columns[i], true
}

// ColumnForPhase looks up the column generated for phaseID.
func (m *Model) ColumnForPhase(phaseID string) (Column, bool) {
	i, ok := m.byPhase[phaseID]
	if !ok {
		return Column{}, false
	}
	return m.Columns[i], true
}

// Phase returns the phase a model was generated from, including phases that
// produced no column.
func (m *Model) Phase(id string) (domain.Phase, bool) {
	p, ok := m.phases[id]
	return p, ok
}

// Range returns the earliest column start and latest column end. ok is false
// when the model has no columns.
func (m *Model) Range() (from, to time.Time, ok bool) {
	for i, c := range m.Columns {
		last := c.LastDay()
		if i == 0 || c.Start.Before(from) {
			from = c.Start
		}
		if i == 0 || last.After(to) {
			to = last
		}
	}
	return from, to, len(m.Columns) > 0
}

func phaseLabel(p domain.Phase) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Tahap %d", p.Urutan)
}

func formatRange(start, end time.Time) string {
	const layout = "02 Jan 2006"
	if end.IsZero() || calendar.DayNumber(start) == calendar.DayNumber(end) {
		return start.Format(layout)
	}
	if start.Year() == end.Year() {
		return start.Format("02 Jan") + " - " + end.Format(layout)
	}
	return start.Format(layout) + " - " + end.Format(layout)
}
