package canonical

import (
	"math"
	"time"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/timescale"
)

// FromCanonical derives display values for the columns of model from one
// work item's canonical records. A week goes straight to the weekly column
// carrying its number; otherwise its proportion is spread evenly over the
// week's days that fall inside a column, and each column receives the share
// of its days. A week no column covers goes to the column starting in it, and
// is dropped with a warning when there is none. Shares are allocated in whole
// hundredths with the remainder going to the earliest days, so the columns of
// a week add up exactly to its two-decimal total. Output follows column order
// and omits zero cells.
func (c *Converter) FromCanonical(records []domain.CanonicalRecord, model *timescale.Model, week calendar.Week) []ColumnValue {
	totals := make(map[int]float64)
	var weeks []int
	for _, r := range MergeByWeek(records) {
		if r.Proportion <= 0 || !domain.IsUsableNumber(r.Proportion) {
			continue
		}
		if _, ok := totals[r.WeekNumber]; !ok {
			weeks = append(weeks, r.WeekNumber)
		}
		totals[r.WeekNumber] += r.Proportion
	}
	if len(weeks) == 0 {
		return nil
	}

	numbered := make(map[int]string)
	dayColumn := make(map[int]string)
	startWeek := make(map[int]string)
	for _, col := range model.Columns {
		if col.WeekNumber > 0 {
			if _, taken := numbered[col.WeekNumber]; !taken {
				numbered[col.WeekNumber] = col.ID
			}
			continue
		}
		if _, taken := startWeek[week.Of(col.Start)]; !taken {
			startWeek[week.Of(col.Start)] = col.ID
		}
		calendar.EachDay(col.Start, col.LastDay(), func(d time.Time) bool {
			n := calendar.DayNumber(d)
			if _, taken := dayColumn[n]; !taken {
				dayColumn[n] = col.ID
			}
			return true
		})
	}

	perColumn := make(map[string]int64)
	for _, w := range weeks {
		total := toCents(totals[w])
		if id, ok := numbered[w]; ok {
			perColumn[id] += total
			continue
		}

		from, to := week.Bounds(w)
		var covered []string
		calendar.EachDay(from, to, func(d time.Time) bool {
			if id, ok := dayColumn[calendar.DayNumber(d)]; ok {
				covered = append(covered, id)
			}
			return true
		})
		if len(covered) > 0 {
			for i, share := range splitCents(total, len(covered)) {
				perColumn[covered[i]] += share
			}
			continue
		}
		if id, ok := startWeek[w]; ok {
			perColumn[id] += total
			continue
		}
		c.logger.Warn("dropping canonical week without a matching column",
			"work_item_id", records[0].WorkItemID, "week", w, "proportion", totals[w])
	}

	var out []ColumnValue
	for _, col := range model.Columns {
		if cents := perColumn[col.ID]; cents != 0 {
			out = append(out, ColumnValue{ColumnID: col.ID, Proportion: float64(cents) / 100})
		}
	}
	return out
}

func toCents(v float64) int64 {
	return int64(math.Round(domain.Round2(v) * 100))
}

// splitCents divides total into n near-equal parts. Every part gets the
// floor share; the leftover hundredths go one each to the first parts.
func splitCents(total int64, n int) []int64 {
	parts := make([]int64, n)
	base, rest := total/int64(n), total%int64(n)
	for i := range parts {
		parts[i] = base
		if int64(i) < rest {
			parts[i]++
		}
	}
	return parts
}
