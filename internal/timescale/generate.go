package timescale

import (
	"fmt"
	"time"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/domain"
)

// GeneratePhases splits [start, end] into auto-generated phases of the given
// scale. Weekly phases follow project weeks (the first one may be short),
// monthly phases follow calendar months clipped to the project range. IDs are
// left empty for the caller to assign.
func GeneratePhases(start, end time.Time, scale domain.TimeScale, weekEnd time.Weekday) ([]domain.Phase, error) {
	start, end = calendar.DateOnly(start), calendar.DateOnly(end)
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", end.Format(calendar.DateLayout), start.Format(calendar.DateLayout))
	}

	var phases []domain.Phase
	add := func(name string, from, to time.Time) {
		phases = append(phases, domain.Phase{
			Urutan:          len(phases) + 1,
			Name:            name,
			StartDate:       &from,
			EndDate:         &to,
			IsAutoGenerated: true,
			GenerationMode:  scale.GenerationMode(),
		})
	}

	switch scale {
	case domain.ScaleDaily:
		calendar.EachDay(start, end, func(d time.Time) bool {
			add(fmt.Sprintf("Hari %d", len(phases)+1), d, d)
			return true
		})
	case domain.ScaleWeekly:
		week := calendar.NewWeek(start, weekEnd)
		for n := 1; ; n++ {
			from, to := week.Bounds(n)
			if from.After(end) {
				break
			}
			if to.After(end) {
				to = end
			}
			add(fmt.Sprintf("Minggu %d", n), from, to)
		}
	case domain.ScaleMonthly:
		for from := start; !from.After(end); {
			to := time.Date(from.Year(), from.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
			if to.After(end) {
				to = end
			}
			add(fmt.Sprintf("Bulan %d (%s)", len(phases)+1, from.Format("Jan 2006")), from, to)
			from = to.AddDate(0, 0, 1)
		}
	default:
		return nil, fmt.Errorf("cannot generate phases for %q scale", scale)
	}
	return phases, nil
}
