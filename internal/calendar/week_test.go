package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWeekNumberOf_MondayStartSaturdayEnd(t *testing.T) {
	start := date("2025-01-06") // Monday
	cases := []struct {
		day  string
		want int
	}{
		{"2025-01-01", 1}, // before start
		{"2025-01-06", 1},
		{"2025-01-11", 1}, // first Saturday
		{"2025-01-12", 2},
		{"2025-01-18", 2},
		{"2025-01-19", 3},
		{"2025-02-01", 4},
		{"2025-02-02", 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WeekNumberOf(date(tc.day), start, time.Saturday), tc.day)
	}
}

func TestWeekNumberOf_StartOnWeekEnd(t *testing.T) {
	start := date("2025-01-11") // Saturday
	assert.Equal(t, 1, WeekNumberOf(date("2025-01-11"), start, time.Saturday))
	assert.Equal(t, 2, WeekNumberOf(date("2025-01-12"), start, time.Saturday))
	assert.Equal(t, 2, WeekNumberOf(date("2025-01-18"), start, time.Saturday))
}

func TestWeekNumberOf_ZeroDatesFailClosed(t *testing.T) {
	start := date("2025-01-06")
	assert.Equal(t, 1, WeekNumberOf(time.Time{}, start, time.Saturday))
	assert.Equal(t, 1, WeekNumberOf(date("2025-03-01"), time.Time{}, time.Saturday))
	assert.Equal(t, 1, WeekNumberOf(date("2025-03-01"), start, time.Weekday(9)))
}

func TestWeekNumberOf_IgnoresClockAndZone(t *testing.T) {
	start := date("2025-01-06")
	jakarta := time.FixedZone("WIB", 7*3600)
	late := time.Date(2025, 1, 11, 23, 59, 0, 0, jakarta)
	assert.Equal(t, 1, WeekNumberOf(late, start, time.Saturday))
}

func TestWeek_BoundsMatchWeekNumbers(t *testing.T) {
	w := NewWeek(date("2025-01-08"), time.Sunday) // Wednesday start
	for n := 1; n <= 6; n++ {
		from, to := w.Bounds(n)
		assert.Equal(t, n, w.Of(from), "week %d start", n)
		assert.Equal(t, n, w.Of(to), "week %d end", n)
		assert.Equal(t, time.Sunday, to.Weekday())
	}
}

func TestEachDay_Inclusive(t *testing.T) {
	var days []string
	EachDay(date("2025-02-27"), date("2025-03-02"), func(d time.Time) bool {
		days = append(days, d.Format(DateLayout))
		return true
	})
	assert.Equal(t, []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}, days)
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
	}{
		{"saturday", time.Saturday},
		{" Sat ", time.Saturday},
		{"sabtu", time.Saturday},
		{"minggu", time.Sunday},
		{"3", time.Wednesday},
	}
	for _, tt := range tests {
		got, err := ParseWeekday(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseWeekday("7")
	assert.Error(t, err)
}
