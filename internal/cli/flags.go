package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// weekdayValue accepts day names (English or Indonesian) and 0-6.
type weekdayValue struct {
	target *time.Weekday
}

var _ pflag.Value = (*weekdayValue)(nil)

func newWeekdayValue(def time.Weekday, target *time.Weekday) *weekdayValue {
	*target = def
	return &weekdayValue{target: target}
}

func (v *weekdayValue) String() string {
	if v == nil || v.target == nil {
		return ""
	}
	return v.target.String()
}

func (v *weekdayValue) Type() string { return "weekday" }

func (v *weekdayValue) Set(s string) error {
	d, err := calendar.ParseWeekday(s)
	if err != nil {
		return err
	}
	*v.target = d
	return nil
}

// scaleValue accepts a time scale. Generation flags reject custom.
type scaleValue struct {
	target      *domain.TimeScale
	allowCustom bool
}

var _ pflag.Value = (*scaleValue)(nil)

func newScaleValue(def domain.TimeScale, target *domain.TimeScale, allowCustom bool) *scaleValue {
	*target = def
	return &scaleValue{target: target, allowCustom: allowCustom}
}

func (v *scaleValue) String() string {
	if v == nil || v.target == nil {
		return ""
	}
	return string(*v.target)
}

func (v *scaleValue) Type() string { return "scale" }

func (v *scaleValue) Set(s string) error {
	scale, err := domain.ParseTimeScale(s)
	if err != nil {
		return err
	}
	if scale == domain.ScaleCustom && !v.allowCustom {
		return fmt.Errorf("custom phases are added by hand, not generated")
	}
	*v.target = scale
	return nil
}

// dateValue parses YYYY-MM-DD.
type dateValue struct {
	target *time.Time
}

var _ pflag.Value = (*dateValue)(nil)

func (v *dateValue) String() string {
	if v == nil || v.target == nil || v.target.IsZero() {
		return ""
	}
	return v.target.Format(calendar.DateLayout)
}

func (v *dateValue) Type() string { return "date" }

func (v *dateValue) Set(s string) error {
	t, err := time.Parse(calendar.DateLayout, s)
	if err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	*v.target = t
	return nil
}

func addProjectFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "project", "p", "", "Project short ID or ID")
	_ = cmd.MarkFlagRequired("project")
}

// optionalDate returns the flag's date when it was given.
func optionalDate(cmd *cobra.Command, name string, value time.Time) *time.Time {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}
