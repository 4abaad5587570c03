package domain

import (
	"fmt"
	"regexp"
	"time"
)

var shortIDPattern = regexp.MustCompile(`^[A-Z]{3,6}[0-9]{2,4}$`)

// DefaultWeekEndDay closes every project week unless configured otherwise.
const DefaultWeekEndDay = time.Saturday

type Project struct {
	ID           string
	ShortID      string
	Name         string
	StartDate    time.Time
	EndDate      *time.Time
	WeekEndDay   time.Weekday
	DefaultScale TimeScale
	Status       ProjectStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateShortID checks that ShortID is non-empty and matches the required
// format: 3-6 uppercase letters followed by 2-4 digits (e.g. GDG01, JLN0234).
func (p *Project) ValidateShortID() error {
	if p.ShortID == "" {
		return fmt.Errorf("short ID is required (use --id flag)")
	}
	if !shortIDPattern.MatchString(p.ShortID) {
		return fmt.Errorf("short ID %q must be 3-6 uppercase letters followed by 2-4 digits (e.g. GDG01)", p.ShortID)
	}
	return nil
}

// ValidateDates checks that the project timeline is well formed.
func (p *Project) ValidateDates() error {
	if p.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("end date %s is before start date %s",
			p.EndDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
	}
	if p.WeekEndDay < time.Sunday || p.WeekEndDay > time.Saturday {
		return fmt.Errorf("week end day %d out of range", p.WeekEndDay)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers ShortID; if empty it truncates ID to 8 characters.
func (p *Project) DisplayID() string {
	if p.ShortID != "" {
		return p.ShortID
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
