package domain

import "time"

// Phase is a tahapan: one scheduled time period of the project. Phases are
// produced by generation (daily, weekly, monthly) or defined by hand, and are
// read-only to the scheduling engine.
type Phase struct {
	ID              string
	ProjectID       string
	Urutan          int
	Name            string
	StartDate       *time.Time
	EndDate         *time.Time
	IsAutoGenerated bool
	GenerationMode  GenerationMode
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasStart reports whether the phase carries a usable start date.
func (p *Phase) HasStart() bool {
	return p.StartDate != nil && !p.StartDate.IsZero()
}

// HasRange reports whether both start and end dates are usable.
func (p *Phase) HasRange() bool {
	return p.HasStart() && p.EndDate != nil && !p.EndDate.IsZero()
}
