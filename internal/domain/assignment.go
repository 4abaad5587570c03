package domain

import "time"

// PhaseAssignment is the stored proportion of one work item in one phase.
type PhaseAssignment struct {
	WorkItemID string
	PhaseID    string
	Proportion float64
	UpdatedAt  time.Time
}
