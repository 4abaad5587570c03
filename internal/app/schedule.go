package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/grid"
	"github.com/alexanderramin/kurva/internal/progress"
	"github.com/alexanderramin/kurva/internal/timescale"
	"github.com/alexanderramin/kurva/internal/worktree"
)

// Workspace is one project's schedule grid loaded for editing.
type Workspace struct {
	Project   *domain.Project
	Phases    []domain.Phase
	Model     *timescale.Model
	Roots     []*domain.WorkNode
	Items     []domain.WorkItem
	Store     *grid.Store
	Expansion *worktree.Expansion
	Week      calendar.Week
}

// Item returns the work item with id.
func (w *Workspace) Item(id string) (domain.WorkItem, bool) {
	for _, it := range w.Items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.WorkItem{}, false
}

// SaveRequest is the canonical payload persisted on save.
type SaveRequest struct {
	Assignments []domain.CanonicalRecord `validate:"dive"`
	Mode        domain.TimeScale         `validate:"required,oneof=daily weekly monthly custom"`
	WeekEndDay  time.Weekday             `validate:"gte=0,lte=6"`
}

type SaveResponse struct {
	Created int
	Updated int
	Deleted int
	// WorkItems lists the items whose rows were written.
	WorkItems []string
}

// Unchanged reports whether the save wrote nothing.
func (r *SaveResponse) Unchanged() bool {
	return r.Created == 0 && r.Updated == 0 && r.Deleted == 0
}

type SaveErrorCode string

const (
	SaveErrInvalidPayload SaveErrorCode = "INVALID_PAYLOAD"
	SaveErrValidation     SaveErrorCode = "VALIDATION_FAILED"
	SaveErrPersistence    SaveErrorCode = "PERSISTENCE_FAILED"
)

type SaveError struct {
	Code    SaveErrorCode
	Message string
}

func (e *SaveError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Issue is one validation failure tied to a work item.
type Issue struct {
	Message    string
	WorkItemID string
}

// ValidationError lists every problem that blocked a save.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		if is.WorkItemID != "" {
			msgs[i] = fmt.Sprintf("%s (%s)", is.Message, is.WorkItemID)
		} else {
			msgs[i] = is.Message
		}
	}
	return string(SaveErrValidation) + ": " + strings.Join(msgs, "; ")
}

// ProgressReport bundles the figures shown for a loaded workspace.
type ProgressReport struct {
	Phases  []progress.PhaseProgress
	Bars    []progress.Bar
	Project float64
	Curve   []progress.CurvePoint
}

// SetProportion records a pending edit of item's proportion in the column of
// phaseID.
func (w *Workspace) SetProportion(itemID, phaseID string, value float64) error {
	if _, ok := w.Item(itemID); !ok {
		return fmt.Errorf("work item %s is not a pekerjaan of this project", itemID)
	}
	col, ok := w.Model.ColumnForPhase(phaseID)
	if !ok {
		return fmt.Errorf("phase %s has no column (missing start date?)", phaseID)
	}
	if !domain.IsUsableNumber(value) || value < 0 || value > domain.MaxProportion {
		return fmt.Errorf("proportion %v out of range 0-100", value)
	}
	w.Store.SetModified(itemID, col.ID, domain.Round2(value))
	return nil
}
