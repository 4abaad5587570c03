package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/timescale"
	"github.com/google/uuid"
)

// GeneratedProject is a converted import ready for persistence.
type GeneratedProject struct {
	Project     *domain.Project
	Phases      []*domain.Phase
	Nodes       []*domain.WorkNode
	Assignments []domain.PhaseAssignment
}

// Convert transforms a validated ImportSchema into domain objects ready for persistence.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
func Convert(schema *ImportSchema) (*GeneratedProject, error) {
	now := time.Now().UTC().Truncate(time.Second)

	startDate, err := time.Parse(calendar.DateLayout, schema.Project.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	endDate := parseOptionalDate(schema.Project.EndDate)

	weekEnd := domain.DefaultWeekEndDay
	if schema.Project.WeekEndDay != "" {
		if weekEnd, err = calendar.ParseWeekday(schema.Project.WeekEndDay); err != nil {
			return nil, fmt.Errorf("parsing week_end_day: %w", err)
		}
	}

	var genScale string
	if schema.Generate != nil {
		genScale = schema.Generate.Scale
	}
	project := &domain.Project{
		ID:           uuid.New().String(),
		ShortID:      strings.ToUpper(schema.Project.ShortID),
		Name:         schema.Project.Name,
		StartDate:    startDate,
		EndDate:      endDate,
		WeekEndDay:   weekEnd,
		DefaultScale: domain.TimeScale(domain.CoalesceStr(schema.Project.DefaultScale, genScale, string(domain.ScaleWeekly))),
		Status:       domain.ProjectActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Generated phases come first, manual phases follow in file order.
	var phases []*domain.Phase
	if schema.Generate != nil {
		if endDate == nil {
			return nil, fmt.Errorf("generate requires project end_date")
		}
		generated, err := timescale.GeneratePhases(startDate, *endDate, domain.TimeScale(schema.Generate.Scale), weekEnd)
		if err != nil {
			return nil, fmt.Errorf("generating phases: %w", err)
		}
		for i := range generated {
			p := generated[i]
			p.ID = uuid.New().String()
			p.ProjectID = project.ID
			p.CreatedAt, p.UpdatedAt = now, now
			phases = append(phases, &p)
		}
	}
	phaseRefs := make(map[string]string)
	for _, pi := range schema.Phases {
		p := &domain.Phase{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			Urutan:    len(phases) + 1,
			Name:      domain.CoalesceStr(pi.Name, pi.Ref),
			StartDate: parseOptionalDate(pi.StartDate),
			EndDate:   parseOptionalDate(pi.EndDate),
			CreatedAt: now,
			UpdatedAt: now,
		}
		phaseRefs[pi.Ref] = p.ID
		phases = append(phases, p)
	}

	nodeRefs := make(map[string]string) // ref -> UUID
	nodes := make([]*domain.WorkNode, 0, len(schema.Nodes))
	for i, n := range schema.Nodes {
		realID := uuid.New().String()
		nodeRefs[n.Ref] = realID

		var parentID *string
		if n.ParentRef != nil && *n.ParentRef != "" {
			pid, ok := nodeRefs[*n.ParentRef]
			if !ok {
				return nil, fmt.Errorf("parent_ref %q not found for node %q", *n.ParentRef, n.Ref)
			}
			parentID = &pid
		}

		nodes = append(nodes, &domain.WorkNode{
			ID:         realID,
			ProjectID:  project.ID,
			ParentID:   parentID,
			Kind:       domain.NodeKind(n.Kind),
			Name:       n.Name,
			Volume:     domain.Float64FromPtrWithDefault(0, n.Volume),
			Satuan:     n.Satuan,
			OrderIndex: domain.IntFromPtrWithDefault(i, n.Order),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	// Later entries for the same cell win.
	type cell struct{ node, phase string }
	index := make(map[cell]int)
	var assignments []domain.PhaseAssignment
	for _, a := range schema.Assignments {
		nodeID, ok := nodeRefs[a.NodeRef]
		if !ok {
			return nil, fmt.Errorf("node_ref %q not found for assignment", a.NodeRef)
		}
		var phaseID string
		if a.PhaseRef != "" {
			if phaseID, ok = phaseRefs[a.PhaseRef]; !ok {
				return nil, fmt.Errorf("phase_ref %q not found for assignment", a.PhaseRef)
			}
		} else {
			if a.Phase < 1 || a.Phase > len(phases) || !phases[a.Phase-1].IsAutoGenerated {
				return nil, fmt.Errorf("generated phase %d not found for assignment", a.Phase)
			}
			phaseID = phases[a.Phase-1].ID
		}

		v := domain.Round2(float64(a.Proportion))
		k := cell{nodeID, phaseID}
		if i, seen := index[k]; seen {
			assignments[i].Proportion = v
			continue
		}
		index[k] = len(assignments)
		assignments = append(assignments, domain.PhaseAssignment{
			WorkItemID: nodeID,
			PhaseID:    phaseID,
			Proportion: v,
			UpdatedAt:  now,
		})
	}

	kept := assignments[:0]
	for _, a := range assignments {
		if a.Proportion != 0 {
			kept = append(kept, a)
		}
	}

	return &GeneratedProject{
		Project:     project,
		Phases:      phases,
		Nodes:       nodes,
		Assignments: kept,
	}, nil
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(calendar.DateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
