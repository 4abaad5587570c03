package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/timescale"
)

var generationScales = map[string]bool{"daily": true, "weekly": true, "monthly": true}

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateProject(&schema.Project)...)

	generated, genErrs := validateGenerate(schema)
	errs = append(errs, genErrs...)

	phaseRefs := make(map[string]bool)
	errs = append(errs, validatePhases(schema.Phases, phaseRefs)...)

	leaves := make(map[string]bool)
	errs = append(errs, validateNodes(schema.Nodes, leaves)...)

	errs = append(errs, validateAssignments(schema.Assignments, leaves, phaseRefs, generated)...)

	return errs
}

func validateProject(p *ProjectImport) []error {
	var errs []error

	proj := domain.Project{ShortID: p.ShortID}
	if err := proj.ValidateShortID(); err != nil {
		errs = append(errs, fmt.Errorf("project.short_id: %w", err))
	}
	if p.Name == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}
	start, startOK := parseDate(p.StartDate)
	if p.StartDate == "" {
		errs = append(errs, fmt.Errorf("project.start_date is required"))
	} else if !startOK {
		errs = append(errs, fmt.Errorf("project.start_date: invalid date format %q (expected YYYY-MM-DD)", p.StartDate))
	}
	if p.EndDate != nil {
		end, ok := parseDate(*p.EndDate)
		if !ok {
			errs = append(errs, fmt.Errorf("project.end_date: invalid date format %q (expected YYYY-MM-DD)", *p.EndDate))
		} else if startOK && end.Before(start) {
			errs = append(errs, fmt.Errorf("project.end_date %q must not be before start_date %q", *p.EndDate, p.StartDate))
		}
	}
	if p.WeekEndDay != "" {
		if _, err := calendar.ParseWeekday(p.WeekEndDay); err != nil {
			errs = append(errs, fmt.Errorf("project.week_end_day: %w", err))
		}
	}
	if p.DefaultScale != "" {
		if _, err := domain.ParseTimeScale(p.DefaultScale); err != nil {
			errs = append(errs, fmt.Errorf("project.default_scale: %w", err))
		}
	}

	return errs
}

// validateGenerate returns how many phases the directive would produce.
func validateGenerate(schema *ImportSchema) (int, []error) {
	g := schema.Generate
	if g == nil {
		return 0, nil
	}
	if !generationScales[g.Scale] {
		return 0, []error{fmt.Errorf("generate.scale: invalid value %q (expected daily, weekly or monthly)", g.Scale)}
	}
	p := schema.Project
	if p.EndDate == nil {
		return 0, []error{fmt.Errorf("generate requires project.end_date")}
	}
	start, ok1 := parseDate(p.StartDate)
	end, ok2 := parseDate(*p.EndDate)
	if !ok1 || !ok2 {
		// Already reported by validateProject.
		return 0, nil
	}
	weekEnd := domain.DefaultWeekEndDay
	if d, err := calendar.ParseWeekday(p.WeekEndDay); err == nil {
		weekEnd = d
	}
	phases, err := timescale.GeneratePhases(start, end, domain.TimeScale(g.Scale), weekEnd)
	if err != nil {
		return 0, []error{fmt.Errorf("generate: %w", err)}
	}
	return len(phases), nil
}

func validatePhases(phases []PhaseImport, refs map[string]bool) []error {
	var errs []error

	for i, p := range phases {
		prefix := fmt.Sprintf("phases[%d]", i)

		if p.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[p.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, p.Ref))
		} else {
			refs[p.Ref] = true
		}

		errs = append(errs, validateOptionalDate(prefix+".start_date", p.StartDate)...)
		errs = append(errs, validateOptionalDate(prefix+".end_date", p.EndDate)...)
		if p.StartDate != nil && p.EndDate != nil {
			start, ok1 := parseDate(*p.StartDate)
			end, ok2 := parseDate(*p.EndDate)
			if ok1 && ok2 && end.Before(start) {
				errs = append(errs, fmt.Errorf("%s.end_date %q must not be before start_date %q", prefix, *p.EndDate, *p.StartDate))
			}
		}
		if p.StartDate == nil && p.EndDate != nil {
			errs = append(errs, fmt.Errorf("%s.end_date given without start_date", prefix))
		}
	}

	return errs
}

// validateNodes records the refs of pekerjaan leaves in leaves.
func validateNodes(nodes []NodeImport, leaves map[string]bool) []error {
	var errs []error
	kinds := make(map[string]string)

	for i, n := range nodes {
		prefix := fmt.Sprintf("nodes[%d]", i)

		if n.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if _, dup := kinds[n.Ref]; dup {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, n.Ref))
		}

		if n.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if n.Kind == "" {
			errs = append(errs, fmt.Errorf("%s.kind is required", prefix))
		} else if !domain.ValidNodeKinds[n.Kind] {
			errs = append(errs, fmt.Errorf("%s.kind: invalid value %q", prefix, n.Kind))
		}

		if n.ParentRef != nil && *n.ParentRef != "" {
			parentKind, ok := kinds[*n.ParentRef]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%s.parent_ref: ref %q not found (must appear earlier in nodes list)", prefix, *n.ParentRef))
			case parentKind == string(domain.NodePekerjaan):
				errs = append(errs, fmt.Errorf("%s.parent_ref: pekerjaan %q cannot have children", prefix, *n.ParentRef))
			}
		}

		if n.Volume != nil {
			if *n.Volume < 0 || !domain.IsUsableNumber(*n.Volume) {
				errs = append(errs, fmt.Errorf("%s.volume must be a non-negative number", prefix))
			} else if n.Kind != string(domain.NodePekerjaan) && *n.Volume != 0 {
				errs = append(errs, fmt.Errorf("%s.volume: only pekerjaan nodes carry volume", prefix))
			}
		}

		if n.Ref != "" {
			if _, dup := kinds[n.Ref]; !dup {
				kinds[n.Ref] = n.Kind
				if n.Kind == string(domain.NodePekerjaan) {
					leaves[n.Ref] = true
				}
			}
		}
	}

	return errs
}

func validateAssignments(assignments []AssignmentImport, leaves, phaseRefs map[string]bool, generated int) []error {
	var errs []error
	totals := make(map[string]float64)
	var order []string

	for i, a := range assignments {
		prefix := fmt.Sprintf("assignments[%d]", i)

		if a.NodeRef == "" {
			errs = append(errs, fmt.Errorf("%s.node_ref is required", prefix))
		} else if !leaves[a.NodeRef] {
			errs = append(errs, fmt.Errorf("%s.node_ref: %q is not a pekerjaan node", prefix, a.NodeRef))
		}

		switch {
		case a.PhaseRef != "" && a.Phase != 0:
			errs = append(errs, fmt.Errorf("%s: set either phase_ref or phase, not both", prefix))
		case a.PhaseRef != "":
			if !phaseRefs[a.PhaseRef] {
				errs = append(errs, fmt.Errorf("%s.phase_ref: ref %q not found in phases", prefix, a.PhaseRef))
			}
		case a.Phase != 0:
			if a.Phase < 1 || a.Phase > generated {
				errs = append(errs, fmt.Errorf("%s.phase: %d out of range (1-%d generated phases)", prefix, a.Phase, generated))
			}
		default:
			errs = append(errs, fmt.Errorf("%s: phase_ref or phase is required", prefix))
		}

		v := float64(a.Proportion)
		if v < 0 || v > domain.MaxProportion {
			errs = append(errs, fmt.Errorf("%s.proportion %v out of range 0-100", prefix, v))
			continue
		}
		if _, seen := totals[a.NodeRef]; !seen {
			order = append(order, a.NodeRef)
		}
		totals[a.NodeRef] += v
	}

	for _, ref := range order {
		if totals[ref] > domain.MaxProportion+domain.ProportionTolerance {
			errs = append(errs, fmt.Errorf("assignments: total proportion of %q is %.2f%%, above 100%%", ref, totals[ref]))
		}
	}

	return errs
}

func validateOptionalDate(field string, dateStr *string) []error {
	if dateStr == nil || *dateStr == "" {
		return nil
	}
	if _, ok := parseDate(*dateStr); !ok {
		return []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, *dateStr)}
	}
	return nil
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(calendar.DateLayout, s)
	return t, err == nil
}
