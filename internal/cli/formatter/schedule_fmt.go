package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/progress"
	"github.com/alexanderramin/kurva/internal/timescale"
)

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	headers := []string{"ID", "NAME", "START", "END", "SCALE", "STATUS"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		start := p.StartDate
		rows = append(rows, []string{
			p.DisplayID(),
			Bold(p.Name),
			FormatDate(&start),
			FormatDate(p.EndDate),
			ScaleBadge(p.DefaultScale),
			StatusPill(p.Status),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatPhaseList renders the phases of a project with their column IDs.
func FormatPhaseList(phases []*domain.Phase) string {
	headers := []string{"#", "NAME", "START", "END", "MODE", "ID"}
	rows := make([][]string, 0, len(phases))
	for _, p := range phases {
		mode := Dim("manual")
		if p.IsAutoGenerated {
			mode = ScaleBadge(p.GenerationMode.Scale())
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Urutan),
			p.Name,
			FormatDate(p.StartDate),
			FormatDate(p.EndDate),
			mode,
			TruncID(p.ID),
		})
	}
	return RenderTable(headers, rows, AlignRight)
}

// FormatPhaseProgress renders per-phase progress, the project figure and
// the cumulative curve.
func FormatPhaseProgress(ws *app.Workspace, report *app.ProgressReport) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("%s · %s", ws.Project.Name, ws.Model.Scale)))
	b.WriteString("\n")

	curve := make(map[string]progress.CurvePoint, len(report.Curve))
	for _, pt := range report.Curve {
		curve[pt.ColumnID] = pt
	}

	headers := []string{"PHASE", "RANGE", "PROGRESS", "ITEMS", "CUMULATIVE"}
	rows := make([][]string, 0, len(report.Phases))
	for _, pp := range report.Phases {
		col, ok := ws.Model.ColumnForPhase(pp.PhaseID)
		if !ok {
			continue
		}
		rows = append(rows, []string{
			col.Label,
			Dim(col.SubLabel),
			RenderProgress(pp.Progress, 12),
			fmt.Sprintf("%d", pp.SampleCount),
			FormatPercent(curve[col.ID].Cumulative),
		})
	}
	b.WriteString(RenderTable(headers, rows, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", Bold("Project planned progress:"), RenderProgress(report.Project, 20)))
	return b.String()
}

// FormatGantt renders one row per work item with a cell per column. Filled
// cells carry an assignment.
func FormatGantt(ws *app.Workspace, bars []progress.Bar) string {
	if len(ws.Model.Columns) == 0 {
		return Dim("No columns: the project has no dated phases.") + "\n"
	}

	nameWidth := 0
	for _, bar := range bars {
		nameWidth = max(nameWidth, len([]rune(bar.Name)))
	}
	nameWidth = min(nameWidth, 32)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", nameWidth+2))
	for i := range ws.Model.Columns {
		b.WriteString(Dim(fmt.Sprintf("%-3d", i+1)))
	}
	b.WriteString("\n")

	for _, bar := range bars {
		name := truncate(bar.Name, nameWidth)
		b.WriteString(name + strings.Repeat(" ", nameWidth-len([]rune(name))+2))
		if bar.Empty() {
			b.WriteString(Dim("not scheduled") + "\n")
			continue
		}
		assigned := make(map[string]float64, len(bar.Segments))
		for _, seg := range bar.Segments {
			assigned[seg.ColumnID] = seg.Percent
		}
		for _, col := range ws.Model.Columns {
			if pct, ok := assigned[col.ID]; ok {
				b.WriteString(PercentStyle(pct).Render("██ "))
			} else {
				b.WriteString(Dim("·  "))
			}
		}
		total := FormatPercent(bar.RawPercent)
		if bar.RawPercent > domain.MaxProportion+domain.ProportionTolerance {
			total = StyleRed.Render(total)
		}
		b.WriteString(" " + total + "\n")
	}
	return b.String()
}

// FormatWeekly renders canonical records with their week ranges.
func FormatWeekly(records []domain.CanonicalRecord, ws *app.Workspace) string {
	headers := []string{"WEEK", "FROM", "TO", "PROPORTION", "NOTES"}
	rows := make([][]string, 0, len(records))
	var total float64
	for _, r := range records {
		from, to := ws.Week.Bounds(r.WeekNumber)
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.WeekNumber),
			FormatDate(&from),
			FormatDate(&to),
			FormatPercent(r.Proportion),
			Dim(r.Notes),
		})
		total += r.Proportion
	}
	rows = append(rows, []string{Bold("total"), "", "", Bold(FormatPercent(domain.Round2(total))), ""})
	return RenderTable(headers, rows, AlignRight, AlignLeft, AlignLeft, AlignRight)
}

// FormatSaveResponse summarizes a save.
func FormatSaveResponse(resp *app.SaveResponse) string {
	if resp.Unchanged() {
		return Dim("Nothing to save.")
	}
	return fmt.Sprintf("%s %d created, %d updated, %d deleted across %d work item(s)",
		StyleGreen.Render("Saved:"), resp.Created, resp.Updated, resp.Deleted, len(resp.WorkItems))
}

// ColumnLabel returns the label of a column with its range.
func ColumnLabel(col timescale.Column) string {
	return col.Label + " " + Dim("("+col.SubLabel+")")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
