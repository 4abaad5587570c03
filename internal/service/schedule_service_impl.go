package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/canonical"
	"github.com/alexanderramin/kurva/internal/contract"
	"github.com/alexanderramin/kurva/internal/db"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/grid"
	"github.com/alexanderramin/kurva/internal/loader"
	"github.com/alexanderramin/kurva/internal/progress"
	"github.com/alexanderramin/kurva/internal/repository"
	"github.com/alexanderramin/kurva/internal/timescale"
	"github.com/alexanderramin/kurva/internal/worktree"
)

// ScheduleRepos groups the repositories the schedule service reads outside a
// transaction.
type ScheduleRepos struct {
	Projects    repository.ProjectRepo
	Phases      repository.PhaseRepo
	Nodes       repository.WorkNodeRepo
	Assignments repository.AssignmentRepo
	Progress    repository.ProgressRepo
}

type scheduleService struct {
	repos       ScheduleRepos
	uow         db.UnitOfWork
	logger      *slog.Logger
	concurrency int
	observer    UseCaseObserver

	mu    sync.Mutex
	loads map[string]*projectLoad
}

// projectLoad is the coordinator of one project, valid while its load key
// matches.
type projectLoad struct {
	key   string
	coord *loader.Coordinator
}

// NewScheduleService returns a ScheduleService. concurrency bounds the
// parallel assignment fetches of Open; a nil logger discards warnings.
func NewScheduleService(repos ScheduleRepos, uow db.UnitOfWork, logger *slog.Logger, concurrency int, observers ...UseCaseObserver) ScheduleService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &scheduleService{
		repos:       repos,
		uow:         uow,
		logger:      logger,
		concurrency: loader.ClampConcurrency(concurrency),
		observer:    useCaseObserverOrNoop(observers),
		loads:       make(map[string]*projectLoad),
	}
}

func (s *scheduleService) Open(ctx context.Context, projectID string, onProgress loader.ProgressFunc) (ws *app.Workspace, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": projectID}
	defer func() {
		finishUseCase(ctx, s.observer, "open-schedule", startedAt, fields, err)
	}()

	project, err := s.repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	phasePtrs, err := s.repos.Phases.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing phases: %w", err)
	}
	nodes, err := s.repos.Nodes.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing work nodes: %w", err)
	}

	phases := make([]domain.Phase, 0, len(phasePtrs))
	for _, p := range phasePtrs {
		phases = append(phases, *p)
	}
	model := timescale.Generate(phases, project.DefaultScale)
	for _, p := range phases {
		if !p.HasStart() {
			s.logger.Warn("phase without start date has no column", "phase_id", p.ID, "name", p.Name)
		}
	}
	roots := worktree.Build(nodes)
	items := worktree.Leaves(roots)
	week := calendar.NewWeek(project.StartDate, project.WeekEndDay)

	expansion := worktree.NewExpansion()
	expansion.Seed(roots)

	coord := s.coordinator(project.ID, loadKey(project, model, items), func() *loader.Coordinator {
		fetcher := &storeFetcher{
			assignments: s.repos.Assignments,
			progress:    s.repos.Progress,
			converter:   canonical.NewConverter(s.logger),
			model:       model,
			week:        week,
		}
		return loader.NewCoordinator(fetcher, model, s.logger)
	})
	store, err := coord.Load(ctx, items, s.concurrency, onProgress)
	if err != nil {
		return nil, err
	}

	fields["scale"] = string(model.Scale)
	fields["columns"] = len(model.Columns)
	fields["items"] = len(items)
	fields["cells"] = store.Len()

	return &app.Workspace{
		Project:   project,
		Phases:    phases,
		Model:     model,
		Roots:     roots,
		Items:     items,
		Store:     store,
		Expansion: expansion,
		Week:      week,
	}, nil
}

// coordinator returns the project's coordinator, replacing it when the phase
// layout, calendar or item set behind key has changed. Opens that share a
// coordinator join one running load.
func (s *scheduleService) coordinator(projectID, key string, build func() *loader.Coordinator) *loader.Coordinator {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pl, ok := s.loads[projectID]; ok && pl.key == key {
		return pl.coord
	}
	pl := &projectLoad{key: key, coord: build()}
	s.loads[projectID] = pl
	return pl.coord
}

func loadKey(project *domain.Project, model *timescale.Model, items []domain.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%s", project.StartDate.Format(time.DateOnly), project.WeekEndDay, model.Scale)
	for _, col := range model.Columns {
		fmt.Fprintf(&b, "|%s:%s:%s", col.PhaseID, col.Start.Format(time.DateOnly), col.End.Format(time.DateOnly))
	}
	b.WriteString("#")
	for _, it := range items {
		b.WriteString(it.ID + ",")
	}
	return b.String()
}

func (s *scheduleService) Progress(ws *app.Workspace) *app.ProgressReport {
	cells := ws.Store.Snapshot()
	byPhase := progress.ComputePhaseProgress(ws.Phases, ws.Items, cells, ws.Model)

	report := &app.ProgressReport{
		Phases:  make([]progress.PhaseProgress, 0, len(ws.Phases)),
		Bars:    progress.ComputeWorkItemBars(ws.Items, cells, ws.Model),
		Project: progress.ComputeProjectProgress(ws.Items, cells, ws.Model),
		Curve:   progress.CumulativeCurve(ws.Items, cells, ws.Model),
	}
	for _, col := range ws.Model.Columns {
		if pp, ok := byPhase[col.PhaseID]; ok {
			report.Phases = append(report.Phases, pp)
		}
	}
	return report
}

// Save persists the workspace's pending edits. Every dirty work item is
// checked first; any problem returns a *contract.ValidationError and nothing
// is written. The items are then converted to canonical weekly records and
// written in one transaction together with their per-phase values. The
// store's overlay is committed only after the transaction succeeds.
func (s *scheduleService) Save(ctx context.Context, ws *app.Workspace) (resp *app.SaveResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": ws.Project.ID}
	defer func() {
		if resp != nil {
			fields["created"] = resp.Created
			fields["updated"] = resp.Updated
			fields["deleted"] = resp.Deleted
		}
		finishUseCase(ctx, s.observer, "save-schedule", startedAt, fields, err)
	}()

	dirtyItems := ws.Store.DirtyWorkItems()
	fields["dirty_items"] = len(dirtyItems)
	if len(dirtyItems) == 0 {
		return &app.SaveResponse{}, nil
	}

	rows := make(map[string][]grid.Cell, len(dirtyItems))
	for _, id := range dirtyItems {
		rows[id] = ws.Store.Row(id)
	}
	if ve := validateRows(ws, dirtyItems, rows); ve != nil {
		return nil, ve
	}

	converter := canonical.NewConverter(s.logger)
	var records []domain.CanonicalRecord
	for _, id := range dirtyItems {
		values := make([]canonical.ColumnValue, 0, len(rows[id]))
		for _, c := range rows[id] {
			values = append(values, canonical.ColumnValue{ColumnID: c.ColumnID, Proportion: c.Proportion})
		}
		records = append(records, converter.ToCanonical(id, values, ws.Model.Scale, ws.Model, ws.Week)...)
	}
	records = canonical.MergeByWeek(records)

	req := contract.NewSaveRequest(records, ws.Model.Scale, ws.Project.WeekEndDay)
	if err := contract.ValidateSaveRequest(req); err != nil {
		return nil, err
	}

	resp = &app.SaveResponse{WorkItems: dirtyItems}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := writeCanonical(ctx, repository.NewSQLiteProgressRepo(tx), dirtyItems, req.Assignments, resp); err != nil {
			return err
		}
		return writeAssignments(ctx, repository.NewSQLiteAssignmentRepo(tx), ws, dirtyItems, rows)
	})
	if err != nil {
		return nil, &contract.SaveError{Code: contract.SaveErrPersistence, Message: err.Error()}
	}

	ws.Store.Commit()
	return resp, nil
}

func (s *scheduleService) Weekly(ctx context.Context, workItemID string) ([]domain.CanonicalRecord, error) {
	return s.repos.Progress.ListByWorkItem(ctx, workItemID)
}

// validateRows checks cell ranges and per-item totals of the dirty rows.
func validateRows(ws *app.Workspace, itemIDs []string, rows map[string][]grid.Cell) *contract.ValidationError {
	ve := &contract.ValidationError{}
	for _, id := range itemIDs {
		item, ok := ws.Item(id)
		if !ok {
			ve.Issues = append(ve.Issues, contract.Issue{Message: "unknown work item", WorkItemID: id})
			continue
		}
		var total float64
		for _, c := range rows[id] {
			if _, ok := ws.Model.Column(c.ColumnID); !ok {
				ve.Issues = append(ve.Issues, contract.Issue{
					Message:    fmt.Sprintf("unknown column %s", c.ColumnID),
					WorkItemID: id,
				})
				continue
			}
			if !domain.IsUsableNumber(c.Proportion) || c.Proportion < 0 || c.Proportion > domain.MaxProportion {
				ve.Issues = append(ve.Issues, contract.Issue{
					Message:    fmt.Sprintf("proportion %v in %s out of range 0-100", c.Proportion, c.ColumnID),
					WorkItemID: id,
				})
				continue
			}
			total += c.Proportion
		}
		if total > domain.MaxProportion+domain.ProportionTolerance {
			ve.Issues = append(ve.Issues, contract.Issue{
				Message:    fmt.Sprintf("%s totals %.2f%%, above 100%%", item.Name, total),
				WorkItemID: id,
			})
		}
	}
	if len(ve.Issues) == 0 {
		return nil
	}
	return ve
}

// writeCanonical replaces the stored weeks of each item with its nonzero
// records, counting inserts, changed rows and removed weeks.
func writeCanonical(ctx context.Context, repo repository.ProgressRepo, itemIDs []string, records []domain.CanonicalRecord, resp *app.SaveResponse) error {
	byItem := make(map[string][]domain.CanonicalRecord, len(itemIDs))
	for _, r := range records {
		byItem[r.WorkItemID] = append(byItem[r.WorkItemID], r)
	}

	for _, id := range itemIDs {
		existing, err := repo.ListByWorkItem(ctx, id)
		if err != nil {
			return err
		}
		old := make(map[int]domain.CanonicalRecord, len(existing))
		for _, r := range existing {
			old[r.WeekNumber] = r
		}

		keep := make(map[int]bool)
		for _, r := range byItem[id] {
			if r.Proportion == 0 {
				continue
			}
			keep[r.WeekNumber] = true
			if prev, ok := old[r.WeekNumber]; ok && prev.Proportion == r.Proportion && prev.Notes == r.Notes {
				continue
			}
			created, err := repo.Upsert(ctx, r)
			if err != nil {
				return fmt.Errorf("writing week %d of %s: %w", r.WeekNumber, id, err)
			}
			if created {
				resp.Created++
			} else {
				resp.Updated++
			}
		}

		for _, r := range existing {
			if keep[r.WeekNumber] {
				continue
			}
			existed, err := repo.Delete(ctx, id, r.WeekNumber)
			if err != nil {
				return fmt.Errorf("removing week %d of %s: %w", r.WeekNumber, id, err)
			}
			if existed {
				resp.Deleted++
			}
		}
	}
	return nil
}

// writeAssignments replaces the per-phase assignments of each dirty item with
// its full row, so the stored rows stay a complete picture of the item even
// when they were re-derived from weekly records. Rows of phases the model has
// no column for are left alone.
func writeAssignments(ctx context.Context, repo repository.AssignmentRepo, ws *app.Workspace, itemIDs []string, rows map[string][]grid.Cell) error {
	now := time.Now().UTC()
	for _, id := range itemIDs {
		existing, err := repo.ListByWorkItem(ctx, id)
		if err != nil {
			return fmt.Errorf("listing assignments of %s: %w", id, err)
		}
		stored := make(map[string]float64, len(existing))
		for _, a := range existing {
			stored[a.PhaseID] = a.Proportion
		}

		keep := make(map[string]bool)
		for _, c := range rows[id] {
			col, ok := ws.Model.Column(c.ColumnID)
			if !ok || c.Proportion == 0 {
				continue
			}
			keep[col.PhaseID] = true
			if prev, ok := stored[col.PhaseID]; ok && prev == c.Proportion {
				continue
			}
			_, err := repo.Upsert(ctx, domain.PhaseAssignment{
				WorkItemID: id,
				PhaseID:    col.PhaseID,
				Proportion: c.Proportion,
				UpdatedAt:  now,
			})
			if err != nil {
				return fmt.Errorf("writing assignment: %w", err)
			}
		}

		for _, a := range existing {
			if keep[a.PhaseID] {
				continue
			}
			if _, ok := ws.Model.ColumnForPhase(a.PhaseID); !ok {
				continue
			}
			if _, err := repo.Delete(ctx, id, a.PhaseID); err != nil {
				return fmt.Errorf("clearing assignment: %w", err)
			}
		}
	}
	return nil
}
