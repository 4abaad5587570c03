package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/canonical"
	"github.com/alexanderramin/kurva/internal/db"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/importer"
	"github.com/alexanderramin/kurva/internal/repository"
	"github.com/alexanderramin/kurva/internal/timescale"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportProject(ctx context.Context, filePath string) (*app.ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*app.ImportResult, error) {
	return s.importSchema(ctx, schema)
}

func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema) (result *app.ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"short_id": schema.Project.ShortID}
	defer func() {
		if result != nil {
			fields["phase_count"] = result.PhaseCount
			fields["node_count"] = result.NodeCount
			fields["assignment_count"] = result.AssignmentCount
			fields["week_count"] = result.WeekCount
		}
		finishUseCase(ctx, s.observer, "import-project", startedAt, fields, err)
	}()

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	generated, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	records := importCanonical(generated)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		phases := repository.NewSQLitePhaseRepo(tx)
		nodes := repository.NewSQLiteWorkNodeRepo(tx)
		assignments := repository.NewSQLiteAssignmentRepo(tx)
		weekly := repository.NewSQLiteProgressRepo(tx)

		if err := projects.Create(ctx, generated.Project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		for _, p := range generated.Phases {
			if err := phases.Create(ctx, p); err != nil {
				return fmt.Errorf("creating phase %q: %w", p.Name, err)
			}
		}
		for _, n := range generated.Nodes {
			if err := nodes.Create(ctx, n); err != nil {
				return fmt.Errorf("creating node %q: %w", n.Name, err)
			}
		}
		for _, a := range generated.Assignments {
			if _, err := assignments.Upsert(ctx, a); err != nil {
				return fmt.Errorf("creating assignment: %w", err)
			}
		}
		for _, r := range records {
			if _, err := weekly.Upsert(ctx, r); err != nil {
				return fmt.Errorf("creating weekly record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &app.ImportResult{
		Project:         generated.Project,
		PhaseCount:      len(generated.Phases),
		NodeCount:       len(generated.Nodes),
		AssignmentCount: len(generated.Assignments),
		WeekCount:       len(records),
	}, nil
}

// importCanonical converts the imported assignments into the weekly records
// a save of the same grid would produce.
func importCanonical(generated *importer.GeneratedProject) []domain.CanonicalRecord {
	if len(generated.Assignments) == 0 {
		return nil
	}
	phases := make([]domain.Phase, 0, len(generated.Phases))
	for _, p := range generated.Phases {
		phases = append(phases, *p)
	}
	project := generated.Project
	model := timescale.Generate(phases, project.DefaultScale)
	week := calendar.NewWeek(project.StartDate, project.WeekEndDay)
	converter := canonical.NewConverter(nil)

	var order []string
	values := make(map[string][]canonical.ColumnValue)
	for _, a := range generated.Assignments {
		if _, seen := values[a.WorkItemID]; !seen {
			order = append(order, a.WorkItemID)
		}
		values[a.WorkItemID] = append(values[a.WorkItemID], canonical.ColumnValue{
			ColumnID:   timescale.ColumnID(a.PhaseID),
			Proportion: a.Proportion,
		})
	}

	var records []domain.CanonicalRecord
	for _, id := range order {
		for _, r := range converter.ToCanonical(id, values[id], model.Scale, model, week) {
			if r.Proportion != 0 {
				records = append(records, r)
			}
		}
	}
	return canonical.MergeByWeek(records)
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
