package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/kurva/internal/db"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/repository"
	"github.com/alexanderramin/kurva/internal/timescale"
	"github.com/google/uuid"
)

type phaseService struct {
	projects repository.ProjectRepo
	phases   repository.PhaseRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewPhaseService(projects repository.ProjectRepo, phases repository.PhaseRepo, uow db.UnitOfWork, observers ...UseCaseObserver) PhaseService {
	return &phaseService{
		projects: projects,
		phases:   phases,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Generate replaces the project's generated phases with a fresh set over the
// project range. Manual phases are kept and renumbered after the generated
// ones. Assignments of the replaced phases go with them; canonical weekly
// records stay, so values reappear under the new columns on the next load.
func (s *phaseService) Generate(ctx context.Context, projectID string, scale domain.TimeScale) (created []*domain.Phase, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": projectID, "scale": string(scale)}
	defer func() {
		fields["phase_count"] = len(created)
		finishUseCase(ctx, s.observer, "generate-phases", startedAt, fields, err)
	}()

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.EndDate == nil {
		return nil, fmt.Errorf("project %s has no end date to generate phases up to", project.DisplayID())
	}

	generated, err := timescale.GeneratePhases(project.StartDate, *project.EndDate, scale, project.WeekEndDay)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPhases := repository.NewSQLitePhaseRepo(tx)
		txProjects := repository.NewSQLiteProjectRepo(tx)

		removed, err := txPhases.DeleteAutoGenerated(ctx, projectID)
		if err != nil {
			return err
		}
		fields["replaced"] = removed

		for i := range generated {
			p := generated[i]
			p.ID = uuid.New().String()
			p.ProjectID = projectID
			p.CreatedAt, p.UpdatedAt = now, now
			if err := txPhases.Create(ctx, &p); err != nil {
				return fmt.Errorf("creating phase %q: %w", p.Name, err)
			}
			created = append(created, &p)
		}

		manual, err := txPhases.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		next := len(generated) + 1
		for _, p := range manual {
			if p.IsAutoGenerated {
				continue
			}
			if p.Urutan != next {
				p.Urutan = next
				p.UpdatedAt = now
				if err := txPhases.Update(ctx, p); err != nil {
					return fmt.Errorf("renumbering phase %q: %w", p.Name, err)
				}
			}
			next++
		}

		project.DefaultScale = scale
		project.UpdatedAt = now
		return txProjects.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Add appends a manual phase after the project's existing phases.
func (s *phaseService) Add(ctx context.Context, p *domain.Phase) error {
	if p.EndDate != nil && p.StartDate == nil {
		return fmt.Errorf("phase end date given without a start date")
	}
	if p.HasRange() && p.EndDate.Before(*p.StartDate) {
		return fmt.Errorf("phase end date %s is before start date %s",
			p.EndDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
	}

	existing, err := s.phases.ListByProject(ctx, p.ProjectID)
	if err != nil {
		return err
	}
	maxUrutan := 0
	for _, e := range existing {
		maxUrutan = max(maxUrutan, e.Urutan)
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Urutan = maxUrutan + 1
	p.IsAutoGenerated = false
	p.GenerationMode = domain.GenerationNone
	if p.Name == "" {
		p.Name = fmt.Sprintf("Tahap %d", p.Urutan)
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.phases.Create(ctx, p)
}

func (s *phaseService) List(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	return s.phases.ListByProject(ctx, projectID)
}

func (s *phaseService) Delete(ctx context.Context, id string) error {
	return s.phases.Delete(ctx, id)
}
