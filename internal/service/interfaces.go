package service

import (
	"context"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/domain"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Resolve accepts a short ID (case-insensitive) or a full project ID.
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string, force bool) error
}

type PhaseService interface {
	app.GeneratePhasesUseCase
	Add(ctx context.Context, p *domain.Phase) error
	List(ctx context.Context, projectID string) ([]*domain.Phase, error)
	Delete(ctx context.Context, id string) error
}

type NodeService interface {
	Create(ctx context.Context, n *domain.WorkNode) error
	GetByID(ctx context.Context, id string) (*domain.WorkNode, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.WorkNode, error)
	// Tree returns the project's nodes assembled into a sorted forest.
	Tree(ctx context.Context, projectID string) ([]*domain.WorkNode, error)
	Update(ctx context.Context, n *domain.WorkNode) error
	Delete(ctx context.Context, id string) error
}

type ScheduleService interface {
	app.OpenScheduleUseCase
	app.SaveScheduleUseCase
	app.ProgressUseCase
	// Weekly returns the stored canonical records of one work item.
	Weekly(ctx context.Context, workItemID string) ([]domain.CanonicalRecord, error)
}

type ImportService interface {
	app.ImportProjectUseCase
}
