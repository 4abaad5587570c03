package repository

import (
	"context"

	"github.com/alexanderramin/kurva/internal/domain"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

type PhaseRepo interface {
	Create(ctx context.Context, p *domain.Phase) error
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error)
	Update(ctx context.Context, p *domain.Phase) error
	Delete(ctx context.Context, id string) error
	DeleteAutoGenerated(ctx context.Context, projectID string) (int64, error)
}

type WorkNodeRepo interface {
	Create(ctx context.Context, n *domain.WorkNode) error
	GetByID(ctx context.Context, id string) (*domain.WorkNode, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.WorkNode, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.WorkNode, error)
	Update(ctx context.Context, n *domain.WorkNode) error
	Delete(ctx context.Context, id string) error
}

// AssignmentRepo stores per-phase proportions (pekerjaan_tahapan).
type AssignmentRepo interface {
	ListByWorkItem(ctx context.Context, workItemID string) ([]domain.PhaseAssignment, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.PhaseAssignment, error)
	// Upsert reports whether a new row was inserted.
	Upsert(ctx context.Context, a domain.PhaseAssignment) (bool, error)
	// Delete reports whether a row existed.
	Delete(ctx context.Context, workItemID, phaseID string) (bool, error)
}

// ProgressRepo stores canonical weekly records (progress_weekly).
type ProgressRepo interface {
	ListByWorkItem(ctx context.Context, workItemID string) ([]domain.CanonicalRecord, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.CanonicalRecord, error)
	// Upsert reports whether a new row was inserted.
	Upsert(ctx context.Context, r domain.CanonicalRecord) (bool, error)
	// Delete reports whether a row existed.
	Delete(ctx context.Context, workItemID string, week int) (bool, error)
}
