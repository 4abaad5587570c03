package app

import (
	"context"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/importer"
	"github.com/alexanderramin/kurva/internal/loader"
)

type OpenScheduleUseCase interface {
	Open(ctx context.Context, projectID string, onProgress loader.ProgressFunc) (*Workspace, error)
}

type SaveScheduleUseCase interface {
	Save(ctx context.Context, ws *Workspace) (*SaveResponse, error)
}

type ProgressUseCase interface {
	Progress(ws *Workspace) *ProgressReport
}

type GeneratePhasesUseCase interface {
	Generate(ctx context.Context, projectID string, scale domain.TimeScale) ([]*domain.Phase, error)
}

type ImportResult struct {
	Project         *domain.Project
	PhaseCount      int
	NodeCount       int
	AssignmentCount int
	WeekCount       int
}

type ImportProjectUseCase interface {
	ImportProject(ctx context.Context, filePath string) (*ImportResult, error)
	ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}
