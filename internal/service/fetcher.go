package service

import (
	"context"

	"github.com/alexanderramin/kurva/internal/calendar"
	"github.com/alexanderramin/kurva/internal/canonical"
	"github.com/alexanderramin/kurva/internal/loader"
	"github.com/alexanderramin/kurva/internal/repository"
	"github.com/alexanderramin/kurva/internal/timescale"
)

// storeFetcher serves loader fetches from the local database. Per-phase
// assignments win; an item with none is derived from its canonical weekly
// records so values survive phase regeneration. Save always rewrites an item's
// phase rows from its full row, so they never cover only part of it.
type storeFetcher struct {
	assignments repository.AssignmentRepo
	progress    repository.ProgressRepo
	converter   *canonical.Converter
	model       *timescale.Model
	week        calendar.Week
}

func (f *storeFetcher) FetchAssignments(ctx context.Context, workItemID string) ([]loader.RemoteAssignment, error) {
	stored, err := f.assignments.ListByWorkItem(ctx, workItemID)
	if err != nil {
		return nil, err
	}
	var out []loader.RemoteAssignment
	for _, a := range stored {
		if _, ok := f.model.ColumnForPhase(a.PhaseID); ok {
			out = append(out, loader.RemoteAssignment{PhaseID: a.PhaseID, Proportion: a.Proportion})
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	records, err := f.progress.ListByWorkItem(ctx, workItemID)
	if err != nil {
		return nil, err
	}
	for _, v := range f.converter.FromCanonical(records, f.model, f.week) {
		col, ok := f.model.Column(v.ColumnID)
		if !ok {
			continue
		}
		out = append(out, loader.RemoteAssignment{PhaseID: col.PhaseID, Proportion: v.Proportion})
	}
	return out, nil
}
