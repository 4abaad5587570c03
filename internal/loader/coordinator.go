// Package loader fills a grid.Store from a remote assignment source with a
// bounded pool of workers.
package loader

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/grid"
	"github.com/alexanderramin/kurva/internal/timescale"
)

const (
	DefaultConcurrency = 6
	MaxConcurrency     = 10
)

// RemoteAssignment is one stored phase proportion of a work item.
type RemoteAssignment struct {
	PhaseID    string
	Proportion float64
}

// Fetcher returns the stored assignments of one work item.
type Fetcher interface {
	FetchAssignments(ctx context.Context, workItemID string) ([]RemoteAssignment, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, workItemID string) ([]RemoteAssignment, error)

func (f FetcherFunc) FetchAssignments(ctx context.Context, workItemID string) ([]RemoteAssignment, error) {
	return f(ctx, workItemID)
}

// ProgressFunc receives the number of finished fetches out of total.
type ProgressFunc func(done, total int)

// Coordinator runs loads against one column model. A Load issued while
// another is running joins it instead of fetching again.
type Coordinator struct {
	fetcher Fetcher
	model   *timescale.Model
	logger  *slog.Logger

	group singleflight.Group
}

// NewCoordinator returns a Coordinator. A nil logger discards warnings.
func NewCoordinator(fetcher Fetcher, model *timescale.Model, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{fetcher: fetcher, model: model, logger: logger}
}

// ClampConcurrency bounds n to [1, MaxConcurrency]. Zero or negative values
// select DefaultConcurrency.
func ClampConcurrency(n int) int {
	switch {
	case n <= 0:
		return DefaultConcurrency
	case n > MaxConcurrency:
		return MaxConcurrency
	default:
		return n
	}
}

// ProgressStep is how many completions pass between progress reports.
func ProgressStep(total int) int {
	return max(1, total/10)
}

// Load fetches the assignments of every item into a fresh store. Workers pull
// the next item from a shared cursor, so at most min(concurrency, len(items))
// fetches are in flight. A failed fetch is logged and leaves the item empty.
// The returned error is only set when ctx is cancelled. Callers that joined a
// running load each get their own copy of the result.
func (c *Coordinator) Load(ctx context.Context, items []domain.WorkItem, concurrency int, onProgress ProgressFunc) (*grid.Store, error) {
	v, err, shared := c.group.Do("load", func() (any, error) {
		return c.load(ctx, items, concurrency, onProgress)
	})
	if err != nil {
		return nil, err
	}
	store := v.(*grid.Store)
	if shared {
		return store.Clone(), nil
	}
	return store, nil
}

func (c *Coordinator) load(ctx context.Context, items []domain.WorkItem, concurrency int, onProgress ProgressFunc) (*grid.Store, error) {
	store := grid.NewStore()
	total := len(items)
	if total == 0 {
		return store, nil
	}

	workers := min(ClampConcurrency(concurrency), total)
	step := ProgressStep(total)

	var (
		cursor atomic.Int64
		done   atomic.Int64
		report sync.Mutex
	)

	var g errgroup.Group
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1)) - 1
				if i >= total {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				c.fetchInto(ctx, store, items[i])

				n := int(done.Add(1))
				if onProgress != nil && (n%step == 0 || n == total) {
					report.Lock()
					onProgress(n, total)
					report.Unlock()
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("assignments loaded", "items", total, "workers", workers, "cells", store.Len())
	return store, nil
}

func (c *Coordinator) fetchInto(ctx context.Context, store *grid.Store, item domain.WorkItem) {
	assignments, err := c.fetcher.FetchAssignments(ctx, item.ID)
	if err != nil {
		c.logger.Warn("failed to load assignments", "work_item_id", item.ID, "error", err)
		return
	}
	for _, a := range assignments {
		if !domain.IsUsableNumber(a.Proportion) {
			c.logger.Warn("skipping non-numeric assignment", "work_item_id", item.ID, "phase_id", a.PhaseID)
			continue
		}
		col, ok := c.model.ColumnForPhase(a.PhaseID)
		if !ok {
			c.logger.Debug("assignment for phase without column", "work_item_id", item.ID, "phase_id", a.PhaseID)
			continue
		}
		store.SetSaved(item.ID, col.ID, a.Proportion)
	}
}
