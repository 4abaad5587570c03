package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/kurva/internal/db"
	"github.com/alexanderramin/kurva/internal/domain"
)

// SQLiteProgressRepo implements ProgressRepo over progress_weekly.
type SQLiteProgressRepo struct {
	db db.DBTX
}

// NewSQLiteProgressRepo creates a new SQLiteProgressRepo.
func NewSQLiteProgressRepo(conn db.DBTX) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: conn}
}

func (r *SQLiteProgressRepo) ListByWorkItem(ctx context.Context, workItemID string) ([]domain.CanonicalRecord, error) {
	return r.list(ctx, `SELECT work_node_id, week_number, proportion, notes
		FROM progress_weekly WHERE work_node_id = ? ORDER BY week_number`, workItemID)
}

func (r *SQLiteProgressRepo) ListByProject(ctx context.Context, projectID string) ([]domain.CanonicalRecord, error) {
	return r.list(ctx, `SELECT p.work_node_id, p.week_number, p.proportion, p.notes
		FROM progress_weekly p
		JOIN work_nodes n ON n.id = p.work_node_id
		WHERE n.project_id = ?
		ORDER BY p.work_node_id, p.week_number`, projectID)
}

func (r *SQLiteProgressRepo) Upsert(ctx context.Context, rec domain.CanonicalRecord) (bool, error) {
	now := nowUTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO progress_weekly (work_node_id, week_number, proportion, notes, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(work_node_id, week_number) DO NOTHING`,
		rec.WorkItemID, rec.WeekNumber, rec.Proportion, rec.Notes, now)
	if err != nil {
		return false, fmt.Errorf("inserting week %d of %s: %w", rec.WeekNumber, rec.WorkItemID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE progress_weekly SET proportion = ?, notes = ?, updated_at = ?
		WHERE work_node_id = ? AND week_number = ?`,
		rec.Proportion, rec.Notes, now, rec.WorkItemID, rec.WeekNumber); err != nil {
		return false, fmt.Errorf("updating week %d of %s: %w", rec.WeekNumber, rec.WorkItemID, err)
	}
	return false, nil
}

func (r *SQLiteProgressRepo) Delete(ctx context.Context, workItemID string, week int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM progress_weekly WHERE work_node_id = ? AND week_number = ?`,
		workItemID, week)
	if err != nil {
		return false, fmt.Errorf("deleting week %d of %s: %w", week, workItemID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *SQLiteProgressRepo) list(ctx context.Context, query string, args ...any) ([]domain.CanonicalRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing weekly progress: %w", err)
	}
	defer rows.Close()

	var out []domain.CanonicalRecord
	for rows.Next() {
		var rec domain.CanonicalRecord
		if err := rows.Scan(&rec.WorkItemID, &rec.WeekNumber, &rec.Proportion, &rec.Notes); err != nil {
			return nil, fmt.Errorf("scanning weekly progress row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating weekly progress: %w", err)
	}
	return out, nil
}
