package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/kurva/internal/db"
	"github.com/alexanderramin/kurva/internal/domain"
)

// SQLiteAssignmentRepo implements AssignmentRepo over pekerjaan_tahapan.
type SQLiteAssignmentRepo struct {
	db db.DBTX
}

// NewSQLiteAssignmentRepo creates a new SQLiteAssignmentRepo.
func NewSQLiteAssignmentRepo(conn db.DBTX) *SQLiteAssignmentRepo {
	return &SQLiteAssignmentRepo{db: conn}
}

func (r *SQLiteAssignmentRepo) ListByWorkItem(ctx context.Context, workItemID string) ([]domain.PhaseAssignment, error) {
	return r.list(ctx, `SELECT work_node_id, tahapan_id, proporsi, updated_at
		FROM pekerjaan_tahapan WHERE work_node_id = ? ORDER BY tahapan_id`, workItemID)
}

func (r *SQLiteAssignmentRepo) ListByProject(ctx context.Context, projectID string) ([]domain.PhaseAssignment, error) {
	return r.list(ctx, `SELECT a.work_node_id, a.tahapan_id, a.proporsi, a.updated_at
		FROM pekerjaan_tahapan a
		JOIN work_nodes n ON n.id = a.work_node_id
		WHERE n.project_id = ?
		ORDER BY a.work_node_id, a.tahapan_id`, projectID)
}

func (r *SQLiteAssignmentRepo) Upsert(ctx context.Context, a domain.PhaseAssignment) (bool, error) {
	now := nowUTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO pekerjaan_tahapan (work_node_id, tahapan_id, proporsi, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(work_node_id, tahapan_id) DO NOTHING`,
		a.WorkItemID, a.PhaseID, a.Proportion, now)
	if err != nil {
		return false, fmt.Errorf("inserting assignment %s/%s: %w", a.WorkItemID, a.PhaseID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE pekerjaan_tahapan SET proporsi = ?, updated_at = ?
		WHERE work_node_id = ? AND tahapan_id = ?`,
		a.Proportion, now, a.WorkItemID, a.PhaseID); err != nil {
		return false, fmt.Errorf("updating assignment %s/%s: %w", a.WorkItemID, a.PhaseID, err)
	}
	return false, nil
}

func (r *SQLiteAssignmentRepo) Delete(ctx context.Context, workItemID, phaseID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pekerjaan_tahapan WHERE work_node_id = ? AND tahapan_id = ?`,
		workItemID, phaseID)
	if err != nil {
		return false, fmt.Errorf("deleting assignment %s/%s: %w", workItemID, phaseID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *SQLiteAssignmentRepo) list(ctx context.Context, query string, args ...any) ([]domain.PhaseAssignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.PhaseAssignment
	for rows.Next() {
		var a domain.PhaseAssignment
		var updatedAtStr string
		if err := rows.Scan(&a.WorkItemID, &a.PhaseID, &a.Proportion, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("scanning assignment row: %w", err)
		}
		if a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("parsing assignment updated_at: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}
	return out, nil
}
