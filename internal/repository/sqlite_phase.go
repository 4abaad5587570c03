package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/kurva/internal/db"
	"github.com/alexanderramin/kurva/internal/domain"
)

const phaseColumns = `id, project_id, urutan, name, start_date, end_date, is_auto_generated, generation_mode, created_at, updated_at`

// SQLitePhaseRepo implements PhaseRepo over the tahapan table.
type SQLitePhaseRepo struct {
	db db.DBTX
}

// NewSQLitePhaseRepo creates a new SQLitePhaseRepo.
func NewSQLitePhaseRepo(conn db.DBTX) *SQLitePhaseRepo {
	return &SQLitePhaseRepo{db: conn}
}

func (r *SQLitePhaseRepo) Create(ctx context.Context, p *domain.Phase) error {
	query := `INSERT INTO tahapan (` + phaseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ProjectID,
		p.Urutan,
		p.Name,
		nullableTimeToString(p.StartDate, dateLayout),
		nullableTimeToString(p.EndDate, dateLayout),
		boolToInt(p.IsAutoGenerated),
		string(p.GenerationMode),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting tahapan: %w", err)
	}
	return nil
}

func (r *SQLitePhaseRepo) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+phaseColumns+` FROM tahapan WHERE id = ?`, id)
	p, err := scanPhase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tahapan: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning tahapan: %w", err)
	}
	return p, nil
}

// ListByProject returns phases ordered by urutan, then start date.
func (r *SQLitePhaseRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+phaseColumns+` FROM tahapan WHERE project_id = ? ORDER BY urutan, start_date, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tahapan: %w", err)
	}
	defer rows.Close()

	var phases []*domain.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tahapan row: %w", err)
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tahapan: %w", err)
	}
	return phases, nil
}

func (r *SQLitePhaseRepo) Update(ctx context.Context, p *domain.Phase) error {
	query := `UPDATE tahapan SET urutan = ?, name = ?, start_date = ?, end_date = ?,
		is_auto_generated = ?, generation_mode = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Urutan,
		p.Name,
		nullableTimeToString(p.StartDate, dateLayout),
		nullableTimeToString(p.EndDate, dateLayout),
		boolToInt(p.IsAutoGenerated),
		string(p.GenerationMode),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating tahapan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tahapan %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLitePhaseRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tahapan WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting tahapan: %w", err)
	}
	return nil
}

// DeleteAutoGenerated removes the project's generated phases along with
// their assignments, leaving manual phases in place.
func (r *SQLitePhaseRepo) DeleteAutoGenerated(ctx context.Context, projectID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tahapan WHERE project_id = ? AND is_auto_generated = 1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("deleting generated tahapan: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanPhase(s scanner) (*domain.Phase, error) {
	var p domain.Phase
	var startStr, endStr sql.NullString
	var auto int
	var modeStr, createdAtStr, updatedAtStr string

	if err := s.Scan(
		&p.ID, &p.ProjectID, &p.Urutan, &p.Name,
		&startStr, &endStr, &auto, &modeStr,
		&createdAtStr, &updatedAtStr,
	); err != nil {
		return nil, err
	}

	var err error
	p.CreatedAt, p.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing tahapan timestamps: %w", err)
	}
	p.StartDate = parseNullableTime(startStr, dateLayout)
	p.EndDate = parseNullableTime(endStr, dateLayout)
	p.IsAutoGenerated = intToBool(auto)
	p.GenerationMode = domain.GenerationMode(modeStr)
	return &p, nil
}
