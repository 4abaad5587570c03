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

const workNodeColumns = `id, project_id, parent_id, kind, name, volume, satuan, order_index, created_at, updated_at`

// SQLiteWorkNodeRepo implements WorkNodeRepo using a SQLite database.
type SQLiteWorkNodeRepo struct {
	db db.DBTX
}

// NewSQLiteWorkNodeRepo creates a new SQLiteWorkNodeRepo.
func NewSQLiteWorkNodeRepo(conn db.DBTX) *SQLiteWorkNodeRepo {
	return &SQLiteWorkNodeRepo{db: conn}
}

func (r *SQLiteWorkNodeRepo) Create(ctx context.Context, n *domain.WorkNode) error {
	query := `INSERT INTO work_nodes (` + workNodeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.ProjectID,
		nullableString(n.ParentID),
		string(n.Kind),
		n.Name,
		n.Volume,
		n.Satuan,
		n.OrderIndex,
		n.CreatedAt.Format(time.RFC3339),
		n.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting work node: %w", err)
	}
	return nil
}

func (r *SQLiteWorkNodeRepo) GetByID(ctx context.Context, id string) (*domain.WorkNode, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workNodeColumns+` FROM work_nodes WHERE id = ?`, id)
	n, err := scanWorkNode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("work node: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning work node: %w", err)
	}
	return n, nil
}

func (r *SQLiteWorkNodeRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.WorkNode, error) {
	return r.list(ctx, `SELECT `+workNodeColumns+` FROM work_nodes WHERE project_id = ?
		ORDER BY order_index, name`, projectID)
}

func (r *SQLiteWorkNodeRepo) ListChildren(ctx context.Context, parentID string) ([]*domain.WorkNode, error) {
	return r.list(ctx, `SELECT `+workNodeColumns+` FROM work_nodes WHERE parent_id = ?
		ORDER BY order_index, name`, parentID)
}

func (r *SQLiteWorkNodeRepo) Update(ctx context.Context, n *domain.WorkNode) error {
	query := `UPDATE work_nodes SET parent_id = ?, kind = ?, name = ?, volume = ?, satuan = ?,
		order_index = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableString(n.ParentID),
		string(n.Kind),
		n.Name,
		n.Volume,
		n.Satuan,
		n.OrderIndex,
		n.UpdatedAt.Format(time.RFC3339),
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work node: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("work node %s: %w", n.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteWorkNodeRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM work_nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting work node: %w", err)
	}
	return nil
}

func (r *SQLiteWorkNodeRepo) list(ctx context.Context, query string, args ...any) ([]*domain.WorkNode, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing work nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*domain.WorkNode
	for rows.Next() {
		n, err := scanWorkNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning work node row: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work nodes: %w", err)
	}
	return nodes, nil
}

func scanWorkNode(s scanner) (*domain.WorkNode, error) {
	var n domain.WorkNode
	var parent sql.NullString
	var kindStr, createdAtStr, updatedAtStr string

	if err := s.Scan(
		&n.ID, &n.ProjectID, &parent, &kindStr, &n.Name,
		&n.Volume, &n.Satuan, &n.OrderIndex,
		&createdAtStr, &updatedAtStr,
	); err != nil {
		return nil, err
	}

	var err error
	n.CreatedAt, n.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing work node timestamps: %w", err)
	}
	n.ParentID = stringPtr(parent)
	n.Kind = domain.NodeKind(kindStr)
	return &n, nil
}
