package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/kurva/internal/db"
	"github.com/google/uuid"
)

// NewTestDB opens a migrated in-memory database that is closed with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// ScheduleRows are the IDs of a minimal schedule: one project with one dated
// phase and one pekerjaan, ready for progress_weekly and pekerjaan_tahapan
// rows.
type ScheduleRows struct {
	ProjectID string
	PhaseID   string
	ItemID    string
}

// SeedScheduleRows inserts ScheduleRows with plain SQL, for tests below the
// repository layer.
func SeedScheduleRows(t *testing.T, q db.DBTX) ScheduleRows {
	t.Helper()
	rows := ScheduleRows{
		ProjectID: uuid.New().String(),
		PhaseID:   uuid.New().String(),
		ItemID:    uuid.New().String(),
	}
	now := time.Now().UTC().Format(time.RFC3339)
	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO projects (id, short_id, name, start_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{rows.ProjectID, fmt.Sprintf("TST%02d", testShortIDCounter.Add(1)), "Gudang", "2025-01-06", now, now}},
		{`INSERT INTO tahapan (id, project_id, urutan, name, start_date, end_date, is_auto_generated, generation_mode, created_at, updated_at)
			VALUES (?, ?, 1, 'Minggu 1', '2025-01-06', '2025-01-11', 1, 'weekly', ?, ?)`,
			[]any{rows.PhaseID, rows.ProjectID, now, now}},
		{`INSERT INTO work_nodes (id, project_id, kind, name, volume, satuan, created_at, updated_at)
			VALUES (?, ?, 'pekerjaan', 'Galian', 10, 'm3', ?, ?)`,
			[]any{rows.ItemID, rows.ProjectID, now, now}},
	}
	for _, s := range stmts {
		if _, err := q.ExecContext(context.Background(), s.query, s.args...); err != nil {
			t.Fatalf("seeding schedule rows: %v", err)
		}
	}
	return rows
}

// CountRows returns the number of rows in table that belong to workNodeID.
func CountRows(t *testing.T, q db.DBTX, table, workNodeID string) int {
	t.Helper()
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE work_node_id = ?`, table)
	if err := q.QueryRowContext(context.Background(), query, workNodeID).Scan(&n); err != nil {
		t.Fatalf("counting %s rows: %v", table, err)
	}
	return n
}
