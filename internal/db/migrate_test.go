package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedProjectAndLeaf(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO projects (id, name, start_date, created_at, updated_at, short_id)
		VALUES ('p1', 'Gedung', '2025-01-06', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', 'GDG01')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO work_nodes (id, project_id, kind, name, volume, created_at, updated_at)
		VALUES ('w1', 'p1', 'pekerjaan', 'Galian', 50, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tahapan (id, project_id, urutan, name, start_date, end_date, is_auto_generated, generation_mode, created_at, updated_at)
		VALUES ('t1', 'p1', 1, 'Minggu 1', '2025-01-06', '2025-01-11', 1, 'weekly', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time — should succeed without error.
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"projects", "tahapan", "work_nodes", "pekerjaan_tahapan", "progress_weekly"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_projects_short_id",
		"idx_tahapan_project",
		"idx_work_nodes_project",
		"idx_work_nodes_parent",
		"idx_pekerjaan_tahapan_tahapan",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_WALModeRequested(t *testing.T) {
	// In-memory SQLite reports "memory"; WAL only applies to file DBs.
	db := openTestDB(t)

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "memory", mode)
}

func TestMigrate_ProjectDefaults(t *testing.T) {
	db := openTestDB(t)
	seedProjectAndLeaf(t, db)

	var weekEnd int
	var scale, status string
	err := db.QueryRow(`SELECT week_end_day, default_scale, status FROM projects WHERE id = 'p1'`).Scan(&weekEnd, &scale, &status)
	require.NoError(t, err)
	assert.Equal(t, 6, weekEnd)
	assert.Equal(t, "weekly", scale)
	assert.Equal(t, "active", status)
}

func TestMigrate_CheckConstraints(t *testing.T) {
	db := openTestDB(t)
	seedProjectAndLeaf(t, db)

	tests := []struct {
		name string
		stmt string
	}{
		{"project status", `INSERT INTO projects (id, name, start_date, status, created_at, updated_at)
			VALUES ('p2', 'X', '2025-01-01', 'paused', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`},
		{"week end day", `UPDATE projects SET week_end_day = 7 WHERE id = 'p1'`},
		{"node kind", `INSERT INTO work_nodes (id, project_id, kind, name, created_at, updated_at)
			VALUES ('w2', 'p1', 'task', 'X', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`},
		{"negative volume", `UPDATE work_nodes SET volume = -1 WHERE id = 'w1'`},
		{"generation mode", `UPDATE tahapan SET generation_mode = 'hourly' WHERE id = 't1'`},
		{"proporsi above 100", `INSERT INTO pekerjaan_tahapan (work_node_id, tahapan_id, proporsi, updated_at)
			VALUES ('w1', 't1', 100.5, '2025-01-01T00:00:00Z')`},
		{"week zero", `INSERT INTO progress_weekly (work_node_id, week_number, proportion, updated_at)
			VALUES ('w1', 0, 10, '2025-01-01T00:00:00Z')`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Exec(tt.stmt)
			assert.Error(t, err)
		})
	}
}

func TestMigrate_ProgressWeeklyPrimaryKey(t *testing.T) {
	db := openTestDB(t)
	seedProjectAndLeaf(t, db)

	insert := `INSERT INTO progress_weekly (work_node_id, week_number, proportion, updated_at)
		VALUES ('w1', 1, 40, '2025-01-01T00:00:00Z')`
	_, err := db.Exec(insert)
	require.NoError(t, err)
	_, err = db.Exec(insert)
	assert.Error(t, err, "one canonical row per item and week")

	var notes string
	require.NoError(t, db.QueryRow(`SELECT notes FROM progress_weekly WHERE work_node_id = 'w1'`).Scan(&notes))
	assert.Equal(t, "", notes)
}

func TestMigrate_DeletingPhaseCascadesAssignments(t *testing.T) {
	db := openTestDB(t)
	seedProjectAndLeaf(t, db)

	_, err := db.Exec(`INSERT INTO pekerjaan_tahapan (work_node_id, tahapan_id, proporsi, updated_at)
		VALUES ('w1', 't1', 40, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO progress_weekly (work_node_id, week_number, proportion, updated_at)
		VALUES ('w1', 1, 40, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM tahapan WHERE id = 't1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM pekerjaan_tahapan`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM progress_weekly`).Scan(&n))
	assert.Equal(t, 1, n, "canonical rows outlive phase regeneration")
}

func TestMigrate_ProjectsShortIDPartialUniqueIndex(t *testing.T) {
	db := openTestDB(t)

	insert := func(id, short string) error {
		_, err := db.Exec(`INSERT INTO projects (id, name, start_date, created_at, updated_at, short_id)
			VALUES (?, 'X', '2025-01-01', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', ?)`, id, short)
		return err
	}
	require.NoError(t, insert("p1", ""))
	require.NoError(t, insert("p2", ""))
	require.NoError(t, insert("p3", "DUP01"))
	assert.Error(t, insert("p4", "DUP01"))
}

func TestMigrateTahapanDailyMode_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, migrateTahapanDailyMode(db))
}
