package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_LegacySchema upgrades a database created before
// configurable week ends, conversion notes and daily phases. Existing rows
// must survive and pick up the new defaults.
func TestMigrate_UpgradePath_LegacySchema(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	legacy := []string{
		`CREATE TABLE projects (
			id            TEXT PRIMARY KEY,
			short_id      TEXT NOT NULL DEFAULT '',
			name          TEXT NOT NULL,
			start_date    TEXT NOT NULL,
			end_date      TEXT,
			default_scale TEXT NOT NULL DEFAULT 'weekly',
			status        TEXT NOT NULL DEFAULT 'active',
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		)`,
		`CREATE TABLE tahapan (
			id                TEXT PRIMARY KEY,
			project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			urutan            INTEGER NOT NULL DEFAULT 0,
			name              TEXT NOT NULL DEFAULT '',
			start_date        TEXT,
			end_date          TEXT,
			is_auto_generated INTEGER NOT NULL DEFAULT 0,
			generation_mode   TEXT NOT NULL DEFAULT ''
			                  CHECK(generation_mode IN ('','weekly','monthly')),
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL
		)`,
		`CREATE TABLE progress_weekly (
			work_node_id TEXT NOT NULL,
			week_number  INTEGER NOT NULL CHECK(week_number > 0),
			proportion   REAL NOT NULL,
			updated_at   TEXT NOT NULL,
			PRIMARY KEY (work_node_id, week_number)
		)`,
		`INSERT INTO projects (id, name, start_date, created_at, updated_at)
			VALUES ('p1', 'Jalan', '2025-01-06', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
		`INSERT INTO tahapan (id, project_id, urutan, name, start_date, end_date, is_auto_generated, generation_mode, created_at, updated_at)
			VALUES ('t1', 'p1', 1, 'Bulan 1', '2025-01-06', '2025-01-31', 1, 'monthly', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
		`INSERT INTO progress_weekly (work_node_id, week_number, proportion, updated_at)
			VALUES ('w1', 2, 12.5, '2025-01-01T00:00:00Z')`,
	}
	for _, stmt := range legacy {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	require.NoError(t, Migrate(db))

	var weekEnd int
	require.NoError(t, db.QueryRow(`SELECT week_end_day FROM projects WHERE id = 'p1'`).Scan(&weekEnd))
	assert.Equal(t, 6, weekEnd)

	var notes string
	var proportion float64
	require.NoError(t, db.QueryRow(`SELECT proportion, notes FROM progress_weekly WHERE work_node_id = 'w1'`).Scan(&proportion, &notes))
	assert.Equal(t, 12.5, proportion)
	assert.Equal(t, "", notes)

	var name, mode string
	require.NoError(t, db.QueryRow(`SELECT name, generation_mode FROM tahapan WHERE id = 't1'`).Scan(&name, &mode))
	assert.Equal(t, "Bulan 1", name)
	assert.Equal(t, "monthly", mode)

	_, err = db.Exec(`INSERT INTO tahapan (id, project_id, urutan, start_date, end_date, is_auto_generated, generation_mode, created_at, updated_at)
		VALUES ('t2', 'p1', 2, '2025-01-07', '2025-01-07', 1, 'daily', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.NoError(t, err, "daily phases are accepted after the upgrade")

	var createSQL string
	require.NoError(t, db.QueryRow(`SELECT sql FROM sqlite_master WHERE type='table' AND name='tahapan'`).Scan(&createSQL))
	assert.Contains(t, createSQL, "'daily'")
}
