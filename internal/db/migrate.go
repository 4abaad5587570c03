package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateTahapanDailyMode(db); err != nil {
		return fmt.Errorf("migrating tahapan generation_mode constraint: %w", err)
	}
	return nil
}

// migrateTahapanDailyMode rebuilds tahapan tables created before daily
// generation existed, whose CHECK constraint only allowed weekly and monthly.
func migrateTahapanDailyMode(db *sql.DB) error {
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring db connection: %w", err)
	}
	defer conn.Close()

	var createSQL string
	if err := conn.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'tahapan'`).Scan(&createSQL); err != nil {
		return fmt.Errorf("loading tahapan schema: %w", err)
	}
	if strings.Contains(strings.ToLower(createSQL), "'daily'") {
		return nil
	}

	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
		return fmt.Errorf("disabling foreign keys: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`)
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS tahapan_new`); err != nil {
		return fmt.Errorf("dropping stale tahapan_new: %w", err)
	}
	if _, err := tx.ExecContext(ctx, strings.Replace(tahapanTable, "CREATE TABLE IF NOT EXISTS tahapan", "CREATE TABLE tahapan_new", 1)); err != nil {
		return fmt.Errorf("creating tahapan_new: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO tahapan_new (
		id, project_id, urutan, name, start_date, end_date,
		is_auto_generated, generation_mode, created_at, updated_at
	) SELECT
		id, project_id, urutan, name, start_date, end_date,
		is_auto_generated, generation_mode, created_at, updated_at
	FROM tahapan`); err != nil {
		return fmt.Errorf("copying tahapan data: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DROP TABLE tahapan`); err != nil {
		return fmt.Errorf("dropping old tahapan: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE tahapan_new RENAME TO tahapan`); err != nil {
		return fmt.Errorf("renaming tahapan_new: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_tahapan_project ON tahapan(project_id, urutan)`); err != nil {
		return fmt.Errorf("recreating idx_tahapan_project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tahapan migration: %w", err)
	}
	committed = true
	return nil
}

const tahapanTable = `CREATE TABLE IF NOT EXISTS tahapan (
		id                TEXT PRIMARY KEY,
		project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		urutan            INTEGER NOT NULL DEFAULT 0,
		name              TEXT NOT NULL DEFAULT '',
		start_date        TEXT,
		end_date          TEXT,
		is_auto_generated INTEGER NOT NULL DEFAULT 0,
		generation_mode   TEXT NOT NULL DEFAULT ''
		                  CHECK(generation_mode IN ('','daily','weekly','monthly')),
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id            TEXT PRIMARY KEY,
		short_id      TEXT NOT NULL DEFAULT '',
		name          TEXT NOT NULL,
		start_date    TEXT NOT NULL,
		end_date      TEXT,
		default_scale TEXT NOT NULL DEFAULT 'weekly'
		              CHECK(default_scale IN ('daily','weekly','monthly','custom')),
		status        TEXT NOT NULL DEFAULT 'active'
		              CHECK(status IN ('active','done','archived')),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(short_id) WHERE short_id != ''`,

	tahapanTable,
	`CREATE INDEX IF NOT EXISTS idx_tahapan_project ON tahapan(project_id, urutan)`,

	`CREATE TABLE IF NOT EXISTS work_nodes (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		parent_id   TEXT REFERENCES work_nodes(id) ON DELETE CASCADE,
		kind        TEXT NOT NULL
		            CHECK(kind IN ('klasifikasi','sub-klasifikasi','pekerjaan')),
		name        TEXT NOT NULL,
		volume      REAL NOT NULL DEFAULT 0 CHECK(volume >= 0),
		satuan      TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_nodes_project ON work_nodes(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_nodes_parent ON work_nodes(parent_id)`,

	`CREATE TABLE IF NOT EXISTS pekerjaan_tahapan (
		work_node_id TEXT NOT NULL REFERENCES work_nodes(id) ON DELETE CASCADE,
		tahapan_id   TEXT NOT NULL REFERENCES tahapan(id) ON DELETE CASCADE,
		proporsi     REAL NOT NULL CHECK(proporsi >= 0 AND proporsi <= 100),
		updated_at   TEXT NOT NULL,
		PRIMARY KEY (work_node_id, tahapan_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pekerjaan_tahapan_tahapan ON pekerjaan_tahapan(tahapan_id)`,

	`CREATE TABLE IF NOT EXISTS progress_weekly (
		work_node_id TEXT NOT NULL REFERENCES work_nodes(id) ON DELETE CASCADE,
		week_number  INTEGER NOT NULL CHECK(week_number > 0),
		proportion   REAL NOT NULL CHECK(proportion >= 0 AND proportion <= 100),
		updated_at   TEXT NOT NULL,
		PRIMARY KEY (work_node_id, week_number)
	)`,

	// Week end day became configurable per project.
	`ALTER TABLE projects ADD COLUMN week_end_day INTEGER NOT NULL DEFAULT 6 CHECK(week_end_day BETWEEN 0 AND 6)`,

	// Conversion notes on canonical rows.
	`ALTER TABLE progress_weekly ADD COLUMN notes TEXT NOT NULL DEFAULT ''`,
}
