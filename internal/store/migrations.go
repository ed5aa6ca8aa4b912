package store

import (
	"database/sql"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// migrations holds all schema migrations in order. Migrations are
// applied sequentially and tracked via the schema_version table; this
// list is the only sanctioned way to change column shape.
var migrations = []string{
	// Migration 1: core entity tables.
	`CREATE TABLE IF NOT EXISTS repositories (
    repo_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    team TEXT NOT NULL DEFAULT '[]',
    metadata TEXT NOT NULL DEFAULT '{}',
    overall_progress INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
    project_id TEXT PRIMARY KEY,
    repo_id TEXT NOT NULL REFERENCES repositories(repo_id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    objective TEXT NOT NULL DEFAULT '',
    deliverables TEXT NOT NULL DEFAULT '[]',
    success_metrics TEXT NOT NULL DEFAULT '[]',
    status TEXT NOT NULL DEFAULT 'planned',
    completion INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_repo ON projects(repo_id, position);

CREATE TABLE IF NOT EXISTS phases (
    phase_id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(project_id) ON DELETE CASCADE,
    number INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    current_step INTEGER NOT NULL DEFAULT 1,
    started_at TEXT,
    ended_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_phases_project ON phases(project_id, number);

CREATE TABLE IF NOT EXISTS cycles (
    cycle_id TEXT PRIMARY KEY,
    phase_id TEXT NOT NULL REFERENCES phases(phase_id) ON DELETE CASCADE,
    cycle_number INTEGER NOT NULL,
    started_at TEXT NOT NULL,
    ended_at TEXT,
    UNIQUE (phase_id, cycle_number)
);

CREATE TABLE IF NOT EXISTS steps (
    step_id TEXT PRIMARY KEY,
    phase_id TEXT NOT NULL REFERENCES phases(phase_id) ON DELETE CASCADE,
    cycle_number INTEGER NOT NULL,
    step_number INTEGER NOT NULL CHECK (step_number BETWEEN 1 AND 7),
    status TEXT NOT NULL DEFAULT 'not_started',
    completion INTEGER NOT NULL DEFAULT 0 CHECK (completion BETWEEN 0 AND 100),
    deliverables TEXT NOT NULL DEFAULT '[]',
    blockers TEXT NOT NULL DEFAULT '[]',
    notes TEXT NOT NULL DEFAULT '',
    started_at TEXT,
    ended_at TEXT,
    UNIQUE (phase_id, cycle_number, step_number)
);

CREATE TABLE IF NOT EXISTS tasks (
    task_id TEXT PRIMARY KEY,
    phase_id TEXT NOT NULL REFERENCES phases(phase_id) ON DELETE CASCADE,
    step_number INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL,
    assignee TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'todo',
    points INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_phase ON tasks(phase_id, step_number);

CREATE TABLE IF NOT EXISTS activity_log (
    entry_id INTEGER PRIMARY KEY AUTOINCREMENT,
    repo_id TEXT NOT NULL DEFAULT '',
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    action TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_repo ON activity_log(repo_id, entry_id);`,

	// Migration 2: consolidation ledger. One row per
	// (source_path, content_hash); a completed row is the idempotency
	// guarantee that the same content is never re-applied.
	`CREATE TABLE IF NOT EXISTS store_migrations (
    source_path TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    status TEXT NOT NULL,
    validation TEXT NOT NULL DEFAULT '',
    migrated_at TEXT NOT NULL,
    PRIMARY KEY (source_path, content_hash)
);`,

	// Migration 3: repository documentation records.
	`CREATE TABLE IF NOT EXISTS documentation (
    doc_id TEXT PRIMARY KEY,
    repo_id TEXT NOT NULL REFERENCES repositories(repo_id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    doc_type TEXT NOT NULL DEFAULT 'note',
    content TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documentation_repo ON documentation(repo_id);`,
}

// applyMigrations brings the schema to the latest version. Each pending
// migration runs in its own transaction together with its
// schema_version marker, so a crash leaves the version accurate.
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);`); err != nil {
		return types.Storagef("create schema_version: %v", err)
	}

	var current int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current)
	if err != nil {
		return types.Storagef("read schema version: %v", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		tx, err := db.Begin()
		if err != nil {
			return types.Storagef("begin migration %d: %v", version, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return types.Storagef("apply migration %d: %v", version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
			tx.Rollback()
			return types.Storagef("record migration %d: %v", version, err)
		}
		if err := tx.Commit(); err != nil {
			return types.Storagef("commit migration %d: %v", version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v)
	if err != nil {
		return 0, types.Storagef("read schema version: %v", err)
	}
	return v, nil
}
