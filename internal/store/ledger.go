package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// GetMigrationRecord looks up the consolidation ledger for a
// (source path, content hash) pair. Returns ErrNotFound when the pair
// has never been recorded.
func (s *Store) GetMigrationRecord(sourcePath, contentHash string) (*types.MigrationRecord, error) {
	var rec types.MigrationRecord
	var status, migratedAt string
	err := s.db.QueryRow(
		`SELECT source_path, content_hash, status, validation, migrated_at
		 FROM store_migrations WHERE source_path = ? AND content_hash = ?`,
		sourcePath, contentHash,
	).Scan(&rec.SourcePath, &rec.ContentHash, &status, &rec.Validation, &migratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("migration record for %s", sourcePath)
		}
		return nil, types.Storagef("query migration record: %v", err)
	}
	rec.Status = types.MigrationStatus(status)
	if rec.MigratedAt, err = parseTime(migratedAt); err != nil {
		return nil, types.Storagef("parse migration record timestamp: %v", err)
	}
	return &rec, nil
}

// RecordMigration upserts a ledger row for the pair. Re-running a
// failed consolidation overwrites the failed row with the new outcome.
func (s *Store) RecordMigration(sourcePath, contentHash string, status types.MigrationStatus, validation string) error {
	_, err := s.db.Exec(
		`INSERT INTO store_migrations (source_path, content_hash, status, validation, migrated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_path, content_hash) DO UPDATE SET
		   status = excluded.status, validation = excluded.validation, migrated_at = excluded.migrated_at`,
		sourcePath, contentHash, string(status), validation, fmtTime(time.Now()),
	)
	if err != nil {
		return types.Storagef("record migration: %v", err)
	}
	return nil
}

// ListMigrationRecords returns the full consolidation ledger, newest
// first.
func (s *Store) ListMigrationRecords() ([]types.MigrationRecord, error) {
	rows, err := s.db.Query(
		`SELECT source_path, content_hash, status, validation, migrated_at
		 FROM store_migrations ORDER BY migrated_at DESC`,
	)
	if err != nil {
		return nil, types.Storagef("query migration records: %v", err)
	}
	defer rows.Close()

	var recs []types.MigrationRecord
	for rows.Next() {
		var rec types.MigrationRecord
		var status, migratedAt string
		if err := rows.Scan(&rec.SourcePath, &rec.ContentHash, &status, &rec.Validation, &migratedAt); err != nil {
			return nil, types.Storagef("scan migration record: %v", err)
		}
		rec.Status = types.MigrationStatus(status)
		if rec.MigratedAt, err = parseTime(migratedAt); err != nil {
			return nil, types.Storagef("parse migration record timestamp: %v", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storagef("iterate migration records: %v", err)
	}
	return recs, nil
}
