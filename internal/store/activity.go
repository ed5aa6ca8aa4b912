package store

import (
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// LogActivity appends one append-only row describing a state-changing
// operation. Every mutating transaction calls this before committing.
func (t *Tx) LogActivity(repoID, entityType, entityID, action, detail string) error {
	_, err := t.tx.Exec(
		`INSERT INTO activity_log (repo_id, entity_type, entity_id, action, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		repoID, entityType, entityID, action, detail, fmtTime(time.Now()),
	)
	if err != nil {
		return types.Storagef("append activity: %v", err)
	}
	return nil
}

// ListActivity returns the most recent activity entries for a
// repository, newest first. A limit of 0 means no limit.
func (s *Store) ListActivity(repoID string, limit int) ([]types.ActivityEntry, error) {
	query := `SELECT entry_id, repo_id, entity_type, entity_id, action, detail, created_at
	          FROM activity_log WHERE repo_id = ? ORDER BY entry_id DESC`
	args := []any{repoID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, types.Storagef("query activity: %v", err)
	}
	defer rows.Close()

	var entries []types.ActivityEntry
	for rows.Next() {
		var e types.ActivityEntry
		var createdAt string
		if err := rows.Scan(&e.EntryID, &e.RepoID, &e.EntityType, &e.EntityID, &e.Action, &e.Detail, &createdAt); err != nil {
			return nil, types.Storagef("scan activity: %v", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, types.Storagef("parse activity created_at: %v", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storagef("iterate activity: %v", err)
	}
	return entries, nil
}
