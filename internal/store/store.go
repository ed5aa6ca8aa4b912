// Package store implements the SQLite entity store for the cadence
// delivery tracker. All writes are transactional; position-changing
// operations keep sibling sequences gapless.
package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// Store wraps a single SQLite database file. One process, one logical
// writer; database/sql serializes concurrent write requests.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the store at path and applies any pending
// schema migrations.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, types.Storagef("open store %s: %v", path, err)
	}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// OpenReadOnly opens an existing store file without applying
// migrations. Used by the consolidation service to extract rows from
// secondary stores in one read-only pass.
func OpenReadOnly(path string) (*Store, error) {
	dsn := "file:" + path + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, types.Storagef("open store read-only %s: %v", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return types.Storagef("close store: %v", err)
	}
	return nil
}

// Tx is a transaction-scoped view of the store. All multi-row
// operations run through RunInTx so partial application is never
// observable.
type Tx struct {
	tx *sql.Tx
}

// RunInTx executes fn inside one transaction. On error the transaction
// rolls back fully; on success it commits. Errors from fn pass through
// unchanged so typed failures keep their kind.
func (s *Store) RunInTx(fn func(tx *Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return types.Storagef("begin transaction: %v", err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return types.Storagef("commit transaction: %v", err)
	}
	return nil
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so read helpers can be
// shared between direct reads and transaction-scoped reads.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// newID generates a UUID v7 entity id, falling back to v4 if v7
// generation fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Timestamps are stored as RFC3339 UTC text columns.

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func fmtNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
