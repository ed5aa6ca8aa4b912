package store

import (
	"errors"
	"testing"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

func TestMigrationLedger_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	err := s.RecordMigration("/old/cadence.db", "abc123", types.MigrationCompleted, "validated")
	if err != nil {
		t.Fatalf("RecordMigration failed: %v", err)
	}

	rec, err := s.GetMigrationRecord("/old/cadence.db", "abc123")
	if err != nil {
		t.Fatalf("GetMigrationRecord failed: %v", err)
	}
	if rec.Status != types.MigrationCompleted || rec.Validation != "validated" {
		t.Errorf("unexpected ledger row: %+v", rec)
	}
}

func TestMigrationLedger_KeyedByContentHash(t *testing.T) {
	s := newTestStore(t)

	// Same path, different content: two independent rows.
	if err := s.RecordMigration("/old/cadence.db", "hash-a", types.MigrationCompleted, ""); err != nil {
		t.Fatalf("RecordMigration failed: %v", err)
	}
	if err := s.RecordMigration("/old/cadence.db", "hash-b", types.MigrationFailed, "import: boom"); err != nil {
		t.Fatalf("RecordMigration failed: %v", err)
	}

	records, err := s.ListMigrationRecords()
	if err != nil {
		t.Fatalf("ListMigrationRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(records))
	}

	if _, err := s.GetMigrationRecord("/old/cadence.db", "hash-c"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected NotFound for unseen hash, got %v", err)
	}
}

func TestMigrationLedger_UpsertOverwrites(t *testing.T) {
	s := newTestStore(t)

	// A failed attempt followed by a successful retry of the same
	// content replaces the row rather than duplicating it.
	if err := s.RecordMigration("/old/cadence.db", "hash", types.MigrationFailed, "import: locked"); err != nil {
		t.Fatalf("RecordMigration failed: %v", err)
	}
	if err := s.RecordMigration("/old/cadence.db", "hash", types.MigrationCompleted, "validated"); err != nil {
		t.Fatalf("retry RecordMigration failed: %v", err)
	}

	rec, err := s.GetMigrationRecord("/old/cadence.db", "hash")
	if err != nil {
		t.Fatalf("GetMigrationRecord failed: %v", err)
	}
	if rec.Status != types.MigrationCompleted {
		t.Errorf("expected completed after retry, got %s", rec.Status)
	}

	records, err := s.ListMigrationRecords()
	if err != nil {
		t.Fatalf("ListMigrationRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 ledger row after upsert, got %d", len(records))
	}
}
