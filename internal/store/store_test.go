// Tests for store open/close, schema migrations, and transaction
// atomicity.
package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// newTestStore opens a fresh store in a per-test temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cadence.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedRepo creates a repository for tests that need one.
func seedRepo(t *testing.T, s *Store) *types.Repository {
	t.Helper()
	repo, err := s.CreateRepository("acme", "test repository", []string{"ana", "bo"}, nil)
	if err != nil {
		t.Fatalf("CreateRepository failed: %v", err)
	}
	return repo
}

// seedProject creates a named project appended to the roadmap.
func seedProject(t *testing.T, s *Store, repoID, name string) *types.Project {
	t.Helper()
	p, err := s.CreateProject(repoID, name, "objective of "+name, nil, nil)
	if err != nil {
		t.Fatalf("CreateProject(%s) failed: %v", name, err)
	}
	return p
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s := newTestStore(t)

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("expected schema version %d, got %d", len(migrations), version)
	}
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	repo := seedRepo(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("expected schema version %d after reopen, got %d", len(migrations), version)
	}

	got, err := s.GetRepository(repo.RepoID)
	if err != nil {
		t.Fatalf("GetRepository after reopen failed: %v", err)
	}
	if got.Name != repo.Name {
		t.Errorf("expected repository %q, got %q", repo.Name, got.Name)
	}
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	repo := seedRepo(t, s)
	seedProject(t, s, repo.RepoID, "alpha")

	forced := errors.New("forced failure")
	err := s.RunInTx(func(tx *Tx) error {
		if _, err := tx.insertProject(repo.RepoID, "doomed", "", nil, nil, 2); err != nil {
			return err
		}
		return forced
	})
	if !errors.Is(err, forced) {
		t.Fatalf("expected forced error, got %v", err)
	}

	projects, err := s.ListProjects(repo.RepoID)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "alpha" {
		t.Errorf("rollback leaked rows: %+v", projects)
	}
}

func TestRunInTx_PreservesErrorKind(t *testing.T) {
	s := newTestStore(t)

	err := s.RunInTx(func(tx *Tx) error {
		_, err := tx.GetProject("missing")
		return err
	})
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected NotFound through RunInTx, got %v", err)
	}
}
