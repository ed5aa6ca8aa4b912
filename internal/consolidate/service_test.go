package consolidate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/cadence/internal/paths"
	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// buildSecondary creates a store file at path with one repo, project,
// phase, and task, then closes it.
func buildSecondary(t *testing.T, path string) {
	t.Helper()
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("open secondary failed: %v", err)
	}
	repo, err := s.CreateRepository("scattered", "left behind in a workspace", nil, nil)
	if err != nil {
		t.Fatalf("CreateRepository failed: %v", err)
	}
	project, err := s.CreateProject(repo.RepoID, "orphan", "", nil, nil)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	phase, err := s.CreatePhase(project.ProjectID)
	if err != nil {
		t.Fatalf("CreatePhase failed: %v", err)
	}
	if _, err := s.CreateTask(phase.PhaseID, 1, "recover me", "", 0); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close secondary failed: %v", err)
	}
}

// newCanonical opens a canonical store in its own data dir.
func newCanonical(t *testing.T) (*store.Store, string) {
	t.Helper()
	dataDir := t.TempDir()
	s, err := store.Open(paths.StorePath(dataDir))
	if err != nil {
		t.Fatalf("open canonical failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, dataDir
}

func TestConsolidateSource_MergesAndRetires(t *testing.T) {
	canonical, dataDir := newCanonical(t)
	svc := NewService(canonical, dataDir, nil)

	src := filepath.Join(t.TempDir(), "cadence.db")
	buildSecondary(t, src)

	if err := svc.consolidateSource(src); err != nil {
		t.Fatalf("consolidateSource failed: %v", err)
	}

	// Rows landed in the canonical store.
	repo, err := canonical.GetRepositoryByName("scattered")
	if err != nil {
		t.Fatalf("merged repository missing: %v", err)
	}
	projects, err := canonical.ListProjects(repo.RepoID)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "orphan" {
		t.Errorf("merged projects wrong: %+v", projects)
	}

	// Source retired: file gone, marker written.
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected source removed, got %v", err)
	}
	markerData, err := os.ReadFile(paths.MarkerPath(src))
	if err != nil {
		t.Fatalf("marker not written: %v", err)
	}
	var m marker
	if err := yaml.Unmarshal(markerData, &m); err != nil {
		t.Fatalf("marker not valid YAML: %v", err)
	}
	if m.ConsolidatedInto != paths.StorePath(dataDir) {
		t.Errorf("marker points at %q, want %q", m.ConsolidatedInto, paths.StorePath(dataDir))
	}
	if m.ContentHash == "" || m.ConsolidatedAt == "" {
		t.Errorf("marker incomplete: %+v", m)
	}

	// Ledger records the merge as completed.
	rec, err := canonical.GetMigrationRecord(src, m.ContentHash)
	if err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if rec.Status != types.MigrationCompleted {
		t.Errorf("expected completed ledger row, got %+v", rec)
	}
}

func TestConsolidateSource_SkipsAlreadyMerged(t *testing.T) {
	canonical, dataDir := newCanonical(t)
	svc := NewService(canonical, dataDir, nil)

	dir := t.TempDir()
	src := filepath.Join(dir, "cadence.db")
	buildSecondary(t, src)

	// Preserve the exact bytes so the same content can reappear at the
	// same path after retirement.
	content, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read secondary: %v", err)
	}

	if err := svc.consolidateSource(src); err != nil {
		t.Fatalf("first consolidateSource failed: %v", err)
	}
	before, err := canonical.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}

	// Same content, same path: the ledger short-circuits and the file
	// is left alone.
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatalf("restore secondary: %v", err)
	}
	if err := svc.consolidateSource(src); err != nil {
		t.Fatalf("second consolidateSource failed: %v", err)
	}

	after, err := canonical.ExportSnapshot()
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}
	if after.RowCount() != before.RowCount() {
		t.Errorf("repeat consolidation changed rows: %d -> %d", before.RowCount(), after.RowCount())
	}
	if len(after.Activity) != len(before.Activity) {
		t.Errorf("repeat consolidation changed activity: %d -> %d", len(before.Activity), len(after.Activity))
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("skipped source should remain in place: %v", err)
	}

	records, err := canonical.ListMigrationRecords()
	if err != nil {
		t.Fatalf("ListMigrationRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 ledger row, got %d", len(records))
	}
}

func TestConsolidateSource_SameContentDifferentPath(t *testing.T) {
	canonical, dataDir := newCanonical(t)
	svc := NewService(canonical, dataDir, nil)

	dir := t.TempDir()
	src := filepath.Join(dir, "cadence.db")
	buildSecondary(t, src)
	content, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read secondary: %v", err)
	}

	if err := svc.consolidateSource(src); err != nil {
		t.Fatalf("first consolidateSource failed: %v", err)
	}
	before, err := canonical.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}

	// A copy at another path is merged again, but the natural-id
	// upserts keep the canonical row set identical.
	copyPath := filepath.Join(t.TempDir(), "cadence.db")
	if err := os.WriteFile(copyPath, content, 0o644); err != nil {
		t.Fatalf("write copy: %v", err)
	}
	if err := svc.consolidateSource(copyPath); err != nil {
		t.Fatalf("consolidate copy failed: %v", err)
	}

	after, err := canonical.ExportSnapshot()
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}
	if after.RowCount() != before.RowCount() {
		t.Errorf("duplicate content changed rows: %d -> %d", before.RowCount(), after.RowCount())
	}
}

func TestRun_MergesWorkspaceStore(t *testing.T) {
	canonical, dataDir := newCanonical(t)
	svc := NewService(canonical, dataDir, nil)

	workspace := t.TempDir()
	src := filepath.Join(workspace, "cadence.db")
	buildSecondary(t, src)
	t.Chdir(workspace)

	if err := svc.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := canonical.GetRepositoryByName("scattered"); err != nil {
		t.Errorf("workspace store not merged: %v", err)
	}
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("workspace store not retired: %v", err)
	}

	// Lock released on exit.
	if _, err := os.Stat(paths.LockPath(dataDir)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("lock not released: %v", err)
	}
}

func TestRun_LegacyDotDir(t *testing.T) {
	canonical, dataDir := newCanonical(t)
	svc := NewService(canonical, dataDir, nil)

	workspace := t.TempDir()
	legacy := filepath.Join(workspace, paths.LegacyDirName)
	if err := os.MkdirAll(legacy, 0o755); err != nil {
		t.Fatalf("mkdir legacy: %v", err)
	}
	buildSecondary(t, filepath.Join(legacy, "cadence.db"))
	t.Chdir(workspace)

	if err := svc.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := canonical.GetRepositoryByName("scattered"); err != nil {
		t.Errorf("legacy store not merged: %v", err)
	}
}

func TestRun_LockHeld(t *testing.T) {
	canonical, dataDir := newCanonical(t)
	svc := NewService(canonical, dataDir, nil)

	writeLockFile(t, paths.LockPath(dataDir), os.Getpid())

	err := svc.Run()
	if !errors.Is(err, types.ErrConflict) {
		t.Fatalf("expected ConflictError with held lock, got %v", err)
	}
}

func TestContentHash_Deterministic(t *testing.T) {
	src := filepath.Join(t.TempDir(), "cadence.db")
	buildSecondary(t, src)

	s, err := store.OpenReadOnly(src)
	if err != nil {
		t.Fatalf("OpenReadOnly failed: %v", err)
	}
	defer s.Close()

	sn, err := s.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}
	h1, err := contentHash(sn)
	if err != nil {
		t.Fatalf("contentHash failed: %v", err)
	}
	h2, err := contentHash(sn)
	if err != nil {
		t.Fatalf("second contentHash failed: %v", err)
	}
	if h1 != h2 || len(h1) != 64 {
		t.Errorf("hash not stable hex sha-256: %q vs %q", h1, h2)
	}
}
