package store

import (
	"testing"
)

// seedTree builds a repo with a project, phase, and task so snapshot
// tests have every table populated.
func seedTree(t *testing.T, s *Store) {
	t.Helper()
	repo := seedRepo(t, s)
	project := seedProject(t, s, repo.RepoID, "alpha")
	phase, err := s.CreatePhase(project.ProjectID)
	if err != nil {
		t.Fatalf("CreatePhase failed: %v", err)
	}
	if _, err := s.CreateTask(phase.PhaseID, 1, "kickoff", "ana", 1); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
}

func TestExportSnapshot(t *testing.T) {
	s := newTestStore(t)
	seedTree(t, s)

	sn, err := s.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}
	if len(sn.Repositories) != 1 || len(sn.Projects) != 1 || len(sn.Phases) != 1 {
		t.Errorf("unexpected snapshot shape: %d repos, %d projects, %d phases",
			len(sn.Repositories), len(sn.Projects), len(sn.Phases))
	}
	// One cycle with its seven steps and one task.
	if len(sn.Cycles) != 1 || len(sn.Steps) != 7 || len(sn.Tasks) != 1 {
		t.Errorf("unexpected snapshot children: %d cycles, %d steps, %d tasks",
			len(sn.Cycles), len(sn.Steps), len(sn.Tasks))
	}
	if len(sn.Activity) == 0 {
		t.Error("expected activity entries in snapshot")
	}
}

func TestImportSnapshot_IntoEmptyStore(t *testing.T) {
	src := newTestStore(t)
	seedTree(t, src)
	sn, err := src.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}

	dst := newTestStore(t)
	if err := dst.ImportSnapshot(sn); err != nil {
		t.Fatalf("ImportSnapshot failed: %v", err)
	}

	got, err := dst.ExportSnapshot()
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}
	if got.RowCount() != sn.RowCount() {
		t.Errorf("expected %d rows after import, got %d", sn.RowCount(), got.RowCount())
	}
	if len(got.Activity) != len(sn.Activity) {
		t.Errorf("expected %d activity entries, got %d", len(sn.Activity), len(got.Activity))
	}
}

func TestImportSnapshot_Idempotent(t *testing.T) {
	src := newTestStore(t)
	seedTree(t, src)
	sn, err := src.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}

	dst := newTestStore(t)
	if err := dst.ImportSnapshot(sn); err != nil {
		t.Fatalf("first ImportSnapshot failed: %v", err)
	}
	if err := dst.ImportSnapshot(sn); err != nil {
		t.Fatalf("second ImportSnapshot failed: %v", err)
	}

	got, err := dst.ExportSnapshot()
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}
	if got.RowCount() != sn.RowCount() {
		t.Errorf("repeat import duplicated rows: expected %d, got %d", sn.RowCount(), got.RowCount())
	}
	if len(got.Activity) != len(sn.Activity) {
		t.Errorf("repeat import duplicated activity: expected %d, got %d", len(sn.Activity), len(got.Activity))
	}
}
