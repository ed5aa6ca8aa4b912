package query

import (
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// newFixture builds a store with a repo, two projects, and a phase
// under the second project.
func newFixture(t *testing.T) (*store.Store, *types.Repository, *types.Phase) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cadence.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	repo, err := s.CreateRepository("acme", "", nil, nil)
	if err != nil {
		t.Fatalf("CreateRepository failed: %v", err)
	}
	if _, err := s.CreateProject(repo.RepoID, "payments revamp", "rework the checkout flow", nil, nil); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	second, err := s.CreateProject(repo.RepoID, "search v2", "faster indexing", nil, nil)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	phase, err := s.CreatePhase(second.ProjectID)
	if err != nil {
		t.Fatalf("CreatePhase failed: %v", err)
	}
	return s, repo, phase
}

func TestCurrentStatus(t *testing.T) {
	s, repo, phase := newFixture(t)

	status, err := CurrentStatus(s, repo.RepoID)
	if err != nil {
		t.Fatalf("CurrentStatus failed: %v", err)
	}
	if len(status.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(status.Projects))
	}
	if status.ActivePhase == nil || status.ActivePhase.PhaseID != phase.PhaseID {
		t.Fatalf("active phase wrong: %+v", status.ActivePhase)
	}
	if status.ActiveProject == nil || status.ActiveProject.Name != "search v2" {
		t.Errorf("active project wrong: %+v", status.ActiveProject)
	}
	if status.CurrentStep == nil || status.CurrentStep.StepNumber != 1 {
		t.Errorf("current step wrong: %+v", status.CurrentStep)
	}
	if status.CurrentStep.Name() != "discovery" {
		t.Errorf("expected step name discovery, got %q", status.CurrentStep.Name())
	}
}

func TestCurrentStatus_NoActivePhase(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "cadence.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	repo, err := s.CreateRepository("quiet", "", nil, nil)
	if err != nil {
		t.Fatalf("CreateRepository failed: %v", err)
	}
	if _, err := s.CreateProject(repo.RepoID, "someday", "", nil, nil); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	status, err := CurrentStatus(s, repo.RepoID)
	if err != nil {
		t.Fatalf("CurrentStatus failed: %v", err)
	}
	if status.ActivePhase != nil || status.CurrentStep != nil {
		t.Errorf("expected no active phase, got %+v", status)
	}
	if len(status.Projects) != 1 {
		t.Errorf("expected 1 project, got %d", len(status.Projects))
	}
}

func TestGetRoadmap(t *testing.T) {
	s, repo, _ := newFixture(t)

	summary, err := GetRoadmap(s, repo.RepoID, false)
	if err != nil {
		t.Fatalf("GetRoadmap failed: %v", err)
	}
	if len(summary.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(summary.Projects))
	}
	// Roadmap order follows positions.
	if summary.Projects[0].Project.Name != "payments revamp" {
		t.Errorf("roadmap order wrong: %+v", summary.Projects[0].Project)
	}
	for _, pn := range summary.Projects {
		for _, phn := range pn.Phases {
			if phn.Cycles != nil {
				t.Error("summary roadmap should not carry cycles")
			}
		}
	}

	detailed, err := GetRoadmap(s, repo.RepoID, true)
	if err != nil {
		t.Fatalf("detailed GetRoadmap failed: %v", err)
	}
	phases := detailed.Projects[1].Phases
	if len(phases) != 1 || len(phases[0].Cycles) != 1 {
		t.Fatalf("expected 1 phase with 1 cycle, got %+v", phases)
	}
	if len(phases[0].Cycles[0].Steps) != types.StepCount {
		t.Errorf("expected %d steps, got %d", types.StepCount, len(phases[0].Cycles[0].Steps))
	}
}

func TestSearch(t *testing.T) {
	s, repo, _ := newFixture(t)
	if _, err := s.AddDocumentation(repo.RepoID, "Checkout redesign notes", "note", ""); err != nil {
		t.Fatalf("AddDocumentation failed: %v", err)
	}

	// Case-insensitive substring over names, objectives, doc titles.
	results, err := Search(s, repo.RepoID, "CHECKOUT")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results.Projects) != 1 || results.Projects[0].Name != "payments revamp" {
		t.Errorf("objective match missed: %+v", results.Projects)
	}
	if len(results.Documentation) != 1 {
		t.Errorf("doc title match missed: %+v", results.Documentation)
	}

	results, err = Search(s, repo.RepoID, "search")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results.Projects) != 1 || results.Projects[0].Name != "search v2" {
		t.Errorf("name match missed: %+v", results.Projects)
	}

	results, err = Search(s, repo.RepoID, "zzz-no-match")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !results.Empty() {
		t.Errorf("expected no matches, got %+v", results)
	}

	results, err = Search(s, repo.RepoID, "   ")
	if err != nil {
		t.Fatalf("blank Search failed: %v", err)
	}
	if !results.Empty() {
		t.Errorf("blank term should match nothing, got %+v", results)
	}
}
