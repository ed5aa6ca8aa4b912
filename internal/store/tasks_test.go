package store

import (
	"errors"
	"testing"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// seedPhase creates a repo, project, and phase for task tests.
func seedPhase(t *testing.T, s *Store) (*types.Repository, *types.Phase) {
	t.Helper()
	repo := seedRepo(t, s)
	project := seedProject(t, s, repo.RepoID, "alpha")
	phase, err := s.CreatePhase(project.ProjectID)
	if err != nil {
		t.Fatalf("CreatePhase failed: %v", err)
	}
	return repo, phase
}

func TestCreateTask_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	_, phase := seedPhase(t, s)

	task, err := s.CreateTask(phase.PhaseID, 4, "wire the parser", "ana", 3)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Status != types.TaskTodo {
		t.Errorf("expected new task status todo, got %s", task.Status)
	}

	got, err := s.GetTask(task.TaskID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Description != "wire the parser" || got.Assignee != "ana" || got.Points != 3 || got.StepNumber != 4 {
		t.Errorf("task fields not preserved: %+v", got)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	s := newTestStore(t)
	_, phase := seedPhase(t, s)

	if _, err := s.CreateTask(phase.PhaseID, 1, "", "", 0); !errors.Is(err, types.ErrValidation) {
		t.Errorf("empty description: expected ValidationError, got %v", err)
	}
	if _, err := s.CreateTask(phase.PhaseID, 8, "x", "", 0); !errors.Is(err, types.ErrValidation) {
		t.Errorf("step 8: expected ValidationError, got %v", err)
	}
	if _, err := s.CreateTask("missing-phase", 1, "x", "", 0); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("missing phase: expected NotFound, got %v", err)
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	_, phase := seedPhase(t, s)

	task, err := s.CreateTask(phase.PhaseID, 0, "triage bugs", "", 0)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	done := types.TaskDone
	points := 5
	updated, err := s.UpdateTask(task.TaskID, types.TaskPatch{Status: &done, Points: &points})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Status != types.TaskDone || updated.Points != 5 {
		t.Errorf("patch not applied: %+v", updated)
	}
	// Untouched fields survive.
	if updated.Description != "triage bugs" {
		t.Errorf("description changed unexpectedly: %q", updated.Description)
	}

	bad := types.TaskStatus("finished")
	if _, err := s.UpdateTask(task.TaskID, types.TaskPatch{Status: &bad}); !errors.Is(err, types.ErrValidation) {
		t.Errorf("bad status: expected ValidationError, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	_, phase := seedPhase(t, s)

	task, err := s.CreateTask(phase.PhaseID, 0, "obsolete", "", 0)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := s.DeleteTask(task.TaskID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := s.GetTask(task.TaskID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
	if err := s.DeleteTask(task.TaskID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("second delete: expected NotFound, got %v", err)
	}
}

func TestListTasks_StepFilter(t *testing.T) {
	s := newTestStore(t)
	_, phase := seedPhase(t, s)

	if _, err := s.CreateTask(phase.PhaseID, 1, "discovery notes", "", 0); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := s.CreateTask(phase.PhaseID, 4, "build it", "", 0); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := s.CreateTask(phase.PhaseID, 0, "phase-wide", "", 0); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	all, err := s.ListTasks(phase.PhaseID, 0)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 tasks, got %d", len(all))
	}

	buildOnly, err := s.ListTasks(phase.PhaseID, 4)
	if err != nil {
		t.Fatalf("ListTasks(step 4) failed: %v", err)
	}
	if len(buildOnly) != 1 || buildOnly[0].Description != "build it" {
		t.Errorf("step filter wrong: %+v", buildOnly)
	}
}
