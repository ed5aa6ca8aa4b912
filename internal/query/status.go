// Package query implements the read side of the tracker: current
// status, roadmap views, and search, composed purely from entity store
// reads. No function in this package writes.
package query

import (
	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// Status is the current position of a repository: its ordered
// projects, the active phase, and that phase's current step.
type Status struct {
	Repository    *types.Repository `json:"repository"`
	Projects      []types.Project   `json:"projects"`
	ActiveProject *types.Project    `json:"active_project,omitempty"`
	ActivePhase   *types.Phase      `json:"active_phase,omitempty"`
	CurrentStep   *types.Step       `json:"current_step,omitempty"`
}

// CurrentStatus assembles the status view for a repository. The active
// phase is the first active phase walking projects in roadmap order;
// repositories with no active phase report projects only.
func CurrentStatus(s *store.Store, repoID string) (*Status, error) {
	repo, err := s.GetRepository(repoID)
	if err != nil {
		return nil, err
	}
	projects, err := s.ListProjects(repoID)
	if err != nil {
		return nil, err
	}

	status := &Status{Repository: repo, Projects: projects}
	for i := range projects {
		phases, err := s.ListPhases(projects[i].ProjectID)
		if err != nil {
			return nil, err
		}
		for j := range phases {
			if phases[j].Status != types.PhaseActive {
				continue
			}
			status.ActiveProject = &projects[i]
			status.ActivePhase = &phases[j]
			step, err := currentStep(s, &phases[j])
			if err != nil {
				return nil, err
			}
			status.CurrentStep = step
			return status, nil
		}
	}
	return status, nil
}

// currentStep resolves the phase's current-step pointer against its
// latest cycle.
func currentStep(s *store.Store, phase *types.Phase) (*types.Step, error) {
	cycles, err := s.ListCycles(phase.PhaseID)
	if err != nil {
		return nil, err
	}
	if len(cycles) == 0 {
		return nil, types.InvalidStatef("phase %s has no cycles", phase.PhaseID)
	}
	latest := cycles[len(cycles)-1]
	steps, err := s.ListSteps(phase.PhaseID, latest.CycleNumber)
	if err != nil {
		return nil, err
	}
	for i := range steps {
		if steps[i].StepNumber == phase.CurrentStep {
			return &steps[i], nil
		}
	}
	return nil, types.InvalidStatef("phase %s current step %d not found in cycle %d",
		phase.PhaseID, phase.CurrentStep, latest.CycleNumber)
}
