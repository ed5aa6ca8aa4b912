package query

import (
	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// Roadmap is the full delivery tree for a repository: projects in
// position order, each with its phases in number order.
type Roadmap struct {
	Repository *types.Repository `json:"repository"`
	Projects   []ProjectNode     `json:"projects"`
}

// ProjectNode is a project and its phases.
type ProjectNode struct {
	Project types.Project `json:"project"`
	Phases  []PhaseNode   `json:"phases"`
}

// PhaseNode is a phase and, when details were requested, its cycles
// with their steps and tasks.
type PhaseNode struct {
	Phase  types.Phase   `json:"phase"`
	Cycles []types.Cycle `json:"cycles,omitempty"`
}

// GetRoadmap builds the roadmap view for a repository. With
// includeDetails false only the project and phase rows are loaded;
// with it true each phase also carries its cycles, steps, and tasks.
func GetRoadmap(s *store.Store, repoID string, includeDetails bool) (*Roadmap, error) {
	repo, err := s.GetRepository(repoID)
	if err != nil {
		return nil, err
	}
	projects, err := s.ListProjects(repoID)
	if err != nil {
		return nil, err
	}

	rm := &Roadmap{Repository: repo, Projects: make([]ProjectNode, 0, len(projects))}
	for _, p := range projects {
		phases, err := s.ListPhases(p.ProjectID)
		if err != nil {
			return nil, err
		}
		node := ProjectNode{Project: p, Phases: make([]PhaseNode, 0, len(phases))}
		for _, ph := range phases {
			pn := PhaseNode{Phase: ph}
			if includeDetails {
				pn.Cycles, err = phaseCycles(s, ph.PhaseID)
				if err != nil {
					return nil, err
				}
			}
			node.Phases = append(node.Phases, pn)
		}
		rm.Projects = append(rm.Projects, node)
	}
	return rm, nil
}

// phaseCycles loads every cycle of a phase with steps attached, and
// hangs the phase's tasks off the latest cycle.
func phaseCycles(s *store.Store, phaseID string) ([]types.Cycle, error) {
	cycles, err := s.ListCycles(phaseID)
	if err != nil {
		return nil, err
	}
	for i := range cycles {
		cycles[i].Steps, err = s.ListSteps(phaseID, cycles[i].CycleNumber)
		if err != nil {
			return nil, err
		}
	}
	if len(cycles) > 0 {
		tasks, err := s.ListTasks(phaseID, 0)
		if err != nil {
			return nil, err
		}
		cycles[len(cycles)-1].Tasks = tasks
	}
	return cycles, nil
}
