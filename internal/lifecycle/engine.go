// Package lifecycle implements the step/cycle advancement state
// machine on top of the entity store. Every operation validates its
// preconditions and applies all row changes in one store transaction.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// Engine validates and applies status and position transitions on
// phases, steps, and cycles.
type Engine struct {
	store *store.Store
}

// New returns an Engine writing through the given store.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// AdvanceCycle moves the phase's delivery cycle forward one step.
//
// Below step 7 the current step is completed and the next one started.
// At step 7 the cycle is closed; if the phase is still active a new
// cycle opens with step 1 in progress and steps 2-7 reset. A pointer
// outside 1..7 means corrupted state and is reported, not repaired.
// The returned cycle carries its step rows.
func (e *Engine) AdvanceCycle(phaseID, notes string) (*types.Cycle, error) {
	var result *types.Cycle
	err := e.store.RunInTx(func(tx *store.Tx) error {
		phase, err := tx.GetPhase(phaseID)
		if err != nil {
			return err
		}
		cycle, err := tx.CurrentCycle(phaseID)
		if err != nil {
			return err
		}

		cur := phase.CurrentStep
		if !types.ValidStepNumber(cur) {
			return types.InvalidStatef("phase %s current step pointer is %d", phaseID, cur)
		}

		now := time.Now().UTC()
		step, err := tx.GetStep(phaseID, cycle.CycleNumber, cur)
		if err != nil {
			return err
		}
		step.Status = types.StepCompleted
		step.Completion = 100
		step.EndedAt = &now
		if notes != "" {
			step.Notes = appendNote(step.Notes, notes)
		}
		if err := tx.SaveStep(step); err != nil {
			return err
		}

		project, err := tx.GetProject(phase.ProjectID)
		if err != nil {
			return err
		}

		if cur < types.StepCount {
			next, err := tx.GetStep(phaseID, cycle.CycleNumber, cur+1)
			if err != nil {
				return err
			}
			next.Status = types.StepInProgress
			next.StartedAt = &now
			if err := tx.SaveStep(next); err != nil {
				return err
			}
			if err := tx.SetCurrentStep(phaseID, cur+1); err != nil {
				return err
			}
			result = cycle
			if err := tx.LogActivity(project.RepoID, "phase", phaseID, "step_advanced",
				fmt.Sprintf("step %d (%s) completed, step %d (%s) started",
					cur, types.StepName(cur), cur+1, types.StepName(cur+1))); err != nil {
				return err
			}
		} else {
			if err := tx.CloseCycle(cycle.CycleID); err != nil {
				return err
			}
			cycle.EndedAt = &now

			if phase.Status == types.PhaseActive {
				next, err := tx.CreateCycle(phaseID, cycle.CycleNumber+1)
				if err != nil {
					return err
				}
				if err := tx.CreateCycleSteps(phaseID, next.CycleNumber); err != nil {
					return err
				}
				if err := tx.SetCurrentStep(phaseID, 1); err != nil {
					return err
				}
				result = next
				if err := tx.LogActivity(project.RepoID, "phase", phaseID, "cycle_started",
					fmt.Sprintf("cycle %d closed, cycle %d started", cycle.CycleNumber, next.CycleNumber)); err != nil {
					return err
				}
			} else {
				result = cycle
				if err := tx.LogActivity(project.RepoID, "phase", phaseID, "cycle_closed",
					fmt.Sprintf("cycle %d closed", cycle.CycleNumber)); err != nil {
					return err
				}
			}
		}

		steps, err := tx.ListSteps(phaseID, result.CycleNumber)
		if err != nil {
			return err
		}
		result.Steps = steps
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStep applies a partial update to one step of the phase's
// current cycle. Completing a step below 7 also advances the phase's
// current-step pointer and starts the next step, keeping the pointer
// consistent with direct step updates.
func (e *Engine) UpdateStep(phaseID string, stepNumber int, patch types.StepPatch) (*types.Step, error) {
	if !types.ValidStepNumber(stepNumber) {
		return nil, types.Validationf("step number %d out of range 1..%d", stepNumber, types.StepCount)
	}
	if patch.Completion != nil && (*patch.Completion < 0 || *patch.Completion > 100) {
		return nil, types.Validationf("completion %d out of range 0..100", *patch.Completion)
	}
	if patch.Status != nil && !types.ValidStepStatus(*patch.Status) {
		return nil, types.Validationf("unknown step status %q", *patch.Status)
	}

	var result *types.Step
	err := e.store.RunInTx(func(tx *store.Tx) error {
		phase, err := tx.GetPhase(phaseID)
		if err != nil {
			return err
		}
		cycle, err := tx.CurrentCycle(phaseID)
		if err != nil {
			return err
		}
		step, err := tx.GetStep(phaseID, cycle.CycleNumber, stepNumber)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if patch.Status != nil {
			if err := applyStatusTransition(step, *patch.Status, stepNumber, phase.CurrentStep, now); err != nil {
				return err
			}
		}
		if patch.Completion != nil {
			step.Completion = *patch.Completion
		}
		if patch.Deliverables != nil {
			step.Deliverables = patch.Deliverables
		}
		if patch.Blockers != nil {
			step.Blockers = patch.Blockers
		}
		if patch.Notes != nil {
			step.Notes = *patch.Notes
		}
		if err := tx.SaveStep(step); err != nil {
			return err
		}

		// Completing a step below 7 drags the pointer forward exactly
		// as AdvanceCycle's single-step case does.
		if patch.Status != nil && *patch.Status == types.StepCompleted && stepNumber < types.StepCount {
			next, err := tx.GetStep(phaseID, cycle.CycleNumber, stepNumber+1)
			if err != nil {
				return err
			}
			if next.Status == types.StepNotStarted {
				next.Status = types.StepInProgress
				next.StartedAt = &now
				if err := tx.SaveStep(next); err != nil {
					return err
				}
			}
			if err := tx.SetCurrentStep(phaseID, stepNumber+1); err != nil {
				return err
			}
		}

		project, err := tx.GetProject(phase.ProjectID)
		if err != nil {
			return err
		}
		if err := tx.LogActivity(project.RepoID, "step", step.StepID, "updated",
			fmt.Sprintf("step %d (%s)", stepNumber, types.StepName(stepNumber))); err != nil {
			return err
		}
		result = step
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyStatusTransition validates and applies one step status change.
// Blocked keeps the last known completion percentage; a step that ran
// before it was blocked may return to in_progress without resetting
// it, while one that never started unblocks back to not_started. A
// step only ever enters in_progress while it is the current step, so
// at most one step of a phase is in progress at a time.
func applyStatusTransition(step *types.Step, to types.StepStatus, stepNumber, currentStep int, now time.Time) error {
	from := step.Status
	switch to {
	case types.StepBlocked:
		if from == types.StepCompleted {
			return types.Validationf("step %d is completed and cannot be blocked", stepNumber)
		}
	case types.StepInProgress:
		if from == types.StepCompleted {
			return types.Validationf("step %d is completed and cannot be restarted", stepNumber)
		}
		if step.StartedAt == nil && stepNumber != currentStep {
			return types.Validationf("step %d is not the current step", stepNumber)
		}
		if step.StartedAt == nil {
			step.StartedAt = &now
		}
	case types.StepCompleted:
		step.Completion = 100
		step.EndedAt = &now
	case types.StepNotStarted:
		unblocking := from == types.StepBlocked && step.StartedAt == nil
		if from != types.StepNotStarted && !unblocking {
			return types.Validationf("step %d cannot return to not_started", stepNumber)
		}
	}
	step.Status = to
	return nil
}

// UpdateProjectPhase applies a partial update to a roadmap project and
// recomputes the repository's overall progress as the rounded mean of
// its projects' completion percentages.
func (e *Engine) UpdateProjectPhase(projectID string, patch types.ProjectPatch) (*types.Project, error) {
	var result *types.Project
	err := e.store.RunInTx(func(tx *store.Tx) error {
		project, err := tx.ApplyProjectPatch(projectID, patch)
		if err != nil {
			return err
		}
		siblings, err := tx.ListProjects(project.RepoID)
		if err != nil {
			return err
		}
		if err := tx.SetRepositoryProgress(project.RepoID, overallProgress(siblings)); err != nil {
			return err
		}
		result = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompletePhase marks a phase completed. Its open cycle, if any, is
// closed; no new cycle starts for a non-active phase.
func (e *Engine) CompletePhase(phaseID string) error {
	return e.store.RunInTx(func(tx *store.Tx) error {
		phase, err := tx.GetPhase(phaseID)
		if err != nil {
			return err
		}
		if err := tx.SetPhaseStatus(phaseID, types.PhaseCompleted); err != nil {
			return err
		}
		cycle, err := tx.CurrentCycle(phaseID)
		if err != nil {
			return err
		}
		if !cycle.Closed() {
			if err := tx.CloseCycle(cycle.CycleID); err != nil {
				return err
			}
		}
		project, err := tx.GetProject(phase.ProjectID)
		if err != nil {
			return err
		}
		return tx.LogActivity(project.RepoID, "phase", phaseID, "completed",
			fmt.Sprintf("phase %d", phase.Number))
	})
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
