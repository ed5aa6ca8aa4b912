package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

const phaseCols = `phase_id, project_id, number, status, current_step, started_at, ended_at, created_at, updated_at`

// CreatePhase appends a phase at the end of the project's sequence and
// seeds cycle 1: seven step rows with step 1 in progress and the
// current-step pointer at 1.
func (s *Store) CreatePhase(projectID string) (*types.Phase, error) {
	var phase *types.Phase
	err := s.RunInTx(func(tx *Tx) error {
		count, err := tx.countSiblings(phaseOrder, projectID)
		if err != nil {
			return err
		}
		phase, err = tx.insertPhase(projectID, count+1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return phase, nil
}

// InsertPhaseAt inserts a phase at the given 1-based number, shifting
// later siblings up by one.
func (s *Store) InsertPhaseAt(projectID string, number int) (*types.Phase, error) {
	var phase *types.Phase
	err := s.RunInTx(func(tx *Tx) error {
		count, err := tx.countSiblings(phaseOrder, projectID)
		if err != nil {
			return err
		}
		if err := checkInsertPosition(number, count); err != nil {
			return err
		}
		if err := tx.shiftUpFrom(phaseOrder, projectID, number); err != nil {
			return err
		}
		phase, err = tx.insertPhase(projectID, number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return phase, nil
}

// insertPhase writes the phase row, its first cycle, and the seven
// step rows. The caller has already made room for the number.
func (t *Tx) insertPhase(projectID string, number int) (*types.Phase, error) {
	project, err := t.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &types.Phase{
		PhaseID:     newID(),
		ProjectID:   projectID,
		Number:      number,
		Status:      types.PhaseActive,
		CurrentStep: 1,
		StartedAt:   &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = t.tx.Exec(
		`INSERT INTO phases (phase_id, project_id, number, status, current_step, started_at, ended_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, NULL, ?, ?)`,
		p.PhaseID, p.ProjectID, p.Number, string(p.Status), fmtTime(now), fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, types.Storagef("insert phase: %v", err)
	}

	if _, err := t.CreateCycle(p.PhaseID, 1); err != nil {
		return nil, err
	}
	if err := t.CreateCycleSteps(p.PhaseID, 1); err != nil {
		return nil, err
	}
	if err := t.LogActivity(project.RepoID, "phase", p.PhaseID, "created", fmt.Sprintf("phase %d", number)); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPhase returns the phase with the given id.
func (s *Store) GetPhase(phaseID string) (*types.Phase, error) {
	return getPhase(s.db, phaseID)
}

// GetPhase returns the phase with the given id, inside the transaction.
func (t *Tx) GetPhase(phaseID string) (*types.Phase, error) {
	return getPhase(t.tx, phaseID)
}

func getPhase(q dbtx, phaseID string) (*types.Phase, error) {
	row := q.QueryRow(`SELECT `+phaseCols+` FROM phases WHERE phase_id = ?`, phaseID)
	p, err := hydratePhase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("phase %s", phaseID)
		}
		return nil, err
	}
	return p, nil
}

// ListPhases returns the project's phases in number order.
func (s *Store) ListPhases(projectID string) ([]types.Phase, error) {
	rows, err := s.db.Query(`SELECT `+phaseCols+` FROM phases WHERE project_id = ? ORDER BY number ASC`, projectID)
	if err != nil {
		return nil, types.Storagef("query phases: %v", err)
	}
	defer rows.Close()

	var phases []types.Phase
	for rows.Next() {
		p, err := hydratePhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storagef("iterate phases: %v", err)
	}
	return phases, nil
}

// DeletePhase removes a phase and reindexes its siblings. Steps,
// cycles, and tasks cascade with the phase row.
func (s *Store) DeletePhase(phaseID string) error {
	return s.RunInTx(func(tx *Tx) error {
		p, err := tx.GetPhase(phaseID)
		if err != nil {
			return err
		}
		project, err := tx.GetProject(p.ProjectID)
		if err != nil {
			return err
		}
		if _, err := tx.tx.Exec(`DELETE FROM phases WHERE phase_id = ?`, phaseID); err != nil {
			return types.Storagef("delete phase: %v", err)
		}
		if err := tx.closeGapAfter(phaseOrder, p.ProjectID, p.Number); err != nil {
			return err
		}
		return tx.LogActivity(project.RepoID, "phase", phaseID, "deleted", fmt.Sprintf("phase %d", p.Number))
	})
}

// ReorderPhases applies a full permutation of the project's phase ids
// atomically.
func (s *Store) ReorderPhases(projectID string, ids []string) error {
	return s.RunInTx(func(tx *Tx) error {
		project, err := tx.GetProject(projectID)
		if err != nil {
			return err
		}
		if err := tx.applyPermutation(phaseOrder, projectID, ids); err != nil {
			return err
		}
		return tx.LogActivity(project.RepoID, "phase", projectID, "reordered", fmt.Sprintf("%d phases", len(ids)))
	})
}

// MovePhase moves a phase to a new project at the given number in one
// transaction.
func (s *Store) MovePhase(phaseID, newProjectID string, newNumber int) error {
	return s.RunInTx(func(tx *Tx) error {
		oldProject, oldNumber, err := tx.positionOf(phaseOrder, phaseID)
		if err != nil {
			return err
		}
		target, err := tx.GetProject(newProjectID)
		if err != nil {
			return err
		}

		count, err := tx.countSiblings(phaseOrder, newProjectID)
		if err != nil {
			return err
		}
		if oldProject == newProjectID {
			count--
		}
		if err := checkInsertPosition(newNumber, count); err != nil {
			return err
		}

		if err := tx.closeGapAfter(phaseOrder, oldProject, oldNumber); err != nil {
			return err
		}
		if err := tx.shiftUpFrom(phaseOrder, newProjectID, newNumber); err != nil {
			return err
		}
		_, err = tx.tx.Exec(
			`UPDATE phases SET project_id = ?, number = ?, updated_at = ? WHERE phase_id = ?`,
			newProjectID, newNumber, fmtTime(time.Now()), phaseID,
		)
		if err != nil {
			return types.Storagef("move phase: %v", err)
		}
		return tx.LogActivity(target.RepoID, "phase", phaseID, "moved", fmt.Sprintf("to project %s", target.Name))
	})
}

// SetPhaseStatus updates the phase status inside the transaction.
// Completing a phase also stamps its end time.
func (t *Tx) SetPhaseStatus(phaseID string, status types.PhaseStatus) error {
	if !types.ValidPhaseStatus(status) {
		return types.Validationf("unknown phase status %q", status)
	}
	now := time.Now().UTC()
	var ended sql.NullString
	if status == types.PhaseCompleted {
		ended = sql.NullString{String: fmtTime(now), Valid: true}
	}
	res, err := t.tx.Exec(
		`UPDATE phases SET status = ?, ended_at = COALESCE(?, ended_at), updated_at = ? WHERE phase_id = ?`,
		string(status), ended, fmtTime(now), phaseID,
	)
	if err != nil {
		return types.Storagef("update phase status: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundf("phase %s", phaseID)
	}
	return nil
}

// SetCurrentStep moves the phase's current-step pointer.
func (t *Tx) SetCurrentStep(phaseID string, stepNumber int) error {
	if !types.ValidStepNumber(stepNumber) {
		return types.Validationf("step number %d out of range 1..%d", stepNumber, types.StepCount)
	}
	res, err := t.tx.Exec(
		`UPDATE phases SET current_step = ?, updated_at = ? WHERE phase_id = ?`,
		stepNumber, fmtTime(time.Now()), phaseID,
	)
	if err != nil {
		return types.Storagef("update current step: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundf("phase %s", phaseID)
	}
	return nil
}

func hydratePhase(row scanner) (*types.Phase, error) {
	var p types.Phase
	var status, createdAt, updatedAt string
	var startedAt, endedAt sql.NullString
	if err := row.Scan(&p.PhaseID, &p.ProjectID, &p.Number, &status, &p.CurrentStep, &startedAt, &endedAt, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, types.Storagef("scan phase: %v", err)
	}
	p.Status = types.PhaseStatus(status)
	var err error
	if p.StartedAt, err = parseNullTime(startedAt); err != nil {
		return nil, types.Storagef("parse phase started_at: %v", err)
	}
	if p.EndedAt, err = parseNullTime(endedAt); err != nil {
		return nil, types.Storagef("parse phase ended_at: %v", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, types.Storagef("parse phase created_at: %v", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, types.Storagef("parse phase updated_at: %v", err)
	}
	return &p, nil
}
