package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

const stepCols = `step_id, phase_id, cycle_number, step_number, status, completion, deliverables, blockers, notes, started_at, ended_at`

// CreateCycleSteps seeds the seven step rows for a cycle: step 1 in
// progress with a start timestamp, steps 2-7 not started.
func (t *Tx) CreateCycleSteps(phaseID string, cycleNumber int) error {
	now := time.Now().UTC()
	for n := 1; n <= types.StepCount; n++ {
		status := types.StepNotStarted
		started := sql.NullString{}
		if n == 1 {
			status = types.StepInProgress
			started = sql.NullString{String: fmtTime(now), Valid: true}
		}
		_, err := t.tx.Exec(
			`INSERT INTO steps (step_id, phase_id, cycle_number, step_number, status, completion, deliverables, blockers, notes, started_at, ended_at)
			 VALUES (?, ?, ?, ?, ?, 0, '[]', '[]', '', ?, NULL)`,
			newID(), phaseID, cycleNumber, n, string(status), started,
		)
		if err != nil {
			return types.Storagef("insert step %d: %v", n, err)
		}
	}
	return nil
}

// GetStep returns one step by phase, cycle, and number, inside the
// transaction.
func (t *Tx) GetStep(phaseID string, cycleNumber, stepNumber int) (*types.Step, error) {
	return getStep(t.tx, phaseID, cycleNumber, stepNumber)
}

func getStep(q dbtx, phaseID string, cycleNumber, stepNumber int) (*types.Step, error) {
	row := q.QueryRow(
		`SELECT `+stepCols+` FROM steps WHERE phase_id = ? AND cycle_number = ? AND step_number = ?`,
		phaseID, cycleNumber, stepNumber,
	)
	st, err := hydrateStep(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("step %d of cycle %d, phase %s", stepNumber, cycleNumber, phaseID)
		}
		return nil, err
	}
	return st, nil
}

// SaveStep persists the full step row, inside the transaction.
func (t *Tx) SaveStep(st *types.Step) error {
	res, err := t.tx.Exec(
		`UPDATE steps SET status = ?, completion = ?, deliverables = ?, blockers = ?, notes = ?, started_at = ?, ended_at = ?
		 WHERE step_id = ?`,
		string(st.Status), st.Completion, marshalList(st.Deliverables), marshalList(st.Blockers),
		st.Notes, fmtNullTime(st.StartedAt), fmtNullTime(st.EndedAt), st.StepID,
	)
	if err != nil {
		return types.Storagef("update step: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundf("step %s", st.StepID)
	}
	return nil
}

// ListSteps returns a cycle's steps in step-number order.
func (s *Store) ListSteps(phaseID string, cycleNumber int) ([]types.Step, error) {
	return listSteps(s.db, phaseID, cycleNumber)
}

// ListSteps returns a cycle's steps in step-number order, inside the
// transaction.
func (t *Tx) ListSteps(phaseID string, cycleNumber int) ([]types.Step, error) {
	return listSteps(t.tx, phaseID, cycleNumber)
}

func listSteps(q dbtx, phaseID string, cycleNumber int) ([]types.Step, error) {
	rows, err := q.Query(
		`SELECT `+stepCols+` FROM steps WHERE phase_id = ? AND cycle_number = ? ORDER BY step_number ASC`,
		phaseID, cycleNumber,
	)
	if err != nil {
		return nil, types.Storagef("query steps: %v", err)
	}
	defer rows.Close()

	var steps []types.Step
	for rows.Next() {
		st, err := hydrateStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storagef("iterate steps: %v", err)
	}
	return steps, nil
}

func hydrateStep(row scanner) (*types.Step, error) {
	var st types.Step
	var status, deliverables, blockers string
	var startedAt, endedAt sql.NullString
	if err := row.Scan(&st.StepID, &st.PhaseID, &st.CycleNumber, &st.StepNumber, &status, &st.Completion, &deliverables, &blockers, &st.Notes, &startedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, types.Storagef("scan step: %v", err)
	}
	st.Status = types.StepStatus(status)
	var err error
	if st.Deliverables, err = unmarshalList(deliverables); err != nil {
		return nil, err
	}
	if st.Blockers, err = unmarshalList(blockers); err != nil {
		return nil, err
	}
	if st.StartedAt, err = parseNullTime(startedAt); err != nil {
		return nil, types.Storagef("parse step started_at: %v", err)
	}
	if st.EndedAt, err = parseNullTime(endedAt); err != nil {
		return nil, types.Storagef("parse step ended_at: %v", err)
	}
	return &st, nil
}
