package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

const cycleCols = `cycle_id, phase_id, cycle_number, started_at, ended_at`

// CreateCycle opens a new cycle for the phase, inside the transaction.
func (t *Tx) CreateCycle(phaseID string, cycleNumber int) (*types.Cycle, error) {
	now := time.Now().UTC()
	c := &types.Cycle{
		CycleID:     newID(),
		PhaseID:     phaseID,
		CycleNumber: cycleNumber,
		StartedAt:   now,
	}
	_, err := t.tx.Exec(
		`INSERT INTO cycles (cycle_id, phase_id, cycle_number, started_at, ended_at) VALUES (?, ?, ?, ?, NULL)`,
		c.CycleID, c.PhaseID, c.CycleNumber, fmtTime(now),
	)
	if err != nil {
		return nil, types.Storagef("insert cycle: %v", err)
	}
	return c, nil
}

// CurrentCycle returns the phase's highest-numbered cycle, inside the
// transaction.
func (t *Tx) CurrentCycle(phaseID string) (*types.Cycle, error) {
	row := t.tx.QueryRow(
		`SELECT `+cycleCols+` FROM cycles WHERE phase_id = ? ORDER BY cycle_number DESC LIMIT 1`,
		phaseID,
	)
	c, err := hydrateCycle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("no cycles for phase %s", phaseID)
		}
		return nil, err
	}
	return c, nil
}

// CloseCycle stamps the cycle's end time, inside the transaction.
func (t *Tx) CloseCycle(cycleID string) error {
	res, err := t.tx.Exec(
		`UPDATE cycles SET ended_at = ? WHERE cycle_id = ?`,
		fmtTime(time.Now()), cycleID,
	)
	if err != nil {
		return types.Storagef("close cycle: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundf("cycle %s", cycleID)
	}
	return nil
}

// ListCycles returns all cycles for a phase in ascending number order.
func (s *Store) ListCycles(phaseID string) ([]types.Cycle, error) {
	rows, err := s.db.Query(
		`SELECT `+cycleCols+` FROM cycles WHERE phase_id = ? ORDER BY cycle_number ASC`,
		phaseID,
	)
	if err != nil {
		return nil, types.Storagef("query cycles: %v", err)
	}
	defer rows.Close()

	var cycles []types.Cycle
	for rows.Next() {
		c, err := hydrateCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storagef("iterate cycles: %v", err)
	}
	return cycles, nil
}

func hydrateCycle(row scanner) (*types.Cycle, error) {
	var c types.Cycle
	var startedAt string
	var endedAt sql.NullString
	if err := row.Scan(&c.CycleID, &c.PhaseID, &c.CycleNumber, &startedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, types.Storagef("scan cycle: %v", err)
	}
	var err error
	if c.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, types.Storagef("parse cycle started_at: %v", err)
	}
	if c.EndedAt, err = parseNullTime(endedAt); err != nil {
		return nil, types.Storagef("parse cycle ended_at: %v", err)
	}
	return &c, nil
}
