package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// orderSpec describes an ordered sibling set: a table whose rows carry
// a position column that must stay a gapless 1..N sequence within
// their parent scope.
type orderSpec struct {
	table     string
	idCol     string
	parentCol string
	posCol    string
}

var (
	projectOrder = orderSpec{table: "projects", idCol: "project_id", parentCol: "repo_id", posCol: "position"}
	phaseOrder   = orderSpec{table: "phases", idCol: "phase_id", parentCol: "project_id", posCol: "number"}
)

// countSiblings returns the number of rows under parentID.
func (t *Tx) countSiblings(spec orderSpec, parentID string) (int, error) {
	var n int
	err := t.tx.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, spec.table, spec.parentCol),
		parentID,
	).Scan(&n)
	if err != nil {
		return 0, types.Storagef("count %s siblings: %v", spec.table, err)
	}
	return n, nil
}

// positionOf returns the parent id and position of the given row.
func (t *Tx) positionOf(spec orderSpec, id string) (string, int, error) {
	var parent string
	var pos int
	err := t.tx.QueryRow(
		fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ?`, spec.parentCol, spec.posCol, spec.table, spec.idCol),
		id,
	).Scan(&parent, &pos)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, types.NotFoundf("%s %s", spec.table, id)
		}
		return "", 0, types.Storagef("read %s position: %v", spec.table, err)
	}
	return parent, pos, nil
}

// shiftUpFrom makes room at pos by incrementing every sibling with
// position >= pos. The caller validates pos against the sibling count.
func (t *Tx) shiftUpFrom(spec orderSpec, parentID string, pos int) error {
	_, err := t.tx.Exec(
		fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = ? AND %s >= ?`,
			spec.table, spec.posCol, spec.posCol, spec.parentCol, spec.posCol),
		parentID, pos,
	)
	if err != nil {
		return types.Storagef("shift %s up: %v", spec.table, err)
	}
	return nil
}

// closeGapAfter restores gaplessness after a removal by decrementing
// every sibling with position > removedPos.
func (t *Tx) closeGapAfter(spec orderSpec, parentID string, removedPos int) error {
	_, err := t.tx.Exec(
		fmt.Sprintf(`UPDATE %s SET %s = %s - 1 WHERE %s = ? AND %s > ?`,
			spec.table, spec.posCol, spec.posCol, spec.parentCol, spec.posCol),
		parentID, removedPos,
	)
	if err != nil {
		return types.Storagef("close %s gap: %v", spec.table, err)
	}
	return nil
}

// checkInsertPosition validates a target position for insertion into a
// sibling set of the given size: 1..count+1 inclusive.
func checkInsertPosition(pos, count int) error {
	if pos < 1 || pos > count+1 {
		return types.Validationf("position %d out of range 1..%d", pos, count+1)
	}
	return nil
}

// applyPermutation rewrites each sibling's position to its index in
// ids. The ids must be an exact permutation of the current children.
func (t *Tx) applyPermutation(spec orderSpec, parentID string, ids []string) error {
	rows, err := t.tx.Query(
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, spec.idCol, spec.table, spec.parentCol),
		parentID,
	)
	if err != nil {
		return types.Storagef("query %s ids: %v", spec.table, err)
	}
	current := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return types.Storagef("scan %s id: %v", spec.table, err)
		}
		current[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return types.Storagef("iterate %s ids: %v", spec.table, err)
	}

	if len(ids) != len(current) {
		return types.Validationf("permutation has %d ids, expected %d", len(ids), len(current))
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return types.Validationf("permutation repeats id %s", id)
		}
		if !current[id] {
			return types.Validationf("permutation contains unknown id %s", id)
		}
		seen[id] = true
	}

	for i, id := range ids {
		_, err := t.tx.Exec(
			fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s = ?`, spec.table, spec.posCol, spec.idCol),
			i+1, id,
		)
		if err != nil {
			return types.Storagef("apply %s permutation: %v", spec.table, err)
		}
	}
	return nil
}
