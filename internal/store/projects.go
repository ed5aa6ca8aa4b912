package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

const projectCols = `project_id, repo_id, name, objective, deliverables, success_metrics, status, completion, position, created_at, updated_at`

// CreateProject appends a project at the end of the repository's
// roadmap (position = count + 1).
func (s *Store) CreateProject(repoID, name, objective string, deliverables, successMetrics []string) (*types.Project, error) {
	var project *types.Project
	err := s.RunInTx(func(tx *Tx) error {
		count, err := tx.countSiblings(projectOrder, repoID)
		if err != nil {
			return err
		}
		project, err = tx.insertProject(repoID, name, objective, deliverables, successMetrics, count+1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// InsertProjectAt inserts a project at the given 1-based position,
// shifting every sibling at or above it up by one.
func (s *Store) InsertProjectAt(repoID, name, objective string, deliverables, successMetrics []string, position int) (*types.Project, error) {
	var project *types.Project
	err := s.RunInTx(func(tx *Tx) error {
		count, err := tx.countSiblings(projectOrder, repoID)
		if err != nil {
			return err
		}
		if err := checkInsertPosition(position, count); err != nil {
			return err
		}
		if err := tx.shiftUpFrom(projectOrder, repoID, position); err != nil {
			return err
		}
		project, err = tx.insertProject(repoID, name, objective, deliverables, successMetrics, position)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// insertProject writes the row at the given position and logs the
// creation. The caller has already made room for the position.
func (t *Tx) insertProject(repoID, name, objective string, deliverables, successMetrics []string, position int) (*types.Project, error) {
	if name == "" {
		return nil, types.Validationf("project name must not be empty")
	}
	if _, err := t.GetRepository(repoID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &types.Project{
		ProjectID:      newID(),
		RepoID:         repoID,
		Name:           name,
		Objective:      objective,
		Deliverables:   deliverables,
		SuccessMetrics: successMetrics,
		Status:         types.ProjectPlanned,
		Position:       position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.Deliverables == nil {
		p.Deliverables = []string{}
	}
	if p.SuccessMetrics == nil {
		p.SuccessMetrics = []string{}
	}

	_, err := t.tx.Exec(
		`INSERT INTO projects (project_id, repo_id, name, objective, deliverables, success_metrics, status, completion, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		p.ProjectID, p.RepoID, p.Name, p.Objective,
		marshalList(p.Deliverables), marshalList(p.SuccessMetrics),
		string(p.Status), p.Position, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, types.Storagef("insert project: %v", err)
	}
	if err := t.LogActivity(repoID, "project", p.ProjectID, "created", p.Name); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject returns the project with the given id.
func (s *Store) GetProject(projectID string) (*types.Project, error) {
	return getProject(s.db, projectID)
}

// GetProject returns the project with the given id, inside the
// transaction.
func (t *Tx) GetProject(projectID string) (*types.Project, error) {
	return getProject(t.tx, projectID)
}

func getProject(q dbtx, projectID string) (*types.Project, error) {
	row := q.QueryRow(`SELECT `+projectCols+` FROM projects WHERE project_id = ?`, projectID)
	p, err := hydrateProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("project %s", projectID)
		}
		return nil, err
	}
	return p, nil
}

// ListProjects returns the repository's projects in roadmap order.
func (s *Store) ListProjects(repoID string) ([]types.Project, error) {
	return listProjects(s.db, repoID)
}

// ListProjects returns the repository's projects in roadmap order,
// inside the transaction.
func (t *Tx) ListProjects(repoID string) ([]types.Project, error) {
	return listProjects(t.tx, repoID)
}

func listProjects(q dbtx, repoID string) ([]types.Project, error) {
	rows, err := q.Query(`SELECT `+projectCols+` FROM projects WHERE repo_id = ? ORDER BY position ASC`, repoID)
	if err != nil {
		return nil, types.Storagef("query projects: %v", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		p, err := hydrateProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storagef("iterate projects: %v", err)
	}
	return projects, nil
}

// ApplyProjectPatch applies a partial update to a project inside the
// transaction and returns the updated row. Validation failures leave
// the row untouched.
func (t *Tx) ApplyProjectPatch(projectID string, patch types.ProjectPatch) (*types.Project, error) {
	p, err := t.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, types.Validationf("project name must not be empty")
		}
		p.Name = *patch.Name
	}
	if patch.Objective != nil {
		p.Objective = *patch.Objective
	}
	if patch.Deliverables != nil {
		p.Deliverables = patch.Deliverables
	}
	if patch.SuccessMetrics != nil {
		p.SuccessMetrics = patch.SuccessMetrics
	}
	if patch.Status != nil {
		if !types.ValidProjectStatus(*patch.Status) {
			return nil, types.Validationf("unknown project status %q", *patch.Status)
		}
		p.Status = *patch.Status
	}
	if patch.Completion != nil {
		if *patch.Completion < 0 || *patch.Completion > 100 {
			return nil, types.Validationf("completion %d out of range 0..100", *patch.Completion)
		}
		p.Completion = *patch.Completion
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = t.tx.Exec(
		`UPDATE projects SET name = ?, objective = ?, deliverables = ?, success_metrics = ?, status = ?, completion = ?, updated_at = ?
		 WHERE project_id = ?`,
		p.Name, p.Objective, marshalList(p.Deliverables), marshalList(p.SuccessMetrics),
		string(p.Status), p.Completion, fmtTime(p.UpdatedAt), p.ProjectID,
	)
	if err != nil {
		return nil, types.Storagef("update project: %v", err)
	}
	if err := t.LogActivity(p.RepoID, "project", p.ProjectID, "updated", p.Name); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes a project and reindexes its siblings. When the
// project still has phases, they are reassigned to reparentTo
// (appended after its existing phases); with no target the delete
// fails instead of orphaning rows.
func (s *Store) DeleteProject(projectID, reparentTo string) error {
	return s.RunInTx(func(tx *Tx) error {
		p, err := tx.GetProject(projectID)
		if err != nil {
			return err
		}

		var phaseCount int
		if phaseCount, err = tx.countSiblings(phaseOrder, projectID); err != nil {
			return err
		}
		if phaseCount > 0 {
			if reparentTo == "" {
				return types.DependentChildrenf("project %s has %d phases; supply a reparent target", projectID, phaseCount)
			}
			if reparentTo == projectID {
				return types.Validationf("cannot reparent phases onto the deleted project")
			}
			if _, err := tx.GetProject(reparentTo); err != nil {
				return err
			}
			if err := tx.reparentPhases(projectID, reparentTo); err != nil {
				return err
			}
		}

		if _, err := tx.tx.Exec(`DELETE FROM projects WHERE project_id = ?`, projectID); err != nil {
			return types.Storagef("delete project: %v", err)
		}
		if err := tx.closeGapAfter(projectOrder, p.RepoID, p.Position); err != nil {
			return err
		}
		return tx.LogActivity(p.RepoID, "project", projectID, "deleted", p.Name)
	})
}

// reparentPhases appends all of fromProject's phases to toProject,
// preserving their relative order after the target's existing phases.
func (t *Tx) reparentPhases(fromProject, toProject string) error {
	var maxNumber int
	err := t.tx.QueryRow(
		`SELECT COALESCE(MAX(number), 0) FROM phases WHERE project_id = ?`, toProject,
	).Scan(&maxNumber)
	if err != nil {
		return types.Storagef("read target phase numbers: %v", err)
	}

	rows, err := t.tx.Query(
		`SELECT phase_id FROM phases WHERE project_id = ? ORDER BY number ASC`, fromProject,
	)
	if err != nil {
		return types.Storagef("query phases to reparent: %v", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return types.Storagef("scan phase id: %v", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return types.Storagef("iterate phases to reparent: %v", err)
	}

	for i, id := range ids {
		_, err := t.tx.Exec(
			`UPDATE phases SET project_id = ?, number = ?, updated_at = ? WHERE phase_id = ?`,
			toProject, maxNumber+i+1, fmtTime(time.Now()), id,
		)
		if err != nil {
			return types.Storagef("reparent phase %s: %v", id, err)
		}
	}
	return nil
}

// ReorderProjects applies a full permutation of the repository's
// project ids atomically.
func (s *Store) ReorderProjects(repoID string, ids []string) error {
	return s.RunInTx(func(tx *Tx) error {
		if _, err := tx.GetRepository(repoID); err != nil {
			return err
		}
		if err := tx.applyPermutation(projectOrder, repoID, ids); err != nil {
			return err
		}
		return tx.LogActivity(repoID, "project", repoID, "reordered", fmt.Sprintf("%d projects", len(ids)))
	})
}

// MoveProject moves a project to a new repository at the given
// position in one transaction: removed-and-reindexed from the old
// parent, inserted-with-shift into the new one.
func (s *Store) MoveProject(projectID, newRepoID string, newPosition int) error {
	return s.RunInTx(func(tx *Tx) error {
		p, err := tx.GetProject(projectID)
		if err != nil {
			return err
		}
		if _, err := tx.GetRepository(newRepoID); err != nil {
			return err
		}

		count, err := tx.countSiblings(projectOrder, newRepoID)
		if err != nil {
			return err
		}
		if p.RepoID == newRepoID {
			// Moving within the same parent: the row itself is one of
			// the count, so the valid range is 1..count.
			count--
		}
		if err := checkInsertPosition(newPosition, count); err != nil {
			return err
		}

		if err := tx.closeGapAfter(projectOrder, p.RepoID, p.Position); err != nil {
			return err
		}
		if err := tx.shiftUpFrom(projectOrder, newRepoID, newPosition); err != nil {
			return err
		}
		_, err = tx.tx.Exec(
			`UPDATE projects SET repo_id = ?, position = ?, updated_at = ? WHERE project_id = ?`,
			newRepoID, newPosition, fmtTime(time.Now()), projectID,
		)
		if err != nil {
			return types.Storagef("move project: %v", err)
		}
		return tx.LogActivity(newRepoID, "project", projectID, "moved", p.Name)
	})
}

func hydrateProject(row scanner) (*types.Project, error) {
	var p types.Project
	var deliverables, metrics, status, createdAt, updatedAt string
	if err := row.Scan(&p.ProjectID, &p.RepoID, &p.Name, &p.Objective, &deliverables, &metrics, &status, &p.Completion, &p.Position, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, types.Storagef("scan project: %v", err)
	}
	var err error
	if p.Deliverables, err = unmarshalList(deliverables); err != nil {
		return nil, err
	}
	if p.SuccessMetrics, err = unmarshalList(metrics); err != nil {
		return nil, err
	}
	p.Status = types.ProjectStatus(status)
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, types.Storagef("parse project created_at: %v", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, types.Storagef("parse project updated_at: %v", err)
	}
	return &p, nil
}
