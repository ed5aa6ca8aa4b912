package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

const taskCols = `task_id, phase_id, step_number, description, assignee, status, points, created_at, updated_at`

// CreateTask adds a task under a phase and step. A step number of 0
// attaches the task to the phase as a whole.
func (s *Store) CreateTask(phaseID string, stepNumber int, description, assignee string, points int) (*types.Task, error) {
	if description == "" {
		return nil, types.Validationf("task description must not be empty")
	}
	if stepNumber != 0 && !types.ValidStepNumber(stepNumber) {
		return nil, types.Validationf("step number %d out of range 1..%d", stepNumber, types.StepCount)
	}

	var task *types.Task
	err := s.RunInTx(func(tx *Tx) error {
		phase, err := tx.GetPhase(phaseID)
		if err != nil {
			return err
		}
		project, err := tx.GetProject(phase.ProjectID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		task = &types.Task{
			TaskID:      newID(),
			PhaseID:     phaseID,
			StepNumber:  stepNumber,
			Description: description,
			Assignee:    assignee,
			Status:      types.TaskTodo,
			Points:      points,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = tx.tx.Exec(
			`INSERT INTO tasks (task_id, phase_id, step_number, description, assignee, status, points, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.TaskID, task.PhaseID, task.StepNumber, task.Description, task.Assignee,
			string(task.Status), task.Points, fmtTime(now), fmtTime(now),
		)
		if err != nil {
			return types.Storagef("insert task: %v", err)
		}
		return tx.LogActivity(project.RepoID, "task", task.TaskID, "created", task.Description)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask returns the task with the given id.
func (s *Store) GetTask(taskID string) (*types.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE task_id = ?`, taskID)
	task, err := hydrateTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("task %s", taskID)
		}
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial update to a task.
func (s *Store) UpdateTask(taskID string, patch types.TaskPatch) (*types.Task, error) {
	var task *types.Task
	err := s.RunInTx(func(tx *Tx) error {
		row := tx.tx.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE task_id = ?`, taskID)
		var err error
		task, err = hydrateTask(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.NotFoundf("task %s", taskID)
			}
			return err
		}

		if patch.Description != nil {
			if *patch.Description == "" {
				return types.Validationf("task description must not be empty")
			}
			task.Description = *patch.Description
		}
		if patch.Assignee != nil {
			task.Assignee = *patch.Assignee
		}
		if patch.Status != nil {
			if !types.ValidTaskStatus(*patch.Status) {
				return types.Validationf("unknown task status %q", *patch.Status)
			}
			task.Status = *patch.Status
		}
		if patch.Points != nil {
			if *patch.Points < 0 {
				return types.Validationf("points must not be negative")
			}
			task.Points = *patch.Points
		}
		task.UpdatedAt = time.Now().UTC()

		_, err = tx.tx.Exec(
			`UPDATE tasks SET description = ?, assignee = ?, status = ?, points = ?, updated_at = ? WHERE task_id = ?`,
			task.Description, task.Assignee, string(task.Status), task.Points, fmtTime(task.UpdatedAt), taskID,
		)
		if err != nil {
			return types.Storagef("update task: %v", err)
		}

		phase, err := tx.GetPhase(task.PhaseID)
		if err != nil {
			return err
		}
		project, err := tx.GetProject(phase.ProjectID)
		if err != nil {
			return err
		}
		return tx.LogActivity(project.RepoID, "task", taskID, "updated", task.Description)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(taskID string) error {
	return s.RunInTx(func(tx *Tx) error {
		row := tx.tx.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE task_id = ?`, taskID)
		task, err := hydrateTask(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.NotFoundf("task %s", taskID)
			}
			return err
		}

		if _, err := tx.tx.Exec(`DELETE FROM tasks WHERE task_id = ?`, taskID); err != nil {
			return types.Storagef("delete task: %v", err)
		}

		phase, err := tx.GetPhase(task.PhaseID)
		if err != nil {
			return err
		}
		project, err := tx.GetProject(phase.ProjectID)
		if err != nil {
			return err
		}
		return tx.LogActivity(project.RepoID, "task", taskID, "deleted", task.Description)
	})
}

// ListTasks returns a phase's tasks, optionally filtered to one step.
// A stepNumber of 0 returns every task in the phase.
func (s *Store) ListTasks(phaseID string, stepNumber int) ([]types.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE phase_id = ?`
	args := []any{phaseID}
	if stepNumber != 0 {
		query += ` AND step_number = ?`
		args = append(args, stepNumber)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, types.Storagef("query tasks: %v", err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		task, err := hydrateTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storagef("iterate tasks: %v", err)
	}
	return tasks, nil
}

func hydrateTask(row scanner) (*types.Task, error) {
	var task types.Task
	var status, createdAt, updatedAt string
	if err := row.Scan(&task.TaskID, &task.PhaseID, &task.StepNumber, &task.Description, &task.Assignee, &status, &task.Points, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, types.Storagef("scan task: %v", err)
	}
	task.Status = types.TaskStatus(status)
	var err error
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, types.Storagef("parse task created_at: %v", err)
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, types.Storagef("parse task updated_at: %v", err)
	}
	return &task, nil
}
