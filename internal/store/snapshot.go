package store

import (
	"sort"
	"strings"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// Snapshot is the full extracted content of a store, ordered
// deterministically (sorted by natural id) so a content hash computed
// over it is stable across runs.
type Snapshot struct {
	Repositories []types.Repository    `json:"repositories"`
	Projects     []types.Project       `json:"projects"`
	Phases       []types.Phase         `json:"phases"`
	Cycles       []types.Cycle         `json:"cycles"`
	Steps        []types.Step          `json:"steps"`
	Tasks        []types.Task          `json:"tasks"`
	Activity     []types.ActivityEntry `json:"activity"`
}

// RowCount returns the total number of entity rows in the snapshot,
// excluding activity entries.
func (sn *Snapshot) RowCount() int {
	return len(sn.Repositories) + len(sn.Projects) + len(sn.Phases) +
		len(sn.Cycles) + len(sn.Steps) + len(sn.Tasks)
}

// ExportSnapshot reads every entity table in one read-only pass and
// returns the rows sorted by natural id.
func (s *Store) ExportSnapshot() (*Snapshot, error) {
	sn := &Snapshot{}

	repos, err := s.ListRepositories()
	if err != nil {
		return nil, err
	}
	sn.Repositories = repos
	sort.Slice(sn.Repositories, func(i, j int) bool { return sn.Repositories[i].RepoID < sn.Repositories[j].RepoID })

	for _, repo := range repos {
		projects, err := s.ListProjects(repo.RepoID)
		if err != nil {
			return nil, err
		}
		sn.Projects = append(sn.Projects, projects...)

		activity, err := s.ListActivity(repo.RepoID, 0)
		if err != nil {
			return nil, err
		}
		sn.Activity = append(sn.Activity, activity...)
	}
	sort.Slice(sn.Projects, func(i, j int) bool { return sn.Projects[i].ProjectID < sn.Projects[j].ProjectID })
	sort.Slice(sn.Activity, func(i, j int) bool { return sn.Activity[i].EntryID < sn.Activity[j].EntryID })

	for _, p := range sn.Projects {
		phases, err := s.ListPhases(p.ProjectID)
		if err != nil {
			return nil, err
		}
		sn.Phases = append(sn.Phases, phases...)
	}
	sort.Slice(sn.Phases, func(i, j int) bool { return sn.Phases[i].PhaseID < sn.Phases[j].PhaseID })

	for _, ph := range sn.Phases {
		cycles, err := s.ListCycles(ph.PhaseID)
		if err != nil {
			return nil, err
		}
		sn.Cycles = append(sn.Cycles, cycles...)
		for _, c := range cycles {
			steps, err := s.ListSteps(ph.PhaseID, c.CycleNumber)
			if err != nil {
				return nil, err
			}
			sn.Steps = append(sn.Steps, steps...)
		}
		tasks, err := s.ListTasks(ph.PhaseID, 0)
		if err != nil {
			return nil, err
		}
		sn.Tasks = append(sn.Tasks, tasks...)
	}
	sort.Slice(sn.Cycles, func(i, j int) bool { return sn.Cycles[i].CycleID < sn.Cycles[j].CycleID })
	sort.Slice(sn.Steps, func(i, j int) bool { return sn.Steps[i].StepID < sn.Steps[j].StepID })
	sort.Slice(sn.Tasks, func(i, j int) bool { return sn.Tasks[i].TaskID < sn.Tasks[j].TaskID })

	return sn, nil
}

// ImportSnapshot upserts every snapshot row into the store inside one
// transaction, keyed by natural id. Re-running after a partial prior
// failure does not duplicate rows; activity entries are deduplicated
// by their full content.
func (s *Store) ImportSnapshot(sn *Snapshot) error {
	err := s.RunInTx(func(tx *Tx) error {
		for _, r := range sn.Repositories {
			_, err := tx.tx.Exec(
				`INSERT INTO repositories (repo_id, name, description, team, metadata, overall_progress, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT(repo_id) DO UPDATE SET
				   name = excluded.name, description = excluded.description, team = excluded.team,
				   metadata = excluded.metadata, overall_progress = excluded.overall_progress,
				   updated_at = excluded.updated_at`,
				r.RepoID, r.Name, r.Description, marshalList(r.Team), marshalObject(r.Metadata),
				r.OverallProgress, fmtTime(r.CreatedAt), fmtTime(r.UpdatedAt),
			)
			if err != nil {
				return importError("repository", r.RepoID, err)
			}
		}

		for _, p := range sn.Projects {
			_, err := tx.tx.Exec(
				`INSERT INTO projects (project_id, repo_id, name, objective, deliverables, success_metrics, status, completion, position, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT(project_id) DO UPDATE SET
				   repo_id = excluded.repo_id, name = excluded.name, objective = excluded.objective,
				   deliverables = excluded.deliverables, success_metrics = excluded.success_metrics,
				   status = excluded.status, completion = excluded.completion, position = excluded.position,
				   updated_at = excluded.updated_at`,
				p.ProjectID, p.RepoID, p.Name, p.Objective,
				marshalList(p.Deliverables), marshalList(p.SuccessMetrics),
				string(p.Status), p.Completion, p.Position, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt),
			)
			if err != nil {
				return importError("project", p.ProjectID, err)
			}
		}

		for _, ph := range sn.Phases {
			_, err := tx.tx.Exec(
				`INSERT INTO phases (phase_id, project_id, number, status, current_step, started_at, ended_at, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT(phase_id) DO UPDATE SET
				   project_id = excluded.project_id, number = excluded.number, status = excluded.status,
				   current_step = excluded.current_step, started_at = excluded.started_at,
				   ended_at = excluded.ended_at, updated_at = excluded.updated_at`,
				ph.PhaseID, ph.ProjectID, ph.Number, string(ph.Status), ph.CurrentStep,
				fmtNullTime(ph.StartedAt), fmtNullTime(ph.EndedAt), fmtTime(ph.CreatedAt), fmtTime(ph.UpdatedAt),
			)
			if err != nil {
				return importError("phase", ph.PhaseID, err)
			}
		}

		for _, c := range sn.Cycles {
			_, err := tx.tx.Exec(
				`INSERT INTO cycles (cycle_id, phase_id, cycle_number, started_at, ended_at)
				 VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(cycle_id) DO UPDATE SET
				   phase_id = excluded.phase_id, cycle_number = excluded.cycle_number,
				   started_at = excluded.started_at, ended_at = excluded.ended_at`,
				c.CycleID, c.PhaseID, c.CycleNumber, fmtTime(c.StartedAt), fmtNullTime(c.EndedAt),
			)
			if err != nil {
				return importError("cycle", c.CycleID, err)
			}
		}

		for _, st := range sn.Steps {
			_, err := tx.tx.Exec(
				`INSERT INTO steps (step_id, phase_id, cycle_number, step_number, status, completion, deliverables, blockers, notes, started_at, ended_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT(step_id) DO UPDATE SET
				   status = excluded.status, completion = excluded.completion,
				   deliverables = excluded.deliverables, blockers = excluded.blockers,
				   notes = excluded.notes, started_at = excluded.started_at, ended_at = excluded.ended_at`,
				st.StepID, st.PhaseID, st.CycleNumber, st.StepNumber, string(st.Status), st.Completion,
				marshalList(st.Deliverables), marshalList(st.Blockers), st.Notes,
				fmtNullTime(st.StartedAt), fmtNullTime(st.EndedAt),
			)
			if err != nil {
				return importError("step", st.StepID, err)
			}
		}

		for _, task := range sn.Tasks {
			_, err := tx.tx.Exec(
				`INSERT INTO tasks (task_id, phase_id, step_number, description, assignee, status, points, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT(task_id) DO UPDATE SET
				   phase_id = excluded.phase_id, step_number = excluded.step_number,
				   description = excluded.description, assignee = excluded.assignee,
				   status = excluded.status, points = excluded.points, updated_at = excluded.updated_at`,
				task.TaskID, task.PhaseID, task.StepNumber, task.Description, task.Assignee,
				string(task.Status), task.Points, fmtTime(task.CreatedAt), fmtTime(task.UpdatedAt),
			)
			if err != nil {
				return importError("task", task.TaskID, err)
			}
		}

		// Activity entries carry no cross-store natural id; dedupe on
		// full content so a retried import stays append-only.
		for _, e := range sn.Activity {
			_, err := tx.tx.Exec(
				`INSERT INTO activity_log (repo_id, entity_type, entity_id, action, detail, created_at)
				 SELECT ?, ?, ?, ?, ?, ?
				 WHERE NOT EXISTS (
				   SELECT 1 FROM activity_log
				   WHERE repo_id = ? AND entity_type = ? AND entity_id = ? AND action = ? AND detail = ? AND created_at = ?
				 )`,
				e.RepoID, e.EntityType, e.EntityID, e.Action, e.Detail, fmtTime(e.CreatedAt),
				e.RepoID, e.EntityType, e.EntityID, e.Action, e.Detail, fmtTime(e.CreatedAt),
			)
			if err != nil {
				return importError("activity", e.EntityID, err)
			}
		}
		return nil
	})
	return err
}

// importError maps unique-constraint violations to ConflictError; the
// rest surface as StorageError.
func importError(entity, id string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return types.Conflictf("import %s %s: %v", entity, id, err)
	}
	return types.Storagef("import %s %s: %v", entity, id, err)
}
