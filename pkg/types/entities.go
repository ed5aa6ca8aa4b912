package types

import "time"

// Repository is the top-level tracked codebase. One row per codebase,
// keyed by a stable identifier; re-initialization returns the existing
// row rather than creating a second one.
type Repository struct {
	RepoID          string         `json:"repo_id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Team            []string       `json:"team"`
	Metadata        map[string]any `json:"metadata"`
	OverallProgress int            `json:"overall_progress"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Project is a roadmap-level phase of work within a Repository.
// Position values form a gapless 1..N sequence within the repository.
type Project struct {
	ProjectID      string        `json:"project_id"`
	RepoID         string        `json:"repo_id"`
	Name           string        `json:"name"`
	Objective      string        `json:"objective"`
	Deliverables   []string      `json:"deliverables"`
	SuccessMetrics []string      `json:"success_metrics"`
	Status         ProjectStatus `json:"status"`
	Completion     int           `json:"completion"`
	Position       int           `json:"position"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Phase is an iteration/sprint within a Project. Number values form a
// gapless 1..N sequence within the project. CurrentStep points at the
// step (1-7) of the latest cycle that is in progress.
type Phase struct {
	PhaseID     string      `json:"phase_id"`
	ProjectID   string      `json:"project_id"`
	Number      int         `json:"number"`
	Status      PhaseStatus `json:"status"`
	CurrentStep int         `json:"current_step"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	EndedAt     *time.Time  `json:"ended_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Step is one of the 7 fixed delivery-cycle stages within a phase
// cycle, keyed by (phase, cycle number, step number). Name and driver
// come from the static step catalog, not from the row.
type Step struct {
	StepID       string     `json:"step_id"`
	PhaseID      string     `json:"phase_id"`
	CycleNumber  int        `json:"cycle_number"`
	StepNumber   int        `json:"step_number"`
	Status       StepStatus `json:"status"`
	Completion   int        `json:"completion"`
	Deliverables []string   `json:"deliverables"`
	Blockers     []string   `json:"blockers"`
	Notes        string     `json:"notes"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

// Name returns the catalog name for the step's number.
func (s *Step) Name() string { return StepName(s.StepNumber) }

// Driver returns the catalog primary-driver role for the step's number.
func (s *Step) Driver() string { return StepDriver(s.StepNumber) }

// Cycle groups one pass through steps 1-7 for a phase. CycleNumber is
// monotonically increasing per phase. Steps and Tasks are populated on
// detailed reads only.
type Cycle struct {
	CycleID     string     `json:"cycle_id"`
	PhaseID     string     `json:"phase_id"`
	CycleNumber int        `json:"cycle_number"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Steps       []Step     `json:"steps,omitempty"`
	Tasks       []Task     `json:"tasks,omitempty"`
}

// Closed reports whether the cycle has ended.
func (c *Cycle) Closed() bool { return c.EndedAt != nil }

// Task is a unit of work attached to a phase and step.
type Task struct {
	TaskID      string     `json:"task_id"`
	PhaseID     string     `json:"phase_id"`
	StepNumber  int        `json:"step_number"`
	Description string     `json:"description"`
	Assignee    string     `json:"assignee"`
	Status      TaskStatus `json:"status"`
	Points      int        `json:"points"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Documentation is a free-form document attached to a repository.
type Documentation struct {
	DocID     string    `json:"doc_id"`
	RepoID    string    `json:"repo_id"`
	Title     string    `json:"title"`
	DocType   string    `json:"doc_type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivityEntry is one append-only row recorded for every
// state-changing operation.
type ActivityEntry struct {
	EntryID    int64     `json:"entry_id"`
	RepoID     string    `json:"repo_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

// MigrationRecord is one consolidation-ledger row per
// (source path, content hash) pair. A completed record guarantees that
// exact content is never re-applied.
type MigrationRecord struct {
	SourcePath  string          `json:"source_path"`
	ContentHash string          `json:"content_hash"`
	Status      MigrationStatus `json:"status"`
	Validation  string          `json:"validation"`
	MigratedAt  time.Time       `json:"migrated_at"`
}
