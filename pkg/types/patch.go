package types

// StepPatch is a partial update for a step. Nil fields are left
// unchanged; slice fields replace the stored value only when non-nil.
type StepPatch struct {
	Status       *StepStatus `json:"status,omitempty"`
	Completion   *int        `json:"completion,omitempty"`
	Deliverables []string    `json:"deliverables,omitempty"`
	Blockers     []string    `json:"blockers,omitempty"`
	Notes        *string     `json:"notes,omitempty"`
}

// ProjectPatch is a partial update for a roadmap project.
type ProjectPatch struct {
	Name           *string        `json:"name,omitempty"`
	Objective      *string        `json:"objective,omitempty"`
	Deliverables   []string       `json:"deliverables,omitempty"`
	SuccessMetrics []string       `json:"success_metrics,omitempty"`
	Status         *ProjectStatus `json:"status,omitempty"`
	Completion     *int           `json:"completion,omitempty"`
}

// TaskPatch is a partial update for a task.
type TaskPatch struct {
	Description *string     `json:"description,omitempty"`
	Assignee    *string     `json:"assignee,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Points      *int        `json:"points,omitempty"`
}
