package types

// ProjectStatus describes where a roadmap-level project stands.
type ProjectStatus string

const (
	ProjectPlanned    ProjectStatus = "planned"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
)

// ValidProjectStatus reports whether s is a recognized project status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectPlanned, ProjectInProgress, ProjectCompleted:
		return true
	}
	return false
}

// PhaseStatus describes where a sprint/iteration phase stands.
type PhaseStatus string

const (
	PhasePending   PhaseStatus = "pending"
	PhaseActive    PhaseStatus = "active"
	PhaseCompleted PhaseStatus = "completed"
)

// ValidPhaseStatus reports whether s is a recognized phase status.
func ValidPhaseStatus(s PhaseStatus) bool {
	switch s {
	case PhasePending, PhaseActive, PhaseCompleted:
		return true
	}
	return false
}

// StepStatus is the state machine for a delivery-cycle step.
// not_started -> in_progress -> completed, with blocked reachable from
// any non-terminal state and returning to in_progress on unblock.
type StepStatus string

const (
	StepNotStarted StepStatus = "not_started"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepBlocked    StepStatus = "blocked"
)

// ValidStepStatus reports whether s is a recognized step status.
func ValidStepStatus(s StepStatus) bool {
	switch s {
	case StepNotStarted, StepInProgress, StepCompleted, StepBlocked:
		return true
	}
	return false
}

// TaskStatus is the state of a single task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskBlocked    TaskStatus = "blocked"
)

// ValidTaskStatus reports whether s is a recognized task status.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone, TaskBlocked:
		return true
	}
	return false
}

// MigrationStatus is the outcome recorded in the consolidation ledger.
type MigrationStatus string

const (
	MigrationCompleted MigrationStatus = "completed"
	MigrationFailed    MigrationStatus = "failed"
)
