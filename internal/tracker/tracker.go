// Package tracker is the service facade the CLI talks to. Each method
// maps to one user-facing operation and delegates to the store, the
// lifecycle engine, the query layer, or the consolidation service.
package tracker

import (
	"errors"
	"log/slog"

	"github.com/mesh-intelligence/cadence/internal/consolidate"
	"github.com/mesh-intelligence/cadence/internal/lifecycle"
	"github.com/mesh-intelligence/cadence/internal/query"
	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// Tracker bundles the entity store with the lifecycle engine behind a
// single handle.
type Tracker struct {
	store   *store.Store
	engine  *lifecycle.Engine
	dataDir string
	log     *slog.Logger
}

// New wraps an open store. dataDir is the directory holding the
// canonical store file, used to place the consolidation lock.
func New(s *store.Store, dataDir string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:   s,
		engine:  lifecycle.New(s),
		dataDir: dataDir,
		log:     logger,
	}
}

// Store exposes the underlying store for read-only callers.
func (t *Tracker) Store() *store.Store {
	return t.store
}

// InitializeRepository creates the repository record if the store does
// not already hold one. It is idempotent: a second call returns the
// existing repository with alreadyExisted true and changes nothing.
func (t *Tracker) InitializeRepository(name, description string, team []string, metadata map[string]any) (*types.Repository, bool, error) {
	existing, err := t.store.FirstRepository()
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, false, err
	}
	repo, err := t.store.CreateRepository(name, description, team, metadata)
	if err != nil {
		return nil, false, err
	}
	return repo, false, nil
}

// Repository returns the store's repository record.
func (t *Tracker) Repository() (*types.Repository, error) {
	return t.store.FirstRepository()
}

// CreateProject appends a project to the end of the repository roadmap.
func (t *Tracker) CreateProject(repoID, name, objective string, deliverables, successMetrics []string) (*types.Project, error) {
	return t.store.CreateProject(repoID, name, objective, deliverables, successMetrics)
}

// InsertProjectAt inserts a project at the given roadmap position,
// shifting later projects down.
func (t *Tracker) InsertProjectAt(repoID, name, objective string, deliverables, successMetrics []string, position int) (*types.Project, error) {
	return t.store.InsertProjectAt(repoID, name, objective, deliverables, successMetrics, position)
}

// DeleteProject removes a project. When the project still has phases,
// reparentTo names the project that receives them; without it the
// delete is refused.
func (t *Tracker) DeleteProject(projectID, reparentTo string) error {
	return t.store.DeleteProject(projectID, reparentTo)
}

// ReorderProjects applies a full permutation of a repository's
// project order.
func (t *Tracker) ReorderProjects(repoID string, ids []string) error {
	return t.store.ReorderProjects(repoID, ids)
}

// MoveProject relocates a project to a new position, optionally under
// a different repository.
func (t *Tracker) MoveProject(projectID, newRepoID string, newPosition int) error {
	return t.store.MoveProject(projectID, newRepoID, newPosition)
}

// GetProject loads one project.
func (t *Tracker) GetProject(projectID string) (*types.Project, error) {
	return t.store.GetProject(projectID)
}

// ListProjects returns a repository's projects in position order.
func (t *Tracker) ListProjects(repoID string) ([]types.Project, error) {
	return t.store.ListProjects(repoID)
}

// UpdateProjectPhase applies a project patch and refreshes the
// repository rollup.
func (t *Tracker) UpdateProjectPhase(projectID string, patch types.ProjectPatch) (*types.Project, error) {
	return t.engine.UpdateProjectPhase(projectID, patch)
}

// CreatePhase appends a phase to a project. The phase starts active
// with cycle 1 open on step 1.
func (t *Tracker) CreatePhase(projectID string) (*types.Phase, error) {
	return t.store.CreatePhase(projectID)
}

// InsertPhaseAt inserts a phase at the given number, shifting later
// phases down.
func (t *Tracker) InsertPhaseAt(projectID string, number int) (*types.Phase, error) {
	return t.store.InsertPhaseAt(projectID, number)
}

// DeletePhase removes a phase and everything under it.
func (t *Tracker) DeletePhase(phaseID string) error {
	return t.store.DeletePhase(phaseID)
}

// ReorderPhases applies a full permutation of a project's phase order.
func (t *Tracker) ReorderPhases(projectID string, ids []string) error {
	return t.store.ReorderPhases(projectID, ids)
}

// MovePhase relocates a phase, optionally under a different project.
func (t *Tracker) MovePhase(phaseID, newProjectID string, newNumber int) error {
	return t.store.MovePhase(phaseID, newProjectID, newNumber)
}

// GetPhase loads one phase.
func (t *Tracker) GetPhase(phaseID string) (*types.Phase, error) {
	return t.store.GetPhase(phaseID)
}

// ListPhases returns a project's phases in number order.
func (t *Tracker) ListPhases(projectID string) ([]types.Phase, error) {
	return t.store.ListPhases(projectID)
}

// CompletePhase marks a phase completed and closes its open cycle.
func (t *Tracker) CompletePhase(phaseID string) error {
	return t.engine.CompletePhase(phaseID)
}

// AdvanceCycle completes the current step of a phase and moves the
// pointer forward, rolling into a fresh cycle after step 7.
func (t *Tracker) AdvanceCycle(phaseID, notes string) (*types.Cycle, error) {
	return t.engine.AdvanceCycle(phaseID, notes)
}

// UpdateStep applies a partial update to one step of the current
// cycle, enforcing the step status transition rules.
func (t *Tracker) UpdateStep(phaseID string, stepNumber int, patch types.StepPatch) (*types.Step, error) {
	return t.engine.UpdateStep(phaseID, stepNumber, patch)
}

// CreateTask records a task under a phase. stepNumber 0 means the task
// is phase-wide rather than tied to one step.
func (t *Tracker) CreateTask(phaseID string, stepNumber int, description, assignee string, points int) (*types.Task, error) {
	return t.store.CreateTask(phaseID, stepNumber, description, assignee, points)
}

// UpdateTask applies a partial update to a task.
func (t *Tracker) UpdateTask(taskID string, patch types.TaskPatch) (*types.Task, error) {
	return t.store.UpdateTask(taskID, patch)
}

// DeleteTask removes a task.
func (t *Tracker) DeleteTask(taskID string) error {
	return t.store.DeleteTask(taskID)
}

// ListTasks returns a phase's tasks, filtered to one step when
// stepNumber is nonzero.
func (t *Tracker) ListTasks(phaseID string, stepNumber int) ([]types.Task, error) {
	return t.store.ListTasks(phaseID, stepNumber)
}

// AddDocumentation attaches a document to the repository.
func (t *Tracker) AddDocumentation(repoID, title, docType, content string) (*types.Documentation, error) {
	return t.store.AddDocumentation(repoID, title, docType, content)
}

// ListDocumentation returns the repository's documents.
func (t *Tracker) ListDocumentation(repoID string) ([]types.Documentation, error) {
	return t.store.ListDocumentation(repoID)
}

// CurrentStatus builds the status view for a repository.
func (t *Tracker) CurrentStatus(repoID string) (*query.Status, error) {
	return query.CurrentStatus(t.store, repoID)
}

// Roadmap builds the roadmap view for a repository.
func (t *Tracker) Roadmap(repoID string, includeDetails bool) (*query.Roadmap, error) {
	return query.GetRoadmap(t.store, repoID, includeDetails)
}

// Search finds projects and documentation matching a term.
func (t *Tracker) Search(repoID, term string) (*query.SearchResults, error) {
	return query.Search(t.store, repoID, term)
}

// ListActivity returns the most recent activity entries, newest first.
func (t *Tracker) ListActivity(repoID string, limit int) ([]types.ActivityEntry, error) {
	return t.store.ListActivity(repoID, limit)
}

// RunConsolidation discovers sibling store files and folds them into
// the canonical store.
func (t *Tracker) RunConsolidation() error {
	return consolidate.NewService(t.store, t.dataDir, t.log).Run()
}
