// Package consolidate merges scattered secondary stores into the
// canonical store exactly once per distinct content snapshot. Runs are
// guarded by an advisory lock file, recorded in a ledger keyed by
// (source path, content hash), validated after merging, and safe to
// re-run: already-merged content is skipped and a half-applied retry
// upserts harmlessly.
package consolidate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/cadence/internal/paths"
	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// Service discovers, merges, validates, and retires secondary stores.
type Service struct {
	canonical *store.Store
	dataDir   string
	log       *slog.Logger
}

// NewService returns a Service writing into the canonical store.
// A nil logger falls back to slog.Default().
func NewService(canonical *store.Store, dataDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{canonical: canonical, dataDir: dataDir, log: logger}
}

// marker records, next to a retired secondary store, where its data
// now lives.
type marker struct {
	ConsolidatedInto string `yaml:"consolidated_into"`
	ContentHash      string `yaml:"content_hash"`
	ConsolidatedAt   string `yaml:"consolidated_at"`
}

// Run executes one consolidation pass. A held lock aborts the entire
// run with ConflictError before any scanning. Per-source failures are
// recorded in the ledger and logged; they never propagate past this
// boundary. The lock is released on every exit path.
func (s *Service) Run() error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return types.Storagef("create data dir %s: %v", s.dataDir, err)
	}
	release, err := acquireLock(paths.LockPath(s.dataDir))
	if err != nil {
		return err
	}
	defer release()

	cwd, err := os.Getwd()
	if err != nil {
		return types.Storagef("resolve working directory: %v", err)
	}

	sources := discoverSources(paths.StorePath(s.dataDir), cwd)
	if len(sources) == 0 {
		s.log.Debug("consolidation: no secondary stores found")
		return nil
	}

	for _, src := range sources {
		if err := s.consolidateSource(src); err != nil {
			s.log.Error("consolidation failed", "source", src, "err", err)
			continue
		}
	}
	return nil
}

// consolidateSource runs steps 3-8 of the protocol for one secondary
// store: extract, hash, ledger check, bulk upsert, validate, retire.
func (s *Service) consolidateSource(src string) error {
	sec, err := store.OpenReadOnly(src)
	if err != nil {
		return err
	}
	snap, err := sec.ExportSnapshot()
	closeErr := sec.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	hash, err := contentHash(snap)
	if err != nil {
		return err
	}

	rec, err := s.canonical.GetMigrationRecord(src, hash)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}
	if rec != nil && rec.Status == types.MigrationCompleted {
		s.log.Info("consolidation: source already merged, skipping", "source", src, "hash", hash)
		return nil
	}

	s.log.Info("consolidation: merging source", "source", src, "rows", snap.RowCount())

	if err := s.canonical.ImportSnapshot(snap); err != nil {
		s.record(src, hash, types.MigrationFailed, fmt.Sprintf("import: %v", err))
		return err
	}

	if diag := s.validate(snap); diag != "" {
		// Validation mismatch: keep the source file so nothing is lost.
		s.record(src, hash, types.MigrationFailed, diag)
		return types.InvalidStatef("post-merge validation failed for %s: %s", src, diag)
	}

	if err := s.retire(src, hash); err != nil {
		s.record(src, hash, types.MigrationFailed, fmt.Sprintf("retire: %v", err))
		return err
	}

	s.record(src, hash, types.MigrationCompleted, "validated")
	s.log.Info("consolidation: source merged and retired", "source", src, "hash", hash)
	return nil
}

// validate re-reads the canonical store filtered to the migrated keys
// and compares row presence plus critical fields against the snapshot.
// Returns a diagnostic string, or "" when everything matches.
func (s *Service) validate(sn *store.Snapshot) string {
	for _, want := range sn.Repositories {
		got, err := s.canonical.GetRepository(want.RepoID)
		if err != nil {
			return fmt.Sprintf("repository %s missing after merge: %v", want.RepoID, err)
		}
		if got.Name != want.Name || got.Description != want.Description || len(got.Team) != len(want.Team) {
			return fmt.Sprintf("repository %s fields diverge after merge", want.RepoID)
		}
	}
	for _, want := range sn.Projects {
		got, err := s.canonical.GetProject(want.ProjectID)
		if err != nil {
			return fmt.Sprintf("project %s missing after merge: %v", want.ProjectID, err)
		}
		if got.Name != want.Name || got.Status != want.Status ||
			got.Completion != want.Completion || got.Position != want.Position {
			return fmt.Sprintf("project %s fields diverge after merge", want.ProjectID)
		}
	}
	for _, want := range sn.Phases {
		got, err := s.canonical.GetPhase(want.PhaseID)
		if err != nil {
			return fmt.Sprintf("phase %s missing after merge: %v", want.PhaseID, err)
		}
		if got.Number != want.Number || got.Status != want.Status || got.CurrentStep != want.CurrentStep {
			return fmt.Sprintf("phase %s fields diverge after merge", want.PhaseID)
		}
	}
	for _, want := range sn.Tasks {
		got, err := s.canonical.GetTask(want.TaskID)
		if err != nil {
			return fmt.Sprintf("task %s missing after merge: %v", want.TaskID, err)
		}
		if got.Description != want.Description || got.Status != want.Status {
			return fmt.Sprintf("task %s fields diverge after merge", want.TaskID)
		}
	}
	return ""
}

// retire deletes the secondary store and writes a sibling marker file
// recording where its data now lives. Only called after validation
// succeeded.
func (s *Service) retire(src, hash string) error {
	if err := os.Remove(src); err != nil {
		return types.Storagef("remove secondary store %s: %v", src, err)
	}
	m := marker{
		ConsolidatedInto: paths.StorePath(s.dataDir),
		ContentHash:      hash,
		ConsolidatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return types.Storagef("encode marker for %s: %v", src, err)
	}
	if err := os.WriteFile(paths.MarkerPath(src), data, 0o644); err != nil {
		return types.Storagef("write marker for %s: %v", src, err)
	}
	return nil
}

// record writes the ledger row, logging rather than failing when the
// ledger itself cannot be written.
func (s *Service) record(src, hash string, status types.MigrationStatus, validation string) {
	if err := s.canonical.RecordMigration(src, hash, status, validation); err != nil {
		s.log.Error("consolidation: ledger write failed", "source", src, "err", err)
	}
}
