// Shared helpers for cadence integration tests.
package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/internal/tracker"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// newTracker opens a fresh tracker over a temp-dir store.
func newTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	dataDir := t.TempDir()
	s, err := store.Open(filepath.Join(dataDir, "cadence.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return tracker.New(s, dataDir, nil)
}

// initRepo initializes the tracker's repository record.
func initRepo(t *testing.T, tr *tracker.Tracker, name string) *types.Repository {
	t.Helper()
	repo, existed, err := tr.InitializeRepository(name, "", nil, nil)
	require.NoError(t, err)
	require.False(t, existed)
	return repo
}

func stepStatus(v types.StepStatus) *types.StepStatus { return &v }
func completion(v int) *int                           { return &v }
