// Integration tests for merging scattered workspace stores through the
// tracker facade.
package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cadence/internal/paths"
	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/internal/tracker"
)

func TestConsolidation_EndToEnd(t *testing.T) {
	// Canonical tracker with its own repository.
	dataDir := t.TempDir()
	canonical, err := store.Open(paths.StorePath(dataDir))
	require.NoError(t, err)
	t.Cleanup(func() { canonical.Close() })
	tr := tracker.New(canonical, dataDir, nil)
	initRepo(t, tr, "canonical")

	// A secondary store left behind in a workspace.
	workspace := t.TempDir()
	secondary, err := store.Open(filepath.Join(workspace, paths.StoreFileName))
	require.NoError(t, err)
	repo, err := secondary.CreateRepository("workspace", "scattered work", nil, nil)
	require.NoError(t, err)
	project, err := secondary.CreateProject(repo.RepoID, "stranded", "", nil, nil)
	require.NoError(t, err)
	_, err = secondary.CreatePhase(project.ProjectID)
	require.NoError(t, err)
	require.NoError(t, secondary.Close())

	t.Chdir(workspace)
	require.NoError(t, tr.RunConsolidation())

	// Both repositories now live in the canonical store.
	repos, err := canonical.ListRepositories()
	require.NoError(t, err)
	assert.Len(t, repos, 2)

	merged, err := canonical.GetRepositoryByName("workspace")
	require.NoError(t, err)
	projects, err := canonical.ListProjects(merged.RepoID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "stranded", projects[0].Name)

	// The workspace store is retired with a marker next to it.
	src := filepath.Join(workspace, paths.StoreFileName)
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "secondary store should be removed")
	_, err = os.Stat(paths.MarkerPath(src))
	assert.NoError(t, err, "marker should be written")

	// A second run is a no-op.
	require.NoError(t, tr.RunConsolidation())
	repos, err = canonical.ListRepositories()
	require.NoError(t, err)
	assert.Len(t, repos, 2)
}
