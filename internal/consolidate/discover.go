package consolidate

import (
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/cadence/internal/paths"
)

// maxAncestors bounds the upward walk from the working directory when
// scanning for secondary stores.
const maxAncestors = 3

// discoverSources returns the secondary store files found in the fixed
// candidate directories, excluding the canonical store itself.
func discoverSources(canonicalPath, cwd string) []string {
	canonical, err := filepath.Abs(canonicalPath)
	if err != nil {
		canonical = canonicalPath
	}

	var sources []string
	for _, dir := range paths.CandidateDirs(cwd, maxAncestors) {
		candidate := filepath.Join(dir, paths.StoreFileName)
		abs, err := filepath.Abs(candidate)
		if err != nil || abs == canonical {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}
		sources = append(sources, abs)
	}
	return sources
}
