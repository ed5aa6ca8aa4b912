// Package paths resolves configuration and data directory locations
// for the cadence tracker.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Well-known file names inside the data directory.
const (
	// StoreFileName is the canonical store file. Legacy/secondary
	// stores use the same name at other paths until consolidated.
	StoreFileName = "cadence.db"

	// LockFileName is the advisory consolidation lock record.
	LockFileName = "consolidation.lock"

	// MarkerSuffix is appended to a retired secondary store's path to
	// record where its data now lives.
	MarkerSuffix = ".consolidated"

	// LegacyDirName is the per-workspace dot directory earlier tool
	// versions wrote their local store into.
	LegacyDirName = ".cadence"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CADENCE_CONFIG_DIR"
	EnvDataDir   = "CADENCE_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/cadence (fallback ~/.config/cadence)
// macOS:   ~/Library/Application Support/cadence
// Windows: %APPDATA%/cadence
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "cadence"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "cadence"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "cadence"), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
// The canonical store lives here; secondary stores scattered across
// workspaces are merged into it by the consolidation service.
//
// Linux:   $XDG_DATA_HOME/cadence (fallback ~/.local/share/cadence)
// macOS:   ~/Library/Application Support/cadence
// Windows: %APPDATA%/cadence
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "cadence"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "cadence"), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "cadence"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > CADENCE_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence
// chain: flag > config.yaml value > CADENCE_DATA_DIR env >
// DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}

// StorePath returns the canonical store path inside dataDir.
func StorePath(dataDir string) string {
	return filepath.Join(dataDir, StoreFileName)
}

// LockPath returns the consolidation lock path inside dataDir.
func LockPath(dataDir string) string {
	return filepath.Join(dataDir, LockFileName)
}

// MarkerPath returns the retirement marker path for a secondary store.
func MarkerPath(storePath string) string {
	return storePath + MarkerSuffix
}

// CandidateDirs returns the fixed set of directories the consolidation
// service scans for secondary stores: the working directory, its legacy
// dot directory, and up to maxAncestors parent directories.
func CandidateDirs(cwd string, maxAncestors int) []string {
	dirs := []string{cwd, filepath.Join(cwd, LegacyDirName)}
	dir := cwd
	for i := 0; i < maxAncestors; i++ {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dirs = append(dirs, parent)
		dir = parent
	}
	return dirs
}
