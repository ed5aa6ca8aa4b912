// Shared helpers for cadence CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mesh-intelligence/cadence/internal/paths"
	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/internal/tracker"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// openTracker resolves the data directory, opens (or creates) the store
// there, and wraps it in a Tracker. The caller must call the returned
// close func.
func openTracker() (*tracker.Tracker, func(), error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	s, err := store.Open(paths.StorePath(dataDir))
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	t := tracker.New(s, dataDir, logger)
	return t, func() { s.Close() }, nil
}

// repoOrExit returns the store's repository, or tells the user to run
// init and exits.
func repoOrExit(t *tracker.Tracker) *types.Repository {
	repo, err := t.Repository()
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "no repository found; run 'cadence init' first")
			os.Exit(exitUserError)
		}
		fail(err)
	}
	return repo
}

// fail prints the error and exits with a code derived from its kind:
// user mistakes exit 1, everything else exits 2.
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(errExitCode(err))
}

// errExitCode maps error kinds onto CLI exit codes.
func errExitCode(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrConflict),
		errors.Is(err, types.ErrDependentChildren):
		return exitUserError
	default:
		return exitSysError
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal JSON:", err)
		os.Exit(exitSysError)
	}
	fmt.Println(string(out))
}

// splitList parses a comma-separated flag value into trimmed items.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
