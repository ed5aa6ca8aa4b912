package consolidate

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

// lockRecord is the advisory lock written before a consolidation run.
// It names the holder so a later run can detect a stale lock left by a
// crashed process.
type lockRecord struct {
	PID        int    `json:"pid"`
	AcquiredAt string `json:"acquired_at"`
}

// acquireLock creates the lock file exclusively. When a lock already
// exists and its recorded pid is no longer running, the stale lock is
// removed and acquisition retried once; a live holder aborts the run
// with ConflictError. The returned release func removes the lock and
// must run on every exit path.
func acquireLock(path string) (release func(), err error) {
	if release, err = tryCreateLock(path); err == nil {
		return release, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return nil, types.Storagef("create lock %s: %v", path, err)
	}

	rec, readErr := readLock(path)
	if readErr == nil && isProcessRunning(rec.PID) {
		return nil, types.Conflictf("consolidation lock held by pid %d since %s", rec.PID, rec.AcquiredAt)
	}
	// Unreadable or stale lock: the holder is gone, take over.
	if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
		return nil, types.Storagef("remove stale lock %s: %v", path, rmErr)
	}
	if release, err = tryCreateLock(path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, types.Conflictf("consolidation lock reacquired by another process")
		}
		return nil, types.Storagef("create lock %s: %v", path, err)
	}
	return release, nil
}

func tryCreateLock(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	rec := lockRecord{PID: os.Getpid(), AcquiredAt: time.Now().UTC().Format(time.RFC3339)}
	enc := json.NewEncoder(f)
	if err := enc.Encode(rec); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}
	return func() { os.Remove(path) }, nil
}

func readLock(path string) (*lockRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec lockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
