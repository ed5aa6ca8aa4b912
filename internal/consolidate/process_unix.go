//go:build unix

package consolidate

import "golang.org/x/sys/unix"

// isProcessRunning checks whether a process with the given pid exists.
// Signal 0 performs the existence check without delivering anything.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	return unix.Kill(pid, 0) == nil
}
