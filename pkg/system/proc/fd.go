//go:build linux

package proc

import "os"

// CountOpenFDs returns the number of open file descriptors of a process by
// counting the entries of its fd directory. An unreadable directory (gone or
// permission-denied process) counts as 0; the value is best-effort telemetry
// and never aborts a gather.
func (fs FS) CountOpenFDs(pid int) uint64 {
	entries, err := os.ReadDir(fs.path(pid, "fd"))
	if err != nil {
		return 0
	}
	return uint64(len(entries))
}
