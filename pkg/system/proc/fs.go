//go:build linux

package proc

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMount is the canonical procfs mount point.
const DefaultMount = "/proc"

// FS reads process state from a proc filesystem mounted at a fixed root.
// Every reader is a pure function of (pid, mount contents), so tests can
// point an FS at a crafted directory tree instead of the live /proc.
type FS struct {
	mount string
}

// NewFS returns an FS over the canonical /proc mount.
func NewFS() FS { return NewFSAt(DefaultMount) }

// NewFSAt returns an FS over an arbitrary mount root.
func NewFSAt(mount string) FS { return FS{mount: filepath.Clean(mount)} }

// Mount returns the configured root.
func (fs FS) Mount() string { return fs.mount }

func (fs FS) path(pid int, elem ...string) string {
	return filepath.Join(append([]string{fs.mount, strconv.Itoa(pid)}, elem...)...)
}

// Exists reports whether a given pid currently has an entry under the mount.
func (fs FS) Exists(pid int) bool {
	_, err := os.Stat(fs.path(pid))
	return err == nil
}

// AllPids enumerates the numeric directory entries under the mount root in
// ascending order. The table is advisory: entries may vanish between
// enumeration and use, and callers must tolerate that.
func (fs FS) AllPids() ([]int, error) {
	entries, err := os.ReadDir(fs.mount)
	if err != nil {
		return nil, errors.Wrapf(err, "proc: enumerate %s", fs.mount)
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids, nil
}

// Verify reports whether the configured mount is listed as a proc filesystem
// in /proc/self/mountinfo. Advisory only: a fixture tree legitimately fails
// this check and still serves every reader.
func (fs FS) Verify() bool {
	f, err := os.Open("/proc/self/mountinfo")
	if err != nil {
		return false
	}
	defer func() {
		_ = f.Close()
	}()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		// mountinfo has: <fields> - <fstype> <source> <superopts>
		sep := " - "
		i := strings.LastIndex(line, sep)
		if i < 0 {
			continue
		}
		tail := strings.Fields(line[i+len(sep):])
		if len(tail) < 1 || tail[0] != "proc" {
			continue
		}
		// Mount point is field 5 of the pre-separator part (man 5 proc).
		pre := strings.Fields(line[:i])
		if len(pre) >= 5 && pre[4] == fs.mount {
			return true
		}
	}
	return false
}
