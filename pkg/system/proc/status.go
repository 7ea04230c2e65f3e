//go:build linux

package proc

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/plafond/plafond/pkg/types"
)

// Status is the subset of /proc/<pid>/status a resource audit needs: the
// parent link and owner for targeting, plus current memory and thread usage.
type Status struct {
	PPID         int
	RealUID      uint32
	EffectiveUID uint32
	VMSize       types.Bytes
	VMRSS        types.Bytes
	VMLocked     types.Bytes
	Threads      uint64
}

// Status parses /proc/<pid>/status. Usage lines that are missing or
// malformed leave their fields 0 (kernel threads carry no Vm* lines at all);
// only an unreadable file is an error.
func (fs FS) Status(pid int) (Status, error) {
	f, err := os.Open(fs.path(pid, "status"))
	if err != nil {
		return Status{}, errors.Wrapf(ErrStatusUnreadable, "pid %d: %v", pid, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var st Status
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "PPid:"):
			st.PPID, _ = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "PPid:")))
		case strings.HasPrefix(line, "Uid:"):
			// Uid: real, effective, saved, filesystem.
			cols := strings.Fields(strings.TrimPrefix(line, "Uid:"))
			if len(cols) > 0 {
				if v, err := strconv.ParseUint(cols[0], 10, 32); err == nil {
					st.RealUID = uint32(v)
				}
			}
			if len(cols) > 1 {
				if v, err := strconv.ParseUint(cols[1], 10, 32); err == nil {
					st.EffectiveUID = uint32(v)
				}
			}
		case strings.HasPrefix(line, "VmSize:"):
			st.VMSize = types.FromKB(statusKB(line, "VmSize:"))
		case strings.HasPrefix(line, "VmRSS:"):
			st.VMRSS = types.FromKB(statusKB(line, "VmRSS:"))
		case strings.HasPrefix(line, "VmLck:"):
			st.VMLocked = types.FromKB(statusKB(line, "VmLck:"))
		case strings.HasPrefix(line, "Threads:"):
			st.Threads, _ = strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(line, "Threads:")), 10, 64)
		}
	}
	if err := sc.Err(); err != nil {
		return Status{}, errors.Wrapf(ErrStatusUnreadable, "pid %d: %v", pid, err)
	}
	return st, nil
}

// statusKB extracts the numeric count from lines like "VmRSS:\t  2048 kB".
func statusKB(line, key string) uint64 {
	cols := strings.Fields(strings.TrimPrefix(line, key))
	if len(cols) == 0 {
		return 0
	}
	v, _ := strconv.ParseUint(cols[0], 10, 64)
	return v
}
