//go:build linux

package proc

import "github.com/plafond/plafond/pkg/types"

// Record is one process's extracted state: identity, current usage, and the
// limits that usage is audited against.
type Record struct {
	PID     int    `json:"pid"`
	Name    string `json:"name"`              // kernel comm, truncated to 15 bytes
	Cmdline string `json:"cmdline,omitempty"` // empty for kernel threads

	OpenFDs uint64 `json:"open_fds"`
	FDLimit Rlimit `json:"fd_limit"` // "Max open files", counts

	VMSize   types.Bytes `json:"vm_size"`
	VMRSS    types.Bytes `json:"vm_rss"`
	VMLocked types.Bytes `json:"vm_locked"`
	MemLimit Rlimit      `json:"mem_limit"` // "Max address space", bytes

	Threads     uint64 `json:"threads"`
	ThreadLimit Rlimit `json:"thread_limit"` // "Max processes", counts

	// Rlimits preserves the full limits table in native units, including
	// every pair not surfaced as a field above.
	Rlimits map[string]Rlimit `json:"rlimits,omitempty"`
}

// Gather assembles the Record of one pid, reading identity, limits, status
// and the fd count in that order. The first unreadable required descriptor
// aborts the gather with an error naming it; the fd count never fails. One
// pid's unreadability never leaks into another pid's record.
func (fs FS) Gather(pid int) (*Record, error) {
	name, cmdline, err := fs.Identity(pid)
	if err != nil {
		return nil, err
	}
	lim, err := fs.Limits(pid)
	if err != nil {
		return nil, err
	}
	st, err := fs.Status(pid)
	if err != nil {
		return nil, err
	}
	return &Record{
		PID:         pid,
		Name:        name,
		Cmdline:     cmdline,
		OpenFDs:     fs.CountOpenFDs(pid),
		FDLimit:     lim.OpenFiles,
		VMSize:      st.VMSize,
		VMRSS:       st.VMRSS,
		VMLocked:    st.VMLocked,
		MemLimit:    lim.AddressSpace,
		Threads:     st.Threads,
		ThreadLimit: lim.Processes,
		Rlimits:     lim.Table,
	}, nil
}
