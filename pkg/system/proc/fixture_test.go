//go:build linux

package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeProc lays out a directory tree shaped like a proc mount, so the FS
// readers can be exercised against exact, permission-independent content.
type fakeProc struct {
	t    *testing.T
	root string
}

func newFakeProc(t *testing.T) *fakeProc {
	t.Helper()
	return &fakeProc{t: t, root: t.TempDir()}
}

func (fp *fakeProc) fs() FS { return NewFSAt(fp.root) }

func (fp *fakeProc) dir(pid int) string {
	d := filepath.Join(fp.root, strconv.Itoa(pid))
	require.NoError(fp.t, os.MkdirAll(d, 0o755))
	return d
}

func (fp *fakeProc) write(pid int, file, content string) {
	fp.t.Helper()
	require.NoError(fp.t, os.WriteFile(filepath.Join(fp.dir(pid), file), []byte(content), 0o644))
}

func (fp *fakeProc) addFDs(pid, n int) {
	fp.t.Helper()
	fdDir := filepath.Join(fp.dir(pid), "fd")
	require.NoError(fp.t, os.MkdirAll(fdDir, 0o755))
	for i := 0; i < n; i++ {
		require.NoError(fp.t, os.WriteFile(filepath.Join(fdDir, strconv.Itoa(i)), nil, 0o644))
	}
}

// addProcess lays out a complete, well-formed pid entry with default usage
// values. Tests that need precise usage write the descriptors directly.
func (fp *fakeProc) addProcess(pid, ppid int, comm string, euid uint32, fds int) {
	fp.t.Helper()
	fp.write(pid, "comm", comm+"\n")
	fp.write(pid, "cmdline", "/usr/bin/"+comm+"\x00--flag\x00value\x00")
	fp.write(pid, "limits", defaultLimits())
	fp.write(pid, "status", statusSpec{
		name: comm, pid: pid, ppid: ppid, ruid: euid, euid: euid,
		vmSizeKB: 225560, vmRSSKB: 4456, threads: 2,
	}.render())
	fp.addFDs(pid, fds)
}

const limitsHeader = "Limit                     Soft Limit           Hard Limit           Units     "

// limitsLine renders one row the way fs/proc prints it: four columns padded
// to fixed widths, so adjacent columns are separated by two or more spaces.
func limitsLine(name, soft, hard, unit string) string {
	return fmt.Sprintf("%-25s %-20s %-20s %-10s", name, soft, hard, unit)
}

func limitsContent(lines ...string) string {
	return limitsHeader + "\n" + strings.Join(lines, "\n") + "\n"
}

func defaultLimits() string {
	return limitsContent(
		limitsLine("Max cpu time", "unlimited", "unlimited", "seconds"),
		limitsLine("Max file size", "unlimited", "unlimited", "bytes"),
		limitsLine("Max data size", "unlimited", "unlimited", "bytes"),
		limitsLine("Max stack size", "8388608", "unlimited", "bytes"),
		limitsLine("Max core file size", "0", "unlimited", "bytes"),
		limitsLine("Max resident set", "unlimited", "unlimited", "bytes"),
		limitsLine("Max processes", "127816", "127816", "processes"),
		limitsLine("Max open files", "1024", "4096", "files"),
		limitsLine("Max locked memory", "8388608", "8388608", "bytes"),
		limitsLine("Max address space", "unlimited", "unlimited", "bytes"),
		limitsLine("Max file locks", "unlimited", "unlimited", "locks"),
		limitsLine("Max pending signals", "127816", "127816", "signals"),
		limitsLine("Max msgqueue size", "819200", "819200", "bytes"),
		limitsLine("Max nice priority", "0", "0", ""),
		limitsLine("Max realtime priority", "0", "0", ""),
		limitsLine("Max realtime timeout", "unlimited", "unlimited", "us"),
	)
}

// statusSpec renders a realistic status descriptor. Fields beyond what the
// parser extracts are present so prefix matching is exercised against the
// real shape (VmPeak before VmSize, VmHWM before VmRSS, and so on).
type statusSpec struct {
	name       string
	pid, ppid  int
	ruid, euid uint32
	vmSizeKB   uint64
	vmRSSKB    uint64
	vmLckKB    uint64
	threads    uint64
}

func (s statusSpec) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:\t%s\n", s.name)
	b.WriteString("Umask:\t0022\nState:\tS (sleeping)\n")
	fmt.Fprintf(&b, "Tgid:\t%d\nNgid:\t0\nPid:\t%d\nPPid:\t%d\nTracerPid:\t0\n", s.pid, s.pid, s.ppid)
	fmt.Fprintf(&b, "Uid:\t%d\t%d\t%d\t%d\n", s.ruid, s.euid, s.euid, s.euid)
	fmt.Fprintf(&b, "Gid:\t%d\t%d\t%d\t%d\n", s.ruid, s.euid, s.euid, s.euid)
	b.WriteString("FDSize:\t64\nGroups:\t0\n")
	fmt.Fprintf(&b, "VmPeak:\t%8d kB\n", s.vmSizeKB+100)
	fmt.Fprintf(&b, "VmSize:\t%8d kB\n", s.vmSizeKB)
	fmt.Fprintf(&b, "VmLck:\t%8d kB\n", s.vmLckKB)
	b.WriteString("VmPin:\t       0 kB\n")
	fmt.Fprintf(&b, "VmHWM:\t%8d kB\n", s.vmRSSKB)
	fmt.Fprintf(&b, "VmRSS:\t%8d kB\n", s.vmRSSKB)
	b.WriteString("VmData:\t    1864 kB\nVmStk:\t     132 kB\nVmExe:\t     944 kB\nVmSwap:\t       0 kB\n")
	fmt.Fprintf(&b, "Threads:\t%d\n", s.threads)
	b.WriteString("SigQ:\t0/127816\nCapInh:\t0000000000000000\n")
	return b.String()
}
