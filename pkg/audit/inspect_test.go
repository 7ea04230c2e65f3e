//go:build linux

package audit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plafond/plafond/pkg/system/proc"
)

// seedProc writes one minimal but complete pid entry under root: 5 open
// fds, 2048 kB virtual, 2 threads, fd cap 1000.
func seedProc(t *testing.T, root string, pid, ppid int) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fd"), 0o755))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "fd", strconv.Itoa(i)), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comm"), []byte("worker\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte("/usr/bin/worker\x00"), 0o644))

	limits := "Limit                     Soft Limit           Hard Limit           Units     \n" +
		fmt.Sprintf("%-25s %-20s %-20s %-10s\n", "Max open files", "800", "1000", "files") +
		fmt.Sprintf("%-25s %-20s %-20s %-10s\n", "Max address space", "unlimited", "unlimited", "bytes") +
		fmt.Sprintf("%-25s %-20s %-20s %-10s\n", "Max processes", "4096", "4096", "processes")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "limits"), []byte(limits), 0o644))

	status := fmt.Sprintf(
		"Name:\tworker\nPid:\t%d\nPPid:\t%d\nUid:\t1000\t1000\t1000\t1000\nVmSize:\t    2048 kB\nVmRSS:\t    1024 kB\nVmLck:\t       0 kB\nThreads:\t2\n",
		pid, ppid)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0o644))
}

func TestNew_Defaults(t *testing.T) {
	a := New(proc.NewFS(), nil)
	assert.Equal(t, DefaultWarnRatio, a.cfg.WarnRatio)
	assert.Equal(t, DefaultCritRatio, a.cfg.CritRatio)
	assert.Equal(t, 1, a.cfg.Workers)
}

func TestNew_Overrides(t *testing.T) {
	a := New(proc.NewFS(), &Config{WarnRatio: 0.5, CritRatio: 0.8, Workers: 8})
	assert.Equal(t, 0.5, a.cfg.WarnRatio)
	assert.Equal(t, 0.8, a.cfg.CritRatio)
	assert.Equal(t, 8, a.cfg.Workers)
}

func TestNew_CritClampedToWarn(t *testing.T) {
	a := New(proc.NewFS(), &Config{WarnRatio: 0.8, CritRatio: 0.5})
	assert.Equal(t, 0.8, a.cfg.WarnRatio)
	assert.Equal(t, a.cfg.WarnRatio, a.cfg.CritRatio)
}

func TestNew_NonPositiveFieldsKeepDefaults(t *testing.T) {
	a := New(proc.NewFS(), &Config{WarnRatio: -1, CritRatio: 0, Workers: -4})
	assert.Equal(t, DefaultWarnRatio, a.cfg.WarnRatio)
	assert.Equal(t, DefaultCritRatio, a.cfg.CritRatio)
	assert.Equal(t, 1, a.cfg.Workers)
}

func TestInspectPIDs_EmptyInput(t *testing.T) {
	a := New(proc.NewFS(), nil)
	_, err := a.InspectPIDs(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPIDs)
}

func TestInspectPIDs_SortsAndDeduplicates(t *testing.T) {
	root := t.TempDir()
	seedProc(t, root, 30, 1)
	seedProc(t, root, 10, 1)
	seedProc(t, root, 20, 1)

	a := New(proc.NewFSAt(root), nil)
	rep, err := a.InspectPIDs(context.Background(), []int{30, 10, 20, 10, 30})
	require.NoError(t, err)
	require.Len(t, rep.Entries, 3)
	assert.Equal(t, 10, rep.Entries[0].PID)
	assert.Equal(t, 20, rep.Entries[1].PID)
	assert.Equal(t, 30, rep.Entries[2].PID)
}

func TestInspectPIDs_ExitedPidBecomesFailureEntry(t *testing.T) {
	root := t.TempDir()
	seedProc(t, root, 10, 1)
	seedProc(t, root, 30, 1)
	// pid 20 requested but gone: still one entry per requested pid.

	a := New(proc.NewFSAt(root), nil)
	rep, err := a.InspectPIDs(context.Background(), []int{10, 20, 30})
	require.NoError(t, err)
	require.Len(t, rep.Entries, 3)

	assert.False(t, rep.Entries[0].Failed())

	failed := rep.Entries[1]
	assert.True(t, failed.Failed())
	assert.ErrorIs(t, failed.Err, proc.ErrIdentityUnreadable)
	assert.Nil(t, failed.Record)
	assert.Equal(t, Unknown, failed.Eval.Worst())

	assert.False(t, rep.Entries[2].Failed())
}

func TestInspectPIDs_GatherFailureLogsPresence(t *testing.T) {
	root := t.TempDir()
	seedProc(t, root, 10, 1)
	// pid 20 never existed; pid 30 has an entry but nothing readable in it.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "30"), 0o755))

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())

	a := New(proc.NewFSAt(root), nil)
	rep, err := a.InspectPIDs(ctx, []int{10, 20, 30})
	require.NoError(t, err)
	require.Len(t, rep.Entries, 3)

	logs := buf.String()
	assert.Contains(t, logs, `"pid":20,"present":false`)
	assert.Contains(t, logs, `"pid":30,"present":true`)
	assert.NotContains(t, logs, `"pid":10`, "healthy gathers do not log")
}

func TestInspectPIDs_Idempotent(t *testing.T) {
	root := t.TempDir()
	seedProc(t, root, 10, 1)
	seedProc(t, root, 20, 1)

	a := New(proc.NewFSAt(root), nil)
	first, err := a.InspectPIDs(context.Background(), []int{10, 20})
	require.NoError(t, err)
	second, err := a.InspectPIDs(context.Background(), []int{10, 20})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInspectPIDs_EvaluationAttached(t *testing.T) {
	root := t.TempDir()
	seedProc(t, root, 10, 1)

	a := New(proc.NewFSAt(root), nil)
	rep, err := a.InspectPIDs(context.Background(), []int{10})
	require.NoError(t, err)
	require.Len(t, rep.Entries, 1)

	// 5 fds against a cap of 1000, unlimited memory, 2 threads of 4096.
	ev := rep.Entries[0].Eval
	assert.Equal(t, OK, ev.FDs)
	assert.Equal(t, OK, ev.Memory)
	assert.Equal(t, OK, ev.Threads)
}

func TestInspectPIDs_PoolMatchesSequential(t *testing.T) {
	root := t.TempDir()
	pids := make([]int, 0, 20)
	for pid := 100; pid < 120; pid++ {
		seedProc(t, root, pid, 1)
		pids = append(pids, pid)
	}

	seq, err := New(proc.NewFSAt(root), &Config{Workers: 1}).InspectPIDs(context.Background(), pids)
	require.NoError(t, err)
	par, err := New(proc.NewFSAt(root), &Config{Workers: 8}).InspectPIDs(context.Background(), pids)
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestInspectTree_GathersClosure(t *testing.T) {
	root := t.TempDir()
	seedProc(t, root, 1, 0)
	seedProc(t, root, 100, 1)
	seedProc(t, root, 101, 100)
	seedProc(t, root, 102, 101)
	seedProc(t, root, 200, 1)

	a := New(proc.NewFSAt(root), nil)
	rep, err := a.InspectTree(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, rep.Entries, 3)
	assert.Equal(t, 100, rep.Entries[0].PID)
	assert.Equal(t, 101, rep.Entries[1].PID)
	assert.Equal(t, 102, rep.Entries[2].PID)
}

func TestInspectTree_RootMissingIsFatal(t *testing.T) {
	root := t.TempDir()
	seedProc(t, root, 1, 0)

	a := New(proc.NewFSAt(root), nil)
	_, err := a.InspectTree(context.Background(), 4242)
	require.Error(t, err)
	assert.ErrorIs(t, err, proc.ErrTargetNotFound)
}

func TestInspectTree_SelfOnLiveProc(t *testing.T) {
	a := New(proc.NewFS(), nil)
	rep, err := a.InspectTree(context.Background(), os.Getpid())
	require.NoError(t, err)
	require.NotEmpty(t, rep.Entries)

	var found bool
	for _, e := range rep.Entries {
		if e.PID == os.Getpid() {
			found = true
			assert.False(t, e.Failed())
			assert.NotNil(t, e.Record)
		}
	}
	assert.True(t, found, "report must include the requested root")
}
