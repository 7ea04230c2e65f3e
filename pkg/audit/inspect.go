//go:build linux

package audit

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/plafond/plafond/pkg/system/proc"
)

// Auditor inspects processes against their configured resource limits. It
// only ever reads; inspecting a process cannot affect it.
type Auditor struct {
	fs  proc.FS
	cfg *Config
}

// New creates an Auditor over fs. Positive fields in cfg override defaults;
// CritRatio is kept >= WarnRatio so the bands cannot invert.
func New(fs proc.FS, cfg *Config) *Auditor {
	base := _defaultConfig()

	if cfg == nil {
		return &Auditor{fs: fs, cfg: base}
	}

	merged := *base
	if cfg.WarnRatio > 0 {
		merged.WarnRatio = cfg.WarnRatio
	}
	if cfg.CritRatio > 0 {
		merged.CritRatio = cfg.CritRatio
	}
	if merged.CritRatio < merged.WarnRatio {
		merged.CritRatio = merged.WarnRatio
	}
	if cfg.Workers > 0 {
		merged.Workers = cfg.Workers
	}
	return &Auditor{fs: fs, cfg: &merged}
}

// InspectPIDs audits an explicit pid list. The list is deduplicated and the
// report ordered by ascending pid. A pid that cannot be gathered produces a
// failure entry, never a batch failure; an empty list is ErrNoPIDs.
func (a *Auditor) InspectPIDs(ctx context.Context, pids []int) (*Report, error) {
	if len(pids) == 0 {
		return nil, ErrNoPIDs
	}
	sorted := make([]int, len(pids))
	copy(sorted, pids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return a.gatherAll(ctx, sorted), nil
}

// InspectTree audits root and every process below it in one enumeration
// snapshot. A root absent from the snapshot fails the whole inspection;
// descendants that exit between the snapshot and the gather become failure
// entries like any other unreadable pid.
func (a *Auditor) InspectTree(ctx context.Context, root int) (*Report, error) {
	tree, err := a.fs.Tree()
	if err != nil {
		return nil, err
	}
	pids, err := tree.Descendants(root)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().
		Int("root", root).
		Int("pids", len(pids)).
		Int("snapshot", tree.Len()).
		Msg("resolved process tree")
	return a.gatherAll(ctx, pids), nil
}

// gatherAll reads every pid independently. With Workers > 1 the reads run on
// a bounded pool; each goroutine writes its pre-assigned slot, so the report
// order stays ascending regardless of scheduling.
func (a *Auditor) gatherAll(ctx context.Context, pids []int) *Report {
	entries := make([]Entry, len(pids))

	if a.cfg.Workers > 1 {
		sem := make(chan struct{}, a.cfg.Workers)
		var wg sync.WaitGroup
		for i, pid := range pids {
			wg.Add(1)
			sem <- struct{}{}
			go func(i, pid int) {
				defer func() {
					<-sem
					wg.Done()
				}()
				entries[i] = a.inspectOne(ctx, pid)
			}(i, pid)
		}
		wg.Wait()
	} else {
		for i, pid := range pids {
			entries[i] = a.inspectOne(ctx, pid)
		}
	}
	return &Report{Entries: entries}
}

func (a *Auditor) inspectOne(ctx context.Context, pid int) Entry {
	rec, err := a.fs.Gather(pid)
	if err != nil {
		// present=false means the pid exited mid-audit; true means it is
		// there but unreadable, usually a permission boundary.
		zerolog.Ctx(ctx).Debug().Err(err).
			Int("pid", pid).
			Bool("present", a.fs.Exists(pid)).
			Msg("gather failed")
		return Entry{PID: pid, Err: err}
	}
	return Entry{
		PID:    pid,
		Record: rec,
		Eval:   Evaluate(rec, a.cfg.WarnRatio, a.cfg.CritRatio),
	}
}
