//go:build linux

package audit

import "github.com/plafond/plafond/pkg/system/proc"

// Evaluation carries one severity per audited dimension of a process.
type Evaluation struct {
	FDs     Severity `json:"fds"`
	Memory  Severity `json:"memory"`
	Threads Severity `json:"threads"`
}

// Worst returns the most severe of the three dimensions.
func (e Evaluation) Worst() Severity {
	worst := e.FDs
	if e.Memory.rank() > worst.rank() {
		worst = e.Memory
	}
	if e.Threads.rank() > worst.rank() {
		worst = e.Threads
	}
	return worst
}

// Evaluate classifies every dimension of a record against its hard limit:
// open fds against "Max open files", virtual size against "Max address
// space", thread count against "Max processes". One uniform rule, no
// per-dimension casing.
func Evaluate(rec *proc.Record, warnRatio, critRatio float64) Evaluation {
	return Evaluation{
		FDs:     classify(rec.OpenFDs, rec.FDLimit.Hard, warnRatio, critRatio),
		Memory:  classify(uint64(rec.VMSize), rec.MemLimit.Hard, warnRatio, critRatio),
		Threads: classify(rec.Threads, rec.ThreadLimit.Hard, warnRatio, critRatio),
	}
}

// classify is the rule: an Unknown bound cannot be judged, an Unlimited one
// cannot be approached, a bound of 0 means any usage sits at the cap, and a
// concrete bound compares by usage/limit ratio with inclusive boundaries.
func classify(usage uint64, hard proc.Limit, warnRatio, critRatio float64) Severity {
	if hard.IsUnknown() {
		return Unknown
	}
	if hard.IsUnlimited() {
		return OK
	}
	limit, _ := hard.Value()
	if limit == 0 {
		return Critical
	}
	ratio := float64(usage) / float64(limit)
	switch {
	case ratio >= critRatio:
		return Critical
	case ratio >= warnRatio:
		return Warning
	default:
		return OK
	}
}
