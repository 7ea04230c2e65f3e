//go:build linux

package audit

import "github.com/plafond/plafond/pkg/system/proc"

// Entry is the outcome for one requested pid: either a gathered record with
// its evaluation, or the error that prevented the gather. Exactly one of
// Record and Err is set; a failed entry keeps the zero (all-Unknown)
// evaluation.
type Entry struct {
	PID    int
	Record *proc.Record
	Err    error
	Eval   Evaluation
}

// Failed reports whether the pid could not be gathered.
func (e Entry) Failed() bool { return e.Err != nil }

// Report is one inspection's output, one entry per requested pid, ordered
// by ascending pid. Reports are built fresh per inspection and never
// persisted.
type Report struct {
	Entries []Entry
}

// Counts tallies entries by worst severity. Failed entries land under
// Unknown.
func (r *Report) Counts() map[Severity]int {
	counts := make(map[Severity]int, 4)
	for _, e := range r.Entries {
		counts[e.Eval.Worst()]++
	}
	return counts
}

// Worst returns the most severe classification in the report.
func (r *Report) Worst() Severity {
	worst := OK
	for _, e := range r.Entries {
		if w := e.Eval.Worst(); w.rank() > worst.rank() {
			worst = w
		}
	}
	return worst
}
