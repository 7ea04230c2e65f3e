//go:build linux

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/plafond/plafond/pkg/audit"
	"github.com/plafond/plafond/pkg/config"
	"github.com/plafond/plafond/pkg/system/proc"
	"github.com/plafond/plafond/pkg/system/sysinfo"
	"github.com/plafond/plafond/pkg/system/users"
	"github.com/plafond/plafond/pkg/types"
)

type opts struct {
	// target selector (exactly one)
	user  string
	pid   int
	ptree int

	// thresholds & gather pool
	warnRatio float64
	critRatio float64
	workers   int

	// io
	configPath string
	procMount  string
	jsonOut    bool
	quiet      bool
}

// entryRow is the JSON shape of one report entry.
type entryRow struct {
	PID        int               `json:"pid"`
	Status     audit.Severity    `json:"status"`
	Error      string            `json:"error,omitempty"`
	Record     *proc.Record      `json:"record,omitempty"`
	Evaluation *audit.Evaluation `json:"evaluation,omitempty"`
}

type jsonReport struct {
	GeneratedAt time.Time              `json:"generated_at"`
	ProcMount   string                 `json:"proc_mount"`
	Worst       audit.Severity         `json:"worst"`
	Entries     []entryRow             `json:"entries"`
	Counts      map[audit.Severity]int `json:"counts"`
}

func main() {
	log := initLogger()

	if err := newRootCommand().ExecuteContext(log.WithContext(context.Background())); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}

// newRootCommand builds the plafond command and its flag set. Tests execute
// the returned command in-process against a fixture mount.
func newRootCommand() *cobra.Command {
	var o opts

	root := &cobra.Command{
		Use:   "plafond",
		Short: "Audit processes against their resource limits",
		Long: `Plafond audits running processes against their configured resource limits
(rlimits). Given a user, a single process, or a process tree, it gathers open
file descriptors, memory usage and thread counts from the proc filesystem,
compares them with the matching hard limits, and flags processes that are
close to or over a cap. It only ever reads: no process is signaled, no limit
is changed.

Examples:
  plafond -p 12345
  plafond -P $(pidof -s nginx)
  plafond -u www-data --json
  plafond -u 1000 --warn-ratio 0.6 --crit-ratio 0.85 --workers 8`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o)
		},
	}

	root.Flags().StringVarP(&o.user, "user", "u", "", "audit every process of a user (login name or uid)")
	root.Flags().IntVarP(&o.pid, "pid", "p", 0, "audit a single process")
	root.Flags().IntVarP(&o.ptree, "ptree", "P", 0, "audit a process and all its descendants")
	root.MarkFlagsMutuallyExclusive("user", "pid", "ptree")
	root.MarkFlagsOneRequired("user", "pid", "ptree")

	root.Flags().Float64Var(&o.warnRatio, "warn-ratio", audit.DefaultWarnRatio, "usage/limit ratio that flags a warning")
	root.Flags().Float64Var(&o.critRatio, "crit-ratio", audit.DefaultCritRatio, "usage/limit ratio that flags a critical")
	root.Flags().IntVar(&o.workers, "workers", audit.DefaultWorkers, "parallel gather workers")
	root.Flags().StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	root.Flags().StringVar(&o.procMount, "proc", proc.DefaultMount, "proc filesystem mount to read")
	root.Flags().BoolVar(&o.jsonOut, "json", false, "emit the report as JSON")
	root.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "log warnings and errors only")

	return root
}

func run(cmd *cobra.Command, o opts) error {
	ctx := cmd.Context()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	applyLogLevel(cfg.Log.Level, o.quiet)

	// Explicit flags beat the config file; both beat built-in defaults.
	if !cmd.Flags().Changed("warn-ratio") {
		o.warnRatio = cfg.Thresholds.Warning
	}
	if !cmd.Flags().Changed("crit-ratio") {
		o.critRatio = cfg.Thresholds.Critical
	}
	if !cmd.Flags().Changed("workers") {
		o.workers = cfg.Workers
	}

	fs := proc.NewFSAt(o.procMount)
	if cmd.Flags().Changed("proc") && !fs.Verify() {
		zerolog.Ctx(ctx).Warn().Str("mount", fs.Mount()).Msg("mount is not listed as a proc filesystem")
	}

	auditor := audit.New(fs, &audit.Config{
		WarnRatio: o.warnRatio,
		CritRatio: o.critRatio,
		Workers:   o.workers,
	})

	var rep *audit.Report
	switch {
	case cmd.Flags().Changed("user"):
		uid, err := users.Resolve(o.user)
		if err != nil {
			return err
		}
		pids, err := fs.PidsOfUID(uid)
		if err != nil {
			return err
		}
		if len(pids) == 0 {
			return errors.Errorf("no processes owned by uid %d", uid)
		}
		zerolog.Ctx(ctx).Debug().Uint32("uid", uid).Int("pids", len(pids)).Msg("resolved user target")
		rep, err = auditor.InspectPIDs(ctx, pids)
		if err != nil {
			return err
		}
	case cmd.Flags().Changed("ptree"):
		if o.ptree <= 0 {
			return errors.New("ptree requires a positive pid")
		}
		rep, err = auditor.InspectTree(ctx, o.ptree)
		if err != nil {
			return err
		}
	default:
		if o.pid <= 0 {
			return errors.New("pid must be positive")
		}
		rep, err = auditor.InspectPIDs(ctx, []int{o.pid})
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if o.jsonOut {
		return writeJSON(out, rep, fs.Mount())
	}

	printHeader(out, sysinfo.Collect())
	renderReport(out, rep)
	return nil
}

func initLogger() *zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	logger := zerolog.New(consoleWriter).
		With().
		Timestamp().
		Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.DefaultContextLogger = &logger
	return &logger
}

func applyLogLevel(level string, quiet bool) {
	if quiet {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		return
	}
	if lvl, err := zerolog.ParseLevel(level); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
}

func printHeader(w io.Writer, s sysinfo.Summary) {
	fmt.Fprintf(w, _console,
		s.Hostname, s.Kernel, s.CPUs, s.TotalMemory.Humanized(),
		s.Load1, s.Load5, s.Load15,
		time.Now().Format("2006-01-02 15:04:05"),
	)
}

func renderReport(w io.Writer, rep *audit.Report) {
	tw := newTable(w)
	printTableHeader(tw)
	for _, e := range rep.Entries {
		printEntryRow(tw, e)
	}
	_ = tw.Flush()

	counts := rep.Counts()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "audited %d processes: %d critical, %d warning, %d ok, %d unknown (worst: %s)\n",
		len(rep.Entries),
		counts[audit.Critical], counts[audit.Warning], counts[audit.OK], counts[audit.Unknown],
		rep.Worst())
}

func writeJSON(w io.Writer, rep *audit.Report, mount string) error {
	doc := jsonReport{
		GeneratedAt: time.Now(),
		ProcMount:   mount,
		Worst:       rep.Worst(),
		Entries:     make([]entryRow, 0, len(rep.Entries)),
		Counts:      rep.Counts(),
	}
	for _, e := range rep.Entries {
		row := entryRow{PID: e.PID, Status: e.Eval.Worst()}
		if e.Failed() {
			row.Error = e.Err.Error()
		} else {
			row.Record = e.Record
			ev := e.Eval
			row.Evaluation = &ev
		}
		doc.Entries = append(doc.Entries, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printTableHeader(tw *tabwriter.Writer) {
	fmt.Fprintln(tw, "PID\tNAME\tFDS\tFD-LIMIT\tMEMORY\tMEM-LIMIT\tTHREADS\tTHR-LIMIT\tSTATUS")
	fmt.Fprintln(tw, "---\t----\t---\t--------\t------\t---------\t-------\t---------\t------")
}

func printEntryRow(tw *tabwriter.Writer, e audit.Entry) {
	if e.Failed() {
		fmt.Fprintf(tw, "%d\t-\t-\t-\t-\t-\t-\t-\tunknown (%s)\n", e.PID, errors.Cause(e.Err))
		return
	}
	r := e.Record
	fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
		r.PID, r.Name,
		r.OpenFDs, r.FDLimit.Hard,
		r.VMSize.Humanized(), memLimitCell(r.MemLimit.Hard),
		r.Threads, r.ThreadLimit.Hard,
		e.Eval.Worst(),
	)
}

// memLimitCell humanizes a concrete byte bound; unlimited/unknown render as
// words.
func memLimitCell(l proc.Limit) string {
	if v, ok := l.Value(); ok {
		return types.Bytes(v).Humanized()
	}
	return l.String()
}

const _console = `Plafond - Process Resource Limit Auditor

       Host: %s
       Kernel: %s
       CPUs: %d
       Mem: %s
       Load: %.2f %.2f %.2f

Limit audit as of %s:

`
