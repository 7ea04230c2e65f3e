// Package proc reads per-process resource state from a Linux proc
// filesystem: identity, the rlimit table, memory and thread usage, open file
// descriptor counts, and a parent/child snapshot of the whole process table.
// It feeds the limit auditing in pkg/audit but has no opinion on thresholds.
//
// Overview
//
//   - FS is the only entry point. NewFS() reads the canonical /proc;
//     NewFSAt(dir) reads any directory laid out like one, which is how the
//     tests run against crafted fixture trees. Every reader is a pure
//     function of (pid, mount contents); the package holds no mutable state.
//
//   - Per-pid readers:
//     Identity(pid)    -> comm + cmdline
//     Limits(pid)      -> full rlimit table, soft/hard pairs
//     Status(pid)      -> ppid, uids, VmSize/VmRSS/VmLck, thread count
//     CountOpenFDs(pid)-> entry count of the fd directory
//     Gather(pid)      -> all of the above assembled into a Record
//
//   - Table-wide readers:
//     AllPids()        -> numeric entries under the mount, ascending
//     Tree()           -> parent/child snapshot; Descendants(root) walks it
//     PidsOfUID(uid)   -> pids owned (effective uid) by one user
//
// Reading model
//
// The process table is advisory: any pid can exit between enumeration and
// read, and an unprivileged caller cannot open every descriptor. The package
// therefore distinguishes two failure classes:
//
//   - Fatal for one record: comm, limits or status unreadable. Gather
//     returns an error wrapping ErrIdentityUnreadable, ErrLimitsUnreadable
//     or ErrStatusUnreadable; errors.Is works through the pid context.
//     A failed pid never affects any other pid's record.
//
//   - Silently degraded: an unreadable fd directory counts as 0, a missing
//     cmdline or Vm* line stays empty/0, a malformed limit bound becomes
//     Unknown. These are absent values, not errors.
//
// Limit representation
//
// One bound of a limit is exactly one of Concrete(v), Unlimited, or Unknown
// (the zero value). "unlimited" is never collapsed to a number in the data
// model, and a bound that failed to parse is never reported as 0: rlimits
// legitimately take the value 0 ("Max core file size" commonly), so 0 must
// always mean a configured bound.
//
// Process tree
//
// Tree() reads each pid's PPid once and never re-reads; the snapshot is
// immutable. Descendants carries a visited set, so a stale parent link
// produced by pid reuse (including a pid claiming to be its own ancestor)
// terminates the walk instead of looping.
//
// Permissions
//
// Everything here is read-only. Without privileges the fd directories of
// other users' processes are unreadable and count as 0; all limit and
// status reads work on any visible pid.
//
// Package import path: github.com/plafond/plafond/pkg/system/proc
package proc
