//go:build linux

// Package sysinfo collects the host-wide figures shown in the report header.
package sysinfo

import (
	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"

	"github.com/plafond/plafond/pkg/types"
)

// Summary is a best-effort snapshot of the machine the audit runs on.
type Summary struct {
	Hostname    string
	Kernel      string
	CPUs        int
	TotalMemory types.Bytes
	Load1       float64
	Load5       float64
	Load15      float64
}

// Collect gathers the summary. Probes that fail leave their fields zero;
// the header is decoration, never audit input, so Collect itself cannot
// fail.
func Collect() Summary {
	var s Summary

	if info, err := host.Info(); err == nil {
		s.Hostname = info.Hostname
		s.Kernel = info.KernelVersion
	}
	if n, err := cpu.Counts(true); err == nil {
		s.CPUs = n
	}
	if fs, err := procfs.NewDefaultFS(); err == nil {
		if mi, err := fs.Meminfo(); err == nil && mi.MemTotal != nil {
			s.TotalMemory = types.FromKB(*mi.MemTotal)
		}
		if la, err := fs.LoadAvg(); err == nil {
			s.Load1, s.Load5, s.Load15 = la.Load1, la.Load5, la.Load15
		}
	}
	return s
}
