//go:build linux

package proc

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Names of the limit lines the auditor consumes directly, exactly as the
// kernel spells them.
const (
	NameOpenFiles    = "Max open files"
	NameAddressSpace = "Max address space"
	NameProcesses    = "Max processes"
)

// Limit names contain single spaces and the Units column may be empty, so
// columns are separated by runs of two or more spaces.
var limitsDelim = regexp.MustCompile("  +")

// Limits is the parsed /proc/<pid>/limits table.
type Limits struct {
	// Table holds every limit line keyed by its kernel name, values in the
	// limit's native units.
	Table map[string]Rlimit

	// The pairs consumed by the auditor, pulled out of Table by name. A pair
	// whose line is absent stays Unknown.
	OpenFiles    Rlimit
	AddressSpace Rlimit
	Processes    Rlimit
}

// Limits parses /proc/<pid>/limits. A malformed token degrades that one
// bound to Unknown and a short line is skipped; only an unreadable file is
// an error.
func (fs FS) Limits(pid int) (Limits, error) {
	f, err := os.Open(fs.path(pid, "limits"))
	if err != nil {
		return Limits{}, errors.Wrapf(ErrLimitsUnreadable, "pid %d: %v", pid, err)
	}
	defer func() {
		_ = f.Close()
	}()

	table := make(map[string]Rlimit)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t")
		// Skip the header line.
		if line == "" || strings.HasPrefix(line, "Limit") {
			continue
		}
		fields := limitsDelim.Split(line, 4)
		if len(fields) < 3 {
			continue
		}
		table[fields[0]] = Rlimit{
			Soft: parseLimit(fields[1]),
			Hard: parseLimit(fields[2]),
		}
	}
	if err := sc.Err(); err != nil {
		return Limits{}, errors.Wrapf(ErrLimitsUnreadable, "pid %d: %v", pid, err)
	}

	return Limits{
		Table:        table,
		OpenFiles:    table[NameOpenFiles],
		AddressSpace: table[NameAddressSpace],
		Processes:    table[NameProcesses],
	}, nil
}

func parseLimit(token string) Limit {
	if token == "unlimited" {
		return Unlimited
	}
	v, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return Unknown
	}
	return Concrete(v)
}
