//go:build linux

package proc

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Identity returns the process name (the kernel comm value, truncated by the
// kernel to 15 bytes) and the command line with NUL separators replaced by
// spaces. comm is required: an unreadable comm fails the record. cmdline is
// best-effort; kernel threads and just-exited processes have an empty one.
func (fs FS) Identity(pid int) (name, cmdline string, err error) {
	b, e := os.ReadFile(fs.path(pid, "comm"))
	if e != nil {
		return "", "", errors.Wrapf(ErrIdentityUnreadable, "pid %d: %v", pid, e)
	}
	name = strings.TrimSpace(string(b))

	if raw, e := os.ReadFile(fs.path(pid, "cmdline")); e == nil {
		cmdline = strings.TrimSpace(strings.ReplaceAll(string(raw), "\x00", " "))
	}
	return name, cmdline, nil
}
