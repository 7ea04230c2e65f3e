// Package users resolves a user selector, either a numeric uid or a login
// name, to the uid processes are matched against.
package users

import (
	"os/user"
	"strconv"

	"github.com/pkg/errors"
)

// Resolve maps a selector string to a uid. An all-digit selector is taken as
// a uid verbatim, without a passwd lookup, so auditing a uid that has no
// account entry (containers, leftover daemons) still works. Anything else is
// looked up as a login name and fails if the name is unknown.
func Resolve(s string) (uint32, error) {
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v), nil
	}
	u, err := user.Lookup(s)
	if err != nil {
		return 0, errors.Wrapf(err, "users: resolve %q", s)
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "users: non-numeric uid %q for %q", u.Uid, s)
	}
	return uint32(uid), nil
}
