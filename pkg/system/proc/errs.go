package proc

import "errors"

var (
	// ErrIdentityUnreadable indicates that /proc/<pid>/comm could not be read,
	// usually because the process exited or is not visible to the caller.
	ErrIdentityUnreadable = errors.New("proc: identity unreadable")

	// ErrLimitsUnreadable indicates that /proc/<pid>/limits could not be read.
	ErrLimitsUnreadable = errors.New("proc: limits unreadable")

	// ErrStatusUnreadable indicates that /proc/<pid>/status could not be read.
	ErrStatusUnreadable = errors.New("proc: status unreadable")

	// ErrTargetNotFound indicates that a requested root pid was absent from
	// the enumeration snapshot.
	ErrTargetNotFound = errors.New("proc: target not found")
)
