package audit

import "errors"

// ErrNoPIDs is returned when an inspection is requested with no targets.
var ErrNoPIDs = errors.New("audit: no pids to inspect")
