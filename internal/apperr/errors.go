package apperr

import "errors"

var (
	ErrSuspended  = errors.New("updates suspended")
	ErrLockHeld   = errors.New("lockfile found")
	ErrMissingKey = errors.New("missing configuration key")
)
