package motion

import "errors"

var (
	// ErrInvalidTheme rejects motion creation against an unknown theme.
	ErrInvalidTheme = errors.New("invalid motion theme")
	// ErrThemeNotFound signals theme absence on direct lookup.
	ErrThemeNotFound = errors.New("motion theme not found")
	// ErrMotionNotFound signals motion absence on direct lookup.
	ErrMotionNotFound = errors.New("motion not found")
	// ErrDuplicateVote means a vote token already exists for the
	// (motion, citizen) pair.
	ErrDuplicateVote = errors.New("citizen has already voted on this motion")
	// ErrPersistence means a write the gateway accepted affected zero
	// rows, or the gateway rejected it outright.
	ErrPersistence = errors.New("persistence failure")
	// ErrTransaction means begin or commit failed; the vote was not
	// recorded and the caller may retry.
	ErrTransaction = errors.New("transaction failure")
	// ErrRollback means a rollback itself failed. Consistency can no
	// longer be guaranteed; callers must treat this as fatal.
	ErrRollback = errors.New("rollback failure")
)
