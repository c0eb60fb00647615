package sync

import "errors"

// Command/coordinator failure taxonomy. All are returned to the caller
// synchronously; none are retried.
var (
	ErrGroupNotFound     = errors.New("sync group not found")
	ErrDisplayNotInGroup = errors.New("display is not a member of the group")
	ErrInvalidTransition = errors.New("command not legal from current state")
	ErrStaleCommand      = errors.New("command is older than the last accepted command")
)
