package round

import "errors"

// Sentinel errors for session construction.
var (
	ErrInvalidSession = errors.New("invalid session")
	ErrMailboxFull    = errors.New("session mailbox rejected event")
)
