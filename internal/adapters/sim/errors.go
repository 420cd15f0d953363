package sim

import "errors"

// Sentinel errors returned by the bot and the HTTP client.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrNoSlots          = errors.New("no slots to tap")
)
