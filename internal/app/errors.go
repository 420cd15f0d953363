package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrUnknownSlot  = errors.New("unknown slot")
	ErrBackpressure = errors.New("mailbox full")
)
