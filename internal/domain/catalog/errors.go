package catalog

import "errors"

// Sentinel errors returned by catalog construction.
var (
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrUnknownSlot    = errors.New("unknown slot")
)
