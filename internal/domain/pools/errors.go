package pools

import "errors"

// ErrUnknownSlot is returned when a slot not belonging to the catalog is released.
var ErrUnknownSlot = errors.New("slot not in catalog")
