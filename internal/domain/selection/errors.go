package selection

import "errors"

// Contract violations. Assign panics with errors wrapping these; they signal a
// tier configuration bug, never player behaviour.
var (
	ErrContractViolation = errors.New("selection contract violation")
	ErrPoolExhausted     = errors.New("selection pool exhausted")
)
