package progress

import "errors"

// Sentinel errors for tracker construction and misuse.
var (
	ErrInvalidTiers      = errors.New("invalid tier configuration")
	ErrContractViolation = errors.New("progress contract violation")
)
