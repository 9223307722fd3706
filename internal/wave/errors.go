package wave

import "errors"

// Configuration errors returned by Config.Validate and New. Callers match
// them with errors.Is; the wrapped message names the offending value.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrOutOfBounds          = errors.New("coordinates out of bounds")
	ErrInvalidRegion        = errors.New("invalid source region")
)
