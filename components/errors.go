package components

import "errors"

// Configuration errors. Wrapped errors carry the offending name or value.
var (
	ErrUnknownSpecies   = errors.New("unknown species")
	ErrUnknownLandscape = errors.New("unknown landscape")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrInvalidParameter = errors.New("invalid parameter value")
)
