package level

import "errors"

var (
	// ErrEmptyCatalog is returned when a catalog is built without levels.
	ErrEmptyCatalog = errors.New("level catalog is empty")
	// ErrInvalidLevel is returned when a level definition fails validation.
	ErrInvalidLevel = errors.New("invalid level")
)
