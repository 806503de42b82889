package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("detection queue full")
	ErrClosed = errors.New("detection queue closed")
)
