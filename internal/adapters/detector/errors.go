package detector

import "errors"

// Sentinel kinds for detector errors.
var (
	ErrNoCommand     = errors.New("detector command not configured")
	ErrEmptyImage    = errors.New("empty image")
	ErrImageTooLarge = errors.New("image too large")
	ErrBadResponse   = errors.New("malformed detector response")
	ErrClosed        = errors.New("detector closed")
)
