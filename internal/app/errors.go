package service

import "errors"

var (
	// ErrNotStarted is returned by detection calls before Start or after Stop.
	ErrNotStarted = errors.New("service not started")

	// ErrBackpressure is returned when the detection queue is full.
	ErrBackpressure = errors.New("detection queue full")

	// ErrDetector is returned when the landmark detector fails.
	ErrDetector = errors.New("landmark detector failed")

	// ErrDetectTimeout is returned when no detection result arrives in time.
	ErrDetectTimeout = errors.New("gesture detection timed out")

	// ErrEmptyImage is returned when an uploaded frame has no bytes.
	ErrEmptyImage = errors.New("empty image")
)
