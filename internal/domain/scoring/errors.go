package scoring

import "errors"

var (
	// ErrNoObstacles is returned when a run has nothing to score.
	ErrNoObstacles = errors.New("run has no obstacles")
	// ErrTooManyActions is returned when more actions than obstacles are sent.
	ErrTooManyActions = errors.New("more actions than obstacles")
)
