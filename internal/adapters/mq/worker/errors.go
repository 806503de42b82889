package worker

import "errors"

// ErrDetectTimeout marks a detection that ran past its deadline.
var ErrDetectTimeout = errors.New("detection timed out")
