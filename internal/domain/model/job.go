package model

import "time"

// DetectionJob is one uploaded frame waiting for landmark detection.
type DetectionJob struct {
	ID       string
	Image    []byte
	Enqueued time.Time
	// Result receives exactly one DetectionResult. It must be buffered so
	// a worker never blocks on a caller that stopped waiting.
	Result chan DetectionResult
}

// NewDetectionJob builds a job with a buffered result channel.
func NewDetectionJob(id string, image []byte) DetectionJob {
	return DetectionJob{
		ID:       id,
		Image:    image,
		Enqueued: time.Now(),
		Result:   make(chan DetectionResult, 1),
	}
}

// DetectionResult is the outcome of a DetectionJob.
type DetectionResult struct {
	JobID        string
	Signals      Signals
	FaceDetected bool
	Err          error
}
