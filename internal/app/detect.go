package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/heist/internal/adapters/mq/queue"
	"github.com/okian/heist/internal/adapters/mq/worker"
	"github.com/okian/heist/internal/domain/collision"
	"github.com/okian/heist/internal/domain/model"
	"github.com/okian/heist/internal/domain/types"
	"github.com/okian/heist/pkg/logger"
	"github.com/okian/heist/pkg/metrics"
)

// DetectGestures queues image for landmark detection and waits for the
// classified signals. A frame without a face yields neutral signals and no
// error.
func (s *Service) DetectGestures(ctx context.Context, image []byte) (types.GestureResponse, error) {
	if len(image) == 0 {
		return types.GestureResponse{}, ErrEmptyImage
	}

	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()
	if !started {
		return types.GestureResponse{}, ErrNotStarted
	}

	job := model.NewDetectionJob(uuid.NewString(), image)
	if err := q.Enqueue(ctx, job); err != nil {
		switch {
		case errors.Is(err, queue.ErrFull):
			s.logger.Warn(ctx, "detection queue full", logger.Int("capacity", q.Capacity()))
			return types.GestureResponse{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		case errors.Is(err, queue.ErrClosed):
			return types.GestureResponse{}, fmt.Errorf("%w: %w", ErrNotStarted, err)
		default:
			return types.GestureResponse{}, fmt.Errorf("enqueue detection: %w", err)
		}
	}
	metrics.UpdateQueueSize(q.Len(ctx))

	wctx, cancel := context.WithTimeout(ctx, 2*s.detectTimeout)
	defer cancel()

	select {
	case res := <-job.Result:
		if res.Err != nil {
			if errors.Is(res.Err, worker.ErrDetectTimeout) {
				return types.GestureResponse{}, fmt.Errorf("%w: %w", ErrDetectTimeout, res.Err)
			}
			return types.GestureResponse{}, fmt.Errorf("%w: %w", ErrDetector, res.Err)
		}
		return types.GestureResponse{
			Gestures:     res.Signals,
			FaceDetected: res.FaceDetected,
			Action:       collision.ActionFor(res.Signals),
		}, nil
	case <-wctx.Done():
		if err := ctx.Err(); err != nil {
			return types.GestureResponse{}, fmt.Errorf("wait for detection: %w", err)
		}
		return types.GestureResponse{}, fmt.Errorf("%w: job %s", ErrDetectTimeout, job.ID)
	}
}
