// Package worker runs detection jobs: landmark detection followed by
// gesture classification.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/heist/internal/adapters/detector"
	"github.com/okian/heist/internal/adapters/mq/queue"
	"github.com/okian/heist/internal/domain/gesture"
	"github.com/okian/heist/internal/domain/landmark"
	"github.com/okian/heist/internal/domain/model"
	"github.com/okian/heist/pkg/logger"
	"github.com/okian/heist/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultDetectTimeout = 5 * time.Second
	poolShutdownTimeout  = 30 * time.Second
)

// Classifier turns landmarks into signals.
type Classifier interface {
	Classify(set landmark.Set) model.Signals
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes detection jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called
	// or the queue is closed.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker owns one detector.Source; sources are not shared.
type InMemoryWorker struct {
	queue         Queue
	source        detector.Source
	classifier    Classifier
	name          string
	detectTimeout time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, source detector.Source, classifier Classifier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:         q,
		source:        source,
		classifier:    classifier,
		name:          "worker",
		detectTimeout: defaultDetectTimeout,
		shutdown:      make(chan struct{}),
		done:          make(chan struct{}),
		logger:        logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.classifier == nil {
		w.classifier = gesture.Default()
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// process runs one job and always delivers exactly one result.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) { //nolint:gocritic // hugeParam: jobs travel by value
	res := w.detect(ctx, job)
	select {
	case job.Result <- res:
	default:
		w.logger.Warn(ctx, "result dropped", logger.String("job_id", job.ID))
	}
}

func (w *InMemoryWorker) detect(ctx context.Context, job queue.Job) model.DetectionResult { //nolint:gocritic // hugeParam: jobs travel by value
	res := model.DetectionResult{JobID: job.ID, Signals: model.NeutralSignals()}

	dctx, cancel := context.WithTimeout(ctx, w.detectTimeout)
	defer cancel()

	start := time.Now()
	set, err := w.source.Detect(dctx, job.Image)
	metrics.RecordDetectionLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordDetectionError()
		w.logger.Error(ctx, "landmark detection failed",
			logger.String("job_id", job.ID),
			logger.Error(err),
		)
		res.Err = fmt.Errorf("detect job %s: %w", job.ID, err)
		if errors.Is(err, context.DeadlineExceeded) {
			res.Err = fmt.Errorf("detect job %s: %w: %w", job.ID, ErrDetectTimeout, err)
		}
		return res
	}

	res.FaceDetected = set.Present()
	metrics.RecordFaceDetected(res.FaceDetected)
	if !res.FaceDetected {
		return res
	}

	w.logger.Debug(ctx, "landmarks measured",
		logger.String("job_id", job.ID),
		logger.Any("measurements", gesture.Measure(set)),
	)
	res.Signals = w.classifier.Classify(set)
	for _, s := range res.Signals.Active() {
		metrics.RecordGesture(s)
	}
	return res
}

// Pool manages one worker per detector source.
type Pool struct {
	workers []*InMemoryWorker
	sources []detector.Source
	queue   Queue

	logger logger.Logger
}

// NewPool builds workerCount workers, each with its own source from
// factory. A count below 1 uses runtime.NumCPU.
func NewPool(workerCount int, q Queue, factory detector.Factory, classifier Classifier, opts ...Option) (*Pool, error) {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, 0, workerCount),
		sources: make([]detector.Source, 0, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		src, err := factory()
		if err != nil {
			p.closeSources(context.Background())
			return nil, fmt.Errorf("build detector for worker %d: %w", i, err)
		}
		p.sources = append(p.sources, src)
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers = append(p.workers, NewInMemoryWorker(q, src, classifier, workerOpts...))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, waits for workers to drain it and closes the
// sources.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}

	p.closeSources(ctx)
	metrics.UpdateWorkerCount(0)
	return nil
}

func (p *Pool) closeSources(ctx context.Context) {
	for i, src := range p.sources {
		if err := src.Close(); err != nil {
			p.logger.Warn(ctx, "error closing detector", logger.Int("worker_id", i), logger.Error(err))
		}
	}
}
