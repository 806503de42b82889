// Package service wires the game components together and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/heist/internal/adapters/detector"
	"github.com/okian/heist/internal/adapters/mq/queue"
	"github.com/okian/heist/internal/adapters/mq/worker"
	"github.com/okian/heist/internal/adapters/repository"
	"github.com/okian/heist/internal/domain/collision"
	"github.com/okian/heist/internal/domain/dedupe"
	"github.com/okian/heist/internal/domain/gesture"
	"github.com/okian/heist/internal/domain/level"
	"github.com/okian/heist/internal/domain/scoring"
	"github.com/okian/heist/pkg/logger"
	"github.com/okian/heist/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount   = 2
	defaultQueueSize     = 64
	defaultDedupeSize    = 10_000
	defaultDetectTimeout = 5 * time.Second

	// unknownObstacle is the metrics label for obstacle names outside the
	// rule table and the catalog.
	unknownObstacle = "unknown"
)

// Service owns the scoreboard, the level catalog and the detection pool.
// Game operations work as soon as New returns; gesture detection needs
// Start.
type Service struct {
	mu sync.RWMutex

	// Core components
	scoreboard      repository.Store
	deduper         dedupe.Deduper
	catalog         *level.Catalog
	generator       *level.Generator
	scorer          scoring.Scorer
	classifier      worker.Classifier
	detectorFactory detector.Factory

	// knownObstacles bounds the obstacle label on collision metrics.
	knownObstacles map[string]struct{}

	// Detection pipeline, built by Start
	queue  queue.Queue
	pool   *worker.Pool
	cancel context.CancelFunc

	// Configuration
	workerCount        int
	queueSize          int
	dedupeSize         int
	scoreboardCapacity int
	detectTimeout      time.Duration

	started bool

	logger logger.Logger
}

// New constructs a Service. The logger package must be initialized unless
// WithLogger is given.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        defaultWorkerCount,
		queueSize:          defaultQueueSize,
		dedupeSize:         defaultDedupeSize,
		scoreboardCapacity: repository.DefaultCapacity,
		detectTimeout:      defaultDetectTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.scoreboard == nil {
		s.scoreboard = repository.NewScoreBoard(repository.WithCapacity(s.scoreboardCapacity))
	}
	if s.catalog == nil {
		s.catalog = level.DefaultCatalog()
	}
	if s.generator == nil {
		s.generator = level.NewGenerator(nil)
	}
	if s.classifier == nil {
		s.classifier = gesture.Default()
	}
	if s.detectorFactory == nil {
		s.detectorFactory = detector.NewFactory(nil)
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.scorer = scoring.NewRunScorer()
	s.knownObstacles = knownObstacles(s.catalog)

	return s
}

func knownObstacles(c *level.Catalog) map[string]struct{} {
	known := make(map[string]struct{})
	for obstacle := range collision.Rules() {
		known[obstacle] = struct{}{}
	}
	for _, l := range c.Levels() {
		for _, obstacle := range l.ObstacleTypes {
			known[obstacle] = struct{}{}
		}
	}
	return known
}

// obstacleLabel folds client-supplied obstacle names that the game does not
// know into a single metrics label.
func (s *Service) obstacleLabel(obstacle string) string {
	if _, ok := s.knownObstacles[obstacle]; ok {
		return obstacle
	}
	return unknownObstacle
}

// Start builds the detection queue and worker pool. Workers outlive ctx and
// run until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting heist service...")

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool, err := worker.NewPool(s.workerCount, q, s.detectorFactory, s.classifier,
		worker.WithDetectTimeout(s.detectTimeout),
	)
	if err != nil {
		_ = q.Close()
		return fmt.Errorf("start worker pool: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	pool.Start(runCtx)

	s.queue = q
	s.pool = pool
	s.cancel = cancel
	s.started = true
	metrics.UpdateQueueCapacity(q.Capacity())

	s.logger.Info(ctx, "heist service started",
		logger.Int("workers", pool.Size()),
		logger.Int("queueSize", q.Capacity()),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("levels", s.catalog.Len()),
	)
	return nil
}

// Stop drains the detection queue and stops the workers. Calling Stop on a
// stopped service is a no-op.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping heist service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()

	s.started = false
	s.pool = nil
	s.queue = nil
	s.cancel = nil

	if err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "heist service stopped")
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	scores := s.scoreboard.Count(ctx)
	stats := map[string]any{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"dedupeSize":         s.dedupeSize,
		"scoreboardCapacity": s.scoreboardCapacity,
		"levels":             s.catalog.Len(),
		"highScores":         scores,
		"submissionIds":      s.deduper.Size(),
	}
	metrics.UpdateScoreboardSize(scores)

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["workers"] = s.pool.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
