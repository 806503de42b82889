package service

import (
	"time"

	"github.com/okian/heist/internal/adapters/detector"
	"github.com/okian/heist/internal/adapters/mq/worker"
	"github.com/okian/heist/internal/adapters/repository"
	"github.com/okian/heist/internal/domain/level"
	"github.com/okian/heist/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of detection workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the detection queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission ids are remembered. Zero keeps
// every id.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithScoreboardCapacity sets how many high scores are kept.
func WithScoreboardCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.scoreboardCapacity = capacity
		}
	}
}

// WithScoreboard replaces the in-memory scoreboard.
func WithScoreboard(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.scoreboard = store
		}
	}
}

// WithCatalog sets the level catalog.
func WithCatalog(c *level.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithObstacleSeed seeds the obstacle generator. Zero seeds from the clock.
func WithObstacleSeed(seed int64) Option {
	return func(s *Service) {
		s.generator = level.NewSeededGenerator(seed)
	}
}

// WithGenerator sets the obstacle generator.
func WithGenerator(g *level.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithClassifier sets the gesture classifier used by the workers.
func WithClassifier(c worker.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithDetectorFactory sets how each worker builds its landmark source.
func WithDetectorFactory(f detector.Factory) Option {
	return func(s *Service) {
		if f != nil {
			s.detectorFactory = f
		}
	}
}

// WithDetectTimeout bounds one landmark detection. Callers of
// DetectGestures wait at most twice this long, queueing included.
func WithDetectTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.detectTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
