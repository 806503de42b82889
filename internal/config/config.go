// Package config defines service configuration and its loading.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers a YAML file and HEIST_ env vars over the defaults.
//   - Validation errors wrap ErrInvalidConfig; loading errors wrap ErrLoadConfig.
package config

import (
	"strings"
	"time"

	"github.com/okian/heist/internal/domain/gesture"
	"github.com/okian/heist/internal/domain/level"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr" validate:"required"`

	// QueueSize bounds the detection job queue.
	QueueSize int `koanf:"queue_size" validate:"min=1"`

	// WorkerCount sets the number of detection workers. Each owns one
	// detector process.
	WorkerCount int `koanf:"worker_count" validate:"min=1"`

	// DedupeSize sets how many submission ids are remembered. 0 disables
	// eviction.
	DedupeSize int `koanf:"dedupe_size" validate:"min=0"`

	// ScoreboardCapacity caps the leaderboard length.
	ScoreboardCapacity int `koanf:"scoreboard_capacity" validate:"min=1"`

	// ObstacleSeed seeds the obstacle generator. 0 seeds from the clock.
	ObstacleSeed int64 `koanf:"obstacle_seed"`

	// Classifier thresholds in normalized image units.
	BlinkThreshold     float64 `koanf:"blink_threshold" validate:"gt=0"`
	MouthOpenThreshold float64 `koanf:"mouth_open_threshold" validate:"gt=0"`
	EyebrowThreshold   float64 `koanf:"eyebrow_threshold" validate:"gt=0"`

	// DetectorCommand is the face-mesh helper command line, split on
	// whitespace. Empty means every frame reports no face.
	DetectorCommand string `koanf:"detector_command"`

	// DetectorIdleTimeoutMS stops an unused helper process.
	DetectorIdleTimeoutMS int `koanf:"detector_idle_timeout_ms" validate:"min=1"`

	// DetectTimeoutMS bounds one landmark detection once a worker picks the
	// frame up; queueing is not included. A gesture request waits at most
	// twice this long for its result.
	DetectTimeoutMS int `koanf:"detect_timeout_ms" validate:"min=1"`

	// MaxUploadBytes caps the uploaded frame size.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"min=1"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms" validate:"min=1"`

	// Levels replaces the default level catalog when set.
	Levels []level.Level `koanf:"levels" validate:"omitempty,dive"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8000",
		QueueSize:             64,
		WorkerCount:           2,
		DedupeSize:            10_000,
		ScoreboardCapacity:    10,
		BlinkThreshold:        gesture.BlinkThreshold,
		MouthOpenThreshold:    gesture.MouthOpenThreshold,
		EyebrowThreshold:      gesture.EyebrowThreshold,
		DetectorIdleTimeoutMS: 30_000,
		DetectTimeoutMS:       5_000,
		MaxUploadBytes:        8 << 20,
		ShutdownTimeoutMS:     10_000,
	}
}

// DetectorArgs returns DetectorCommand split into argv.
func (c *Config) DetectorArgs() []string {
	return strings.Fields(c.DetectorCommand)
}

// DetectTimeout returns DetectTimeoutMS as a duration.
func (c *Config) DetectTimeout() time.Duration {
	return time.Duration(c.DetectTimeoutMS) * time.Millisecond
}

// DetectorIdleTimeout returns DetectorIdleTimeoutMS as a duration.
func (c *Config) DetectorIdleTimeout() time.Duration {
	return time.Duration(c.DetectorIdleTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Catalog builds the level catalog from Levels, or the default catalog
// when none are configured.
func (c *Config) Catalog() (*level.Catalog, error) {
	if len(c.Levels) == 0 {
		return level.DefaultCatalog(), nil
	}
	return level.NewCatalog(c.Levels...)
}

// Classifier builds a gesture classifier from the configured thresholds.
func (c *Config) Classifier() *gesture.Classifier {
	return gesture.New(
		gesture.WithBlinkThreshold(c.BlinkThreshold),
		gesture.WithMouthThreshold(c.MouthOpenThreshold),
		gesture.WithEyebrowThreshold(c.EyebrowThreshold),
	)
}
