// Package simulate plays the game against a running server over HTTP and
// checks the leaderboard invariants afterwards.
package simulate

import "time"

// Default simulation settings.
const (
	DefaultRuns          = 20
	DefaultWorkers       = 4
	DefaultTimeout       = 10 * time.Second
	DefaultMaxHighScores = 10
)

// Config holds configuration for a simulation.
type Config struct {
	BaseURL string        // Base URL of the service
	Runs    int           // Number of runs to play
	Workers int           // Number of concurrent players
	Timeout time.Duration // HTTP request timeout

	// Level selects the level for every run. Negative cycles through the
	// catalog.
	Level int

	// MistakeRate is the chance in [0, 1] that a player idles instead of
	// taking the safe action.
	MistakeRate float64

	// Seed makes the mistakes reproducible. Zero seeds from the clock.
	Seed int64

	// DuplicateEvery resubmits every n-th run with the same submission id
	// to exercise idempotency. Zero disables it.
	DuplicateEvery int

	// MaxHighScores is the leaderboard size the server is expected to keep.
	MaxHighScores int
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Runs <= 0 {
		out.Runs = DefaultRuns
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.MaxHighScores <= 0 {
		out.MaxHighScores = DefaultMaxHighScores
	}
	if out.Seed == 0 {
		out.Seed = time.Now().UnixNano()
	}
	return out
}

// Stats holds simulation statistics.
type Stats struct {
	RunsPlayed      int
	RunsCompleted   int
	Collisions      int
	ScoresSubmitted int
	Duplicates      int
	BestScore       int
	HighScores      int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
