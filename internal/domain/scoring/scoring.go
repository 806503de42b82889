// Package scoring turns a played obstacle sequence into a run score.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/heist/internal/domain/collision"
	"github.com/okian/heist/internal/domain/level"
)

// Default scoring configuration constants.
const (
	defaultPointsPerObstacle = 10
	defaultCompletionBonus   = 50
)

// Option applies a configuration option to the RunScorer.
type Option func(*RunScorer)

// WithPointsPerObstacle sets the base points for each cleared obstacle.
func WithPointsPerObstacle(points float64) Option {
	return func(s *RunScorer) {
		if points > 0 {
			s.pointsPerObstacle = points
		}
	}
}

// WithCompletionBonus sets the bonus for clearing the whole sequence.
func WithCompletionBonus(bonus int) Option {
	return func(s *RunScorer) {
		if bonus >= 0 {
			s.completionBonus = bonus
		}
	}
}

// Input is one played run: the sequence the player faced and the action
// taken at each step. Missing trailing actions count as idle.
type Input struct {
	Level     level.Level
	Obstacles []string
	Actions   []string
}

// Result is the outcome of a run.
type Result struct {
	Score      int  `json:"score"`
	Cleared    int  `json:"cleared"`
	CollidedAt int  `json:"collided_at"` // -1 when the run was completed
	Completed  bool `json:"completed"`
}

// Scorer computes a run score.
type Scorer interface {
	Score(ctx context.Context, in Input) (Result, error)
}

// RunScorer awards points per cleared obstacle, scaled by the level's speed
// multiplier for that obstacle. The run stops at the first collision.
type RunScorer struct {
	pointsPerObstacle float64
	completionBonus   int
}

// NewRunScorer creates a scorer with the given options.
func NewRunScorer(opts ...Option) *RunScorer {
	s := &RunScorer{
		pointsPerObstacle: defaultPointsPerObstacle,
		completionBonus:   defaultCompletionBonus,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score replays in and returns its result.
func (s *RunScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	if len(in.Obstacles) == 0 {
		return Result{}, ErrNoObstacles
	}
	if len(in.Actions) > len(in.Obstacles) {
		return Result{}, fmt.Errorf("%w: %d actions for %d obstacles", ErrTooManyActions, len(in.Actions), len(in.Obstacles))
	}

	res := Result{CollidedAt: -1}
	var points float64
	for i, obstacle := range in.Obstacles {
		var action string
		if i < len(in.Actions) {
			action = in.Actions[i]
		}
		if collision.Collides(action, obstacle) {
			res.CollidedAt = i
			break
		}
		res.Cleared++
		points += s.pointsPerObstacle * in.Level.Multiplier(obstacle)
	}

	res.Score = int(math.Round(points))
	if res.CollidedAt < 0 {
		res.Completed = true
		res.Score += s.completionBonus
	}
	return res, nil
}
