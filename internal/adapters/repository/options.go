package repository

// DefaultCapacity is how many entries the leaderboard keeps.
const DefaultCapacity = 10

// Option applies a configuration option to the ScoreBoard.
type Option func(*ScoreBoard)

// WithCapacity sets the maximum number of kept entries. Values < 1 are
// ignored.
func WithCapacity(n int) Option {
	return func(s *ScoreBoard) {
		if n > 0 {
			s.capacity = n
		}
	}
}
