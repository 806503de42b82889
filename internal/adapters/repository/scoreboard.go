package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/heist/internal/domain/model"
	"github.com/okian/heist/pkg/metrics"
)

// ScoreBoard is a bounded, in-memory leaderboard.
//
// Ordering: score DESC. Ties keep submission order, so an earlier entry
// ranks above a later one with the same score. When a submission pushes the
// board past its capacity the lowest entry is dropped, which can be the new
// entry itself.
type ScoreBoard struct {
	mu       sync.RWMutex
	entries  []model.ScoreEntry
	capacity int
}

var _ Store = (*ScoreBoard)(nil)

// NewScoreBoard creates an empty leaderboard.
func NewScoreBoard(opts ...Option) *ScoreBoard {
	s := &ScoreBoard{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.entries = make([]model.ScoreEntry, 0, s.capacity+1)
	return s
}

// Submit appends the score, re-sorts and truncates under a single lock.
func (s *ScoreBoard) Submit(ctx context.Context, name string, score int) ([]model.ScoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, model.ScoreEntry{Name: name, Score: score})
	slices.SortStableFunc(s.entries, func(a, b model.ScoreEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(s.entries) > s.capacity {
		s.entries = s.entries[:s.capacity]
	}
	metrics.UpdateScoreboardSize(len(s.entries))

	return slices.Clone(s.entries), nil
}

// List returns a copy of the leaderboard.
func (s *ScoreBoard) List(_ context.Context) []model.ScoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ScoreEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// TopN returns at most n leading entries.
func (s *ScoreBoard) TopN(_ context.Context, n int) ([]model.ScoreEntry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n = min(n, len(s.entries))
	out := make([]model.ScoreEntry, n)
	copy(out, s.entries[:n])
	return out, nil
}

// Count returns the number of entries.
func (s *ScoreBoard) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset empties the leaderboard.
func (s *ScoreBoard) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
	metrics.UpdateScoreboardSize(0)
}

// Capacity returns the maximum number of kept entries.
func (s *ScoreBoard) Capacity() int { return s.capacity }
