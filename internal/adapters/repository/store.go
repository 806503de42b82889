// Package repository holds the high-score store.
package repository

import (
	"context"

	"github.com/okian/heist/internal/domain/model"
)

// Store provides read/write access to the leaderboard.
type Store interface {
	// Submit records a score and returns the updated leaderboard. Entries
	// beyond the capacity are dropped. An empty name is rejected with
	// ErrInvalidName; any other name, including duplicates, is accepted.
	Submit(ctx context.Context, name string, score int) ([]model.ScoreEntry, error)

	// List returns the leaderboard ordered by score desc.
	List(ctx context.Context) []model.ScoreEntry

	// TopN returns at most n leading entries.
	TopN(ctx context.Context, n int) ([]model.ScoreEntry, error)

	// Count returns the number of entries currently held.
	Count(ctx context.Context) int

	// Reset empties the leaderboard.
	Reset(ctx context.Context)
}
