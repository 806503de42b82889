// Package model contains domain models passed between layers.
package model

// ScoreEntry is one leaderboard row. Names are free text and may repeat.
type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}
