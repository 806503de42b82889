package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrInvalidName  = errors.New("invalid player name")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
