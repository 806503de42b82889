// Package types contains the request and response shapes of the HTTP API.
package types

import (
	"github.com/okian/heist/internal/domain/level"
	"github.com/okian/heist/internal/domain/model"
	"github.com/okian/heist/internal/domain/scoring"
)

// DefaultPlayerName is used when a progress submission omits a name.
const DefaultPlayerName = "Player"

// StatusResponse is returned by the root endpoint.
type StatusResponse struct {
	Message string `json:"message"`
}

// LevelResponse is a level plus a freshly generated obstacle sequence.
type LevelResponse struct {
	Index     int         `json:"index"`
	Level     level.Level `json:"level"`
	Obstacles []string    `json:"obstacles"`
}

// LevelsResponse lists the catalog.
type LevelsResponse struct {
	Levels []level.Level `json:"levels"`
}

// ProgressRequest submits a score. Score defaults to 0 and Name to
// DefaultPlayerName when omitted.
type ProgressRequest struct {
	Level        int    `json:"level"`
	Score        int    `json:"score"`
	Name         string `json:"name" validate:"max=64"`
	SubmissionID string `json:"submission_id,omitempty" validate:"omitempty,max=128"`
}

// HighScoresResponse is the ranked leaderboard.
type HighScoresResponse struct {
	HighScores []model.ScoreEntry `json:"highscores"`
	Duplicate  bool               `json:"duplicate,omitempty"`
}

// CollisionRequest asks whether action clears obstacle.
type CollisionRequest struct {
	Action   string `json:"action"`
	Obstacle string `json:"obstacle" validate:"required"`
}

// CollisionResponse reports the collision outcome and the action that
// would have been safe.
type CollisionResponse struct {
	Collision  bool   `json:"collision"`
	SafeAction string `json:"safe_action"`
}

// GestureResponse is the result of classifying one uploaded frame.
type GestureResponse struct {
	Gestures     model.Signals `json:"gestures"`
	FaceDetected bool          `json:"face_detected"`
	Action       string        `json:"action"`
}

// RunRequest submits a played obstacle sequence for scoring.
type RunRequest struct {
	Level     int      `json:"level"`
	Obstacles []string `json:"obstacles" validate:"required,min=1,dive,required"`
	Actions   []string `json:"actions"`
}

// RunResponse is the scored run.
type RunResponse struct {
	scoring.Result
	Level string `json:"level"`
}
