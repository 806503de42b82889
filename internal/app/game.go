package service

import (
	"context"
	"fmt"

	"github.com/okian/heist/internal/domain/collision"
	"github.com/okian/heist/internal/domain/scoring"
	"github.com/okian/heist/internal/domain/tutorial"
	"github.com/okian/heist/internal/domain/types"
	"github.com/okian/heist/pkg/logger"
	"github.com/okian/heist/pkg/metrics"
)

// Level returns the level at index together with a fresh obstacle
// sequence. Out-of-range indices are clamped onto the catalog.
func (s *Service) Level(ctx context.Context, index int) types.LevelResponse {
	i := s.catalog.Clamp(index)
	l := s.catalog.Get(i)
	obstacles := s.generator.Generate(l)

	metrics.RecordLevelServed(l.Name)
	metrics.RecordObstacles(obstacles)
	s.logger.Debug(ctx, "level served",
		logger.Int("requested", index),
		logger.Int("index", i),
		logger.String("level", l.Name),
		logger.Int("obstacles", len(obstacles)),
	)

	return types.LevelResponse{Index: i, Level: l, Obstacles: obstacles}
}

// Levels returns the whole catalog.
func (s *Service) Levels() types.LevelsResponse {
	return types.LevelsResponse{Levels: s.catalog.Levels()}
}

// Tutorial returns the how-to-play content.
func (s *Service) Tutorial() tutorial.Tutorial {
	return tutorial.Get()
}

// SubmitScore records a score and returns the updated high scores. A
// repeated SubmissionID leaves the board untouched and reports Duplicate.
func (s *Service) SubmitScore(ctx context.Context, req types.ProgressRequest) (types.HighScoresResponse, error) {
	name := req.Name
	if name == "" {
		name = types.DefaultPlayerName
	}

	id := req.SubmissionID
	if id != "" && s.deduper.SeenAndRecord(ctx, id) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission", logger.String("submission_id", id))
		return types.HighScoresResponse{HighScores: s.scoreboard.List(ctx), Duplicate: true}, nil
	}

	entries, err := s.scoreboard.Submit(ctx, name, req.Score)
	if err != nil {
		if id != "" {
			s.deduper.Unrecord(ctx, id)
		}
		return types.HighScoresResponse{}, fmt.Errorf("submit score: %w", err)
	}

	metrics.RecordScoreSubmitted()
	s.logger.Info(ctx, "score submitted",
		logger.String("name", name),
		logger.Int("score", req.Score),
		logger.Int("level", req.Level),
	)
	return types.HighScoresResponse{HighScores: entries}, nil
}

// HighScores returns the current leaderboard.
func (s *Service) HighScores(ctx context.Context) types.HighScoresResponse {
	return types.HighScoresResponse{HighScores: s.scoreboard.List(ctx)}
}

// ResolveCollision reports whether the action clears the obstacle.
func (s *Service) ResolveCollision(_ context.Context, req types.CollisionRequest) types.CollisionResponse {
	collided := collision.Collides(req.Action, req.Obstacle)
	safe, _ := collision.SafeAction(req.Obstacle)
	metrics.RecordCollisionCheck(s.obstacleLabel(req.Obstacle), collided)
	return types.CollisionResponse{Collision: collided, SafeAction: safe}
}

// ScoreRun replays a played obstacle sequence against the requested level.
func (s *Service) ScoreRun(ctx context.Context, req types.RunRequest) (types.RunResponse, error) {
	l := s.catalog.Get(req.Level)
	res, err := s.scorer.Score(ctx, scoring.Input{
		Level:     l,
		Obstacles: req.Obstacles,
		Actions:   req.Actions,
	})
	if err != nil {
		return types.RunResponse{}, fmt.Errorf("score run: %w", err)
	}
	for i, obstacle := range req.Obstacles {
		if i > res.Cleared {
			break
		}
		metrics.RecordCollisionCheck(s.obstacleLabel(obstacle), i == res.CollidedAt)
	}
	return types.RunResponse{Result: res, Level: l.Name}, nil
}
