package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/heist/internal/domain/types"
	"github.com/okian/heist/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// runner holds the shared state of one simulation.
type runner struct {
	cfg    Config
	client *client
	log    logger.Logger
	levels int

	mu    sync.Mutex
	safe  map[string]string
	stats Stats
}

// Run plays cfg.Runs runs against the server and verifies the leaderboard.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := config.withDefaults()
	r := &runner{
		cfg:    cfg,
		client: newClient(cfg.BaseURL, cfg.Timeout),
		log:    logger.Get().Named("simulate"),
		safe:   make(map[string]string),
	}
	r.stats.StartTime = time.Now()

	r.log.Info(ctx, "starting heist simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("runs", cfg.Runs),
		logger.Int("workers", cfg.Workers),
		logger.Float64("mistakeRate", cfg.MistakeRate),
	)

	// Step 1: Check service health
	if err := r.client.get(ctx, "/healthz", nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Discover the catalog
	var levels types.LevelsResponse
	if err := r.client.get(ctx, "/levels", &levels); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	if len(levels.Levels) == 0 {
		return nil, fmt.Errorf("list levels: server has no levels")
	}
	r.levels = len(levels.Levels)

	// Step 3: Play runs concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range cfg.Runs {
		g.Go(func() error { return r.play(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("play runs: %w", err)
	}

	// Step 4: Verify the leaderboard
	var board types.HighScoresResponse
	if err := r.client.get(ctx, "/highscores", &board); err != nil {
		return nil, fmt.Errorf("get highscores: %w", err)
	}
	if err := verifyHighScores(board.HighScores, cfg.MaxHighScores, r.stats.BestScore); err != nil {
		return nil, fmt.Errorf("verify highscores: %w", err)
	}

	r.stats.HighScores = len(board.HighScores)
	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)
	r.logStats(ctx)

	out := r.stats
	return &out, nil
}

// play runs one level from fetch to score submission.
func (r *runner) play(ctx context.Context, run int) error {
	idx := r.cfg.Level
	if idx < 0 {
		idx = run % r.levels
	}

	var lvl types.LevelResponse
	if err := r.client.get(ctx, "/level/"+strconv.Itoa(idx), &lvl); err != nil {
		return fmt.Errorf("run %d: get level: %w", run, err)
	}

	rng := rand.New(rand.NewSource(r.cfg.Seed + int64(run))) //nolint:gosec // gameplay noise
	actions := make([]string, len(lvl.Obstacles))
	for i, o := range lvl.Obstacles {
		safe, err := r.safeAction(ctx, o)
		if err != nil {
			return fmt.Errorf("run %d: %w", run, err)
		}
		if rng.Float64() >= r.cfg.MistakeRate {
			actions[i] = safe
		}
	}

	var res types.RunResponse
	req := types.RunRequest{Level: lvl.Index, Obstacles: lvl.Obstacles, Actions: actions}
	if err := r.client.post(ctx, "/run", req, &res); err != nil {
		return fmt.Errorf("run %d: score run: %w", run, err)
	}

	progress := types.ProgressRequest{
		Level:        lvl.Index,
		Score:        res.Score,
		Name:         fmt.Sprintf("sim-%03d", run),
		SubmissionID: uuid.NewString(),
	}
	var board types.HighScoresResponse
	if err := r.client.post(ctx, "/progress", progress, &board); err != nil {
		return fmt.Errorf("run %d: submit score: %w", run, err)
	}
	if board.Duplicate {
		return fmt.Errorf("run %d: fresh submission %s reported as duplicate", run, progress.SubmissionID)
	}

	duplicate := false
	if r.cfg.DuplicateEvery > 0 && (run+1)%r.cfg.DuplicateEvery == 0 {
		if err := r.client.post(ctx, "/progress", progress, &board); err != nil {
			return fmt.Errorf("run %d: resubmit score: %w", run, err)
		}
		if !board.Duplicate {
			return fmt.Errorf("run %d: resubmission %s was applied twice", run, progress.SubmissionID)
		}
		duplicate = true
	}

	r.record(res, duplicate)
	r.log.Debug(ctx, "run finished",
		logger.Int("run", run),
		logger.String("level", res.Level),
		logger.Int("score", res.Score),
		logger.Bool("completed", res.Completed),
	)
	return nil
}

// safeAction asks the server which action clears obstacle, once per type.
func (r *runner) safeAction(ctx context.Context, obstacle string) (string, error) {
	r.mu.Lock()
	safe, ok := r.safe[obstacle]
	r.mu.Unlock()
	if ok {
		return safe, nil
	}

	var res types.CollisionResponse
	if err := r.client.post(ctx, "/collision", types.CollisionRequest{Obstacle: obstacle}, &res); err != nil {
		return "", fmt.Errorf("resolve %q: %w", obstacle, err)
	}

	r.mu.Lock()
	r.safe[obstacle] = res.SafeAction
	r.mu.Unlock()
	return res.SafeAction, nil
}

func (r *runner) record(res types.RunResponse, duplicate bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.RunsPlayed++
	r.stats.ScoresSubmitted++
	if res.Completed {
		r.stats.RunsCompleted++
	} else {
		r.stats.Collisions++
	}
	if duplicate {
		r.stats.Duplicates++
	}
	if r.stats.RunsPlayed == 1 || res.Score > r.stats.BestScore {
		r.stats.BestScore = res.Score
	}
}

func (r *runner) logStats(ctx context.Context) {
	var runsPerSecond float64
	if r.stats.Duration > 0 {
		runsPerSecond = float64(r.stats.RunsPlayed) / r.stats.Duration.Seconds()
	}
	r.log.Info(ctx, "final statistics",
		logger.Int("runsPlayed", r.stats.RunsPlayed),
		logger.Int("runsCompleted", r.stats.RunsCompleted),
		logger.Int("collisions", r.stats.Collisions),
		logger.Int("scoresSubmitted", r.stats.ScoresSubmitted),
		logger.Int("duplicates", r.stats.Duplicates),
		logger.Int("bestScore", r.stats.BestScore),
		logger.Int("highScores", r.stats.HighScores),
		logger.String("duration", r.stats.Duration.String()),
		logger.Float64("runsPerSecond", runsPerSecond),
	)
}
