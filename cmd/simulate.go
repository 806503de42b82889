package main

import (
	"fmt"
	"io"
	"time"

	"github.com/okian/heist/internal/simulate"
	"github.com/okian/heist/pkg/logger"
	"github.com/spf13/cobra"
)

var simCfg simulate.Config

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play simulated runs against a running server",
	Long: `Play runs against a heist server over HTTP: fetch levels, pick actions
(occasionally idling on purpose), score each run, submit it, and verify the
high score table afterwards. Exits non-zero when an invariant is broken.`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simCfg.BaseURL, "url", "http://localhost:8000", "Base URL of the server")
	f.IntVar(&simCfg.Runs, "runs", simulate.DefaultRuns, "Number of runs to play")
	f.IntVar(&simCfg.Workers, "workers", simulate.DefaultWorkers, "Concurrent players")
	f.DurationVar(&simCfg.Timeout, "timeout", simulate.DefaultTimeout, "Per-request timeout")
	f.IntVar(&simCfg.Level, "level", -1, "Level index to play; negative cycles through the catalog")
	f.Float64Var(&simCfg.MistakeRate, "mistake-rate", 0.1, "Chance of idling at an obstacle")
	f.Int64Var(&simCfg.Seed, "seed", 0, "Mistake seed; 0 seeds from the clock")
	f.IntVar(&simCfg.DuplicateEvery, "duplicate-every", 5, "Resubmit every n-th run with the same submission id; 0 disables")
	f.IntVar(&simCfg.MaxHighScores, "max-highscores", simulate.DefaultMaxHighScores, "Expected leaderboard size")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	if simCfg.MistakeRate < 0 || simCfg.MistakeRate > 1 {
		return fmt.Errorf("mistake-rate must be within [0, 1], got %v", simCfg.MistakeRate)
	}
	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	stats, err := simulate.Run(cmd.Context(), &simCfg)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), stats)
	return nil
}

func printSummary(w io.Writer, s *simulate.Stats) {
	fmt.Fprintf(w, "runs:        %d (%d completed, %d collided)\n", s.RunsPlayed, s.RunsCompleted, s.Collisions)
	fmt.Fprintf(w, "submissions: %d (%d duplicates rejected)\n", s.ScoresSubmitted, s.Duplicates)
	fmt.Fprintf(w, "best score:  %d\n", s.BestScore)
	fmt.Fprintf(w, "highscores:  %d\n", s.HighScores)
	fmt.Fprintf(w, "duration:    %s\n", s.Duration.Round(time.Millisecond))
}
