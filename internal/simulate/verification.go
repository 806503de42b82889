package simulate

import (
	"fmt"

	"github.com/okian/heist/internal/domain/model"
)

// verifyHighScores checks that the board respects its size limit, is
// ordered by score descending, and is led by a score no lower than best.
func verifyHighScores(board []model.ScoreEntry, maxEntries, best int) error {
	if len(board) > maxEntries {
		return fmt.Errorf("leaderboard holds %d entries, limit is %d", len(board), maxEntries)
	}
	for i := 1; i < len(board); i++ {
		if board[i].Score > board[i-1].Score {
			return fmt.Errorf("leaderboard not properly sorted: entry %d (%d) beats entry %d (%d)",
				i, board[i].Score, i-1, board[i-1].Score)
		}
	}
	if len(board) == 0 {
		return fmt.Errorf("empty leaderboard")
	}
	if board[0].Score < best {
		return fmt.Errorf("top score %d is below the best submitted score %d", board[0].Score, best)
	}
	return nil
}
