package api

import (
	"errors"
	"net/http"

	"github.com/okian/heist/internal/adapters/repository"
	"github.com/okian/heist/internal/domain/types"
)

// handlePostProgress handles POST /progress requests.
func (s *Server) handlePostProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_progress"
	var req types.ProgressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := s.deps.SubmitScore(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidName) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		s.serverError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleHighScores handles GET /highscores requests.
func (s *Server) handleHighScores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.HighScores(r.Context()))
}
