package api

import (
	"errors"
	"net/http"

	"github.com/okian/heist/internal/domain/scoring"
	"github.com/okian/heist/internal/domain/types"
)

// handleCollision handles POST /collision requests.
func (s *Server) handleCollision(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_collision"
	var req types.CollisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.ResolveCollision(r.Context(), req))
}

// handleRun handles POST /run requests.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_run"
	var req types.RunRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := s.deps.ScoreRun(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, scoring.ErrNoObstacles), errors.Is(err, scoring.ErrTooManyActions):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		s.serverError(w, r, Wrap(op, err))
	}
}
