package api

import (
	"net/http"
	"strconv"

	"github.com/okian/heist/internal/domain/types"
)

const statusMessage = "Face Gesture Game Backend is running!"

// handleRoot handles GET / requests.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.StatusResponse{Message: statusMessage})
}

// handleTutorial handles GET /tutorial requests.
func (s *Server) handleTutorial(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Tutorial())
}

// handleLevel handles GET /level/{n} requests. Any integer is accepted and
// clamped onto the catalog.
func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_level"
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Level(r.Context(), n))
}

// handleLevels handles GET /levels requests.
func (s *Server) handleLevels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Levels())
}
