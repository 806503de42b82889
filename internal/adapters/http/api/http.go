// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/okian/heist/internal/domain/tutorial"
	"github.com/okian/heist/internal/domain/types"
	"github.com/okian/heist/pkg/logger"
)

const (
	defaultMaxUploadBytes = 8 << 20
	maxJSONBodyBytes      = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	Level(ctx context.Context, index int) types.LevelResponse
	Levels() types.LevelsResponse
	Tutorial() tutorial.Tutorial

	// SubmitScore records a score. A repeated submission id is reported
	// through HighScoresResponse.Duplicate, not as an error.
	SubmitScore(ctx context.Context, req types.ProgressRequest) (types.HighScoresResponse, error)
	HighScores(ctx context.Context) types.HighScoresResponse

	ResolveCollision(ctx context.Context, req types.CollisionRequest) types.CollisionResponse
	ScoreRun(ctx context.Context, req types.RunRequest) (types.RunResponse, error)

	DetectGestures(ctx context.Context, image []byte) (types.GestureResponse, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxUploadBytes caps the size of an uploaded frame.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the game API.
type Server struct {
	deps           Dependencies
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	maxUploadBytes int64
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Register attaches all HTTP routes to mux. Trailing-slash forms are kept
// for the routes older clients call that way.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.handleRoot, "root"))
	mux.HandleFunc("GET /tutorial", MetricsMiddleware(s.handleTutorial, "tutorial"))
	mux.HandleFunc("GET /level/{n}", MetricsMiddleware(s.handleLevel, "level"))
	mux.HandleFunc("GET /levels", MetricsMiddleware(s.handleLevels, "levels"))

	mux.HandleFunc("POST /progress", MetricsMiddleware(s.handlePostProgress, "progress"))
	mux.HandleFunc("POST /progress/", MetricsMiddleware(s.handlePostProgress, "progress"))
	mux.HandleFunc("GET /highscores", MetricsMiddleware(s.handleHighScores, "highscores"))

	mux.HandleFunc("POST /collision", MetricsMiddleware(s.handleCollision, "collision"))
	mux.HandleFunc("POST /run", MetricsMiddleware(s.handleRun, "run"))

	mux.HandleFunc("POST /detect-gesture", MetricsMiddleware(s.handleDetectGesture, "detect_gesture"))
	mux.HandleFunc("POST /detect-gesture/", MetricsMiddleware(s.handleDetectGesture, "detect_gesture"))

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = validator.New()

// decodeJSON reads a bounded JSON body into v and validates its tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validate body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// serverError logs err with the request id and writes a 500.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed",
		logger.String("path", r.URL.Path),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
