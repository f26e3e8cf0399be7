// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/liao/internal/adapters/repository"
	"github.com/okian/liao/internal/adapters/session"
	service "github.com/okian/liao/internal/app"
	"github.com/okian/liao/internal/domain/model"
	"github.com/okian/liao/internal/domain/scoring"
	"github.com/okian/liao/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Teams(ctx context.Context) ([]model.Team, error)
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
	History(ctx context.Context) ([]model.HistoryRow, error)
	Preview(ctx context.Context, game model.Game, sub scoring.Submission) (scoring.Result, error)
	Submit(ctx context.Context, req service.SubmitRequest) (service.SubmitResult, error)
	DeleteEvent(ctx context.Context, id int64) ([]model.LeaderboardEntry, error)
	ExportWorkbook(ctx context.Context) ([]byte, error)
	LeaderboardChart(ctx context.Context) ([]byte, error)

	Login(ctx context.Context, code string) (string, session.Session, error)
	VerifySession(token string) (session.Session, error)
	SessionTTL() time.Duration
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps  Dependencies
	stats StatsProvider

	cookieName     string
	secureCookie   bool
	allowedOrigins []string
	trustProxy     bool
	loginLimiter   *session.IPRateLimiter
	logger         logger.Logger

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	authHandler        *AuthHandler
	gamesHandler       *GamesHandler
	leaderboardHandler *LeaderboardHandler
	historyHandler     *HistoryHandler
	exportHandler      *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		stats:        stats,
		cookieName:   session.DefaultCookieName,
		loginLimiter: session.NewIPRateLimiter(10, 5),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(stats)
	s.authHandler = NewAuthHandler(deps, s.loginLimiter, s.cookieName, s.secureCookie)
	s.gamesHandler = NewGamesHandler(deps)
	s.leaderboardHandler = NewLeaderboardHandler(deps)
	s.historyHandler = NewHistoryHandler(deps)
	s.exportHandler = NewExportHandler(deps)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(CORSMiddleware(s.allowedOrigins))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", MetricsMiddleware(s.authHandler.HandleLogin, "login"))
		r.Post("/logout", MetricsMiddleware(s.authHandler.HandleLogout, "logout"))

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(s.deps, s.cookieName))

			r.Get("/session", MetricsMiddleware(s.authHandler.HandleSession, "session"))
			r.Get("/teams", MetricsMiddleware(s.leaderboardHandler.HandleGetTeams, "teams"))
			r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
			r.Get("/leaderboard/chart.png", MetricsMiddleware(s.leaderboardHandler.HandleGetChart, "leaderboard_chart"))
			r.Get("/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
			r.Delete("/history/{id}", MetricsMiddleware(s.historyHandler.HandleDeleteEvent, "history_delete"))
			r.Post("/games/{game}/preview", MetricsMiddleware(s.gamesHandler.HandlePreview, "preview"))
			r.Post("/games/{game}/submissions", MetricsMiddleware(s.gamesHandler.HandleSubmit, "submit"))
			r.Get("/export.xlsx", MetricsMiddleware(s.exportHandler.HandleExport, "export"))
		})
	})
}

// Routes returns a router with every route registered.
func (s *Server) Routes(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// writeServiceError translates domain and store errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, fmt.Errorf("%s: %w", op, err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnknownGame), errors.Is(err, model.ErrUnknownGame):
		return http.StatusNotFound, "unknown_game"
	case errors.Is(err, scoring.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, service.ErrDuplicateSubmission):
		return http.StatusConflict, "duplicate_submission"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrCodeFormat):
		return http.StatusBadRequest, "invalid_code"
	case errors.Is(err, session.ErrCodeMismatch):
		return http.StatusUnauthorized, "code_mismatch"
	case errors.Is(err, session.ErrInvalidSession), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, session.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, repository.ErrStore):
		return http.StatusBadGateway, "store_error"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
