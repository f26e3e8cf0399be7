// Package service wires the game rules, the leaderboard and the store into
// the operations used by the HTTP API and the admin CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/liao/internal/adapters/report"
	"github.com/okian/liao/internal/adapters/repository"
	"github.com/okian/liao/internal/adapters/session"
	"github.com/okian/liao/internal/domain/dedupe"
	"github.com/okian/liao/internal/domain/leaderboard"
	"github.com/okian/liao/internal/domain/model"
	"github.com/okian/liao/internal/domain/scoring"
	"github.com/okian/liao/pkg/logger"
	"github.com/okian/liao/pkg/metrics"
)

const tracerName = "github.com/okian/liao/internal/app"

// Gate issues and verifies sessions.
type Gate interface {
	Login(ctx context.Context, code string) (string, session.Session, error)
	Verify(token string) (session.Session, error)
	TTL() time.Duration
}

// SubmitRequest is one game dialog submission.
type SubmitRequest struct {
	// SubmissionID makes retries idempotent. A new id is generated when it is uuid.Nil.
	SubmissionID uuid.UUID
	Game         model.Game
	Submission   scoring.Submission
}

// SubmitResult is returned after a submission was written.
type SubmitResult struct {
	SubmissionID uuid.UUID                `json:"submission_id"`
	Result       scoring.Result           `json:"result"`
	Events       []model.ScoringEvent     `json:"events"`
	Leaderboard  []model.LeaderboardEntry `json:"leaderboard"`
}

// Service implements the scoring operations.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	gate    Gate
	deduper dedupe.Deduper

	dedupeSize int
	tracer     trace.Tracer
	now        func() time.Time

	started   bool
	startedAt time.Time

	submissions atomic.Int64
	duplicates  atomic.Int64
	rejected    atomic.Int64

	logger logger.Logger
}

// New constructs a Service. Start must be called before use.
func New(opts ...Option) *Service {
	s := &Service{
		dedupeSize: dedupe.DefaultMaxSize,
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates dependencies and prepares in-memory state.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.started = true
	s.startedAt = s.now()

	s.logger.Info(ctx, "scoring service started",
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Bool("gate", s.gate != nil),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing store failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "Service."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Teams returns the roster in ascending id order.
func (s *Service) Teams(ctx context.Context) (_ []model.Team, err error) {
	ctx, span := s.startSpan(ctx, "Teams")
	defer func() { endSpan(span, err) }()

	if err = s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListTeams(ctx)
}

// Leaderboard recomputes the standings from every recorded event.
func (s *Service) Leaderboard(ctx context.Context) (_ []model.LeaderboardEntry, err error) {
	ctx, span := s.startSpan(ctx, "Leaderboard")
	defer func() { endSpan(span, err) }()

	if err = s.ready(); err != nil {
		return nil, err
	}
	return s.leaderboard(ctx)
}

func (s *Service) leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	scores, err := s.store.FetchTeamsWithScores(ctx)
	if err != nil {
		return nil, err
	}
	entries := leaderboard.Aggregate(scores)
	metrics.UpdateLeaderboardTeams(len(entries))
	return entries, nil
}

// History returns every scoring event, newest first.
func (s *Service) History(ctx context.Context) (_ []model.HistoryRow, err error) {
	ctx, span := s.startSpan(ctx, "History")
	defer func() { endSpan(span, err) }()

	if err = s.ready(); err != nil {
		return nil, err
	}
	return s.store.FetchHistory(ctx)
}

// Preview evaluates a submission against the current roster without writing.
func (s *Service) Preview(ctx context.Context, game model.Game, sub scoring.Submission) (_ scoring.Result, err error) {
	ctx, span := s.startSpan(ctx, "Preview", attribute.String("game", string(game)))
	defer func() { endSpan(span, err) }()

	if err = s.ready(); err != nil {
		return scoring.Result{}, err
	}
	roster, err := s.store.ListTeams(ctx)
	if err != nil {
		return scoring.Result{}, err
	}
	return scoring.Evaluate(game, roster, sub)
}

// Submit evaluates a submission, writes its deltas in one transaction and
// returns the refreshed leaderboard. A rejected or failed submission may be
// retried with the same id; a written one may not.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (res SubmitResult, err error) {
	if req.SubmissionID == uuid.Nil {
		req.SubmissionID = uuid.New()
	}
	ctx, span := s.startSpan(ctx, "Submit",
		attribute.String("game", string(req.Game)),
		attribute.String("submission_id", req.SubmissionID.String()),
	)
	defer func() { endSpan(span, err) }()

	if err = s.ready(); err != nil {
		return SubmitResult{}, err
	}
	res.SubmissionID = req.SubmissionID

	if s.deduper.SeenAndRecord(ctx, req.SubmissionID) {
		s.duplicates.Add(1)
		metrics.RecordSubmissionDuplicate()
		s.logger.Info(ctx, "duplicate submission ignored",
			logger.String("submission", req.SubmissionID.String()),
			logger.String("game", string(req.Game)),
		)
		return res, fmt.Errorf("service.Submit %s: %w", req.SubmissionID, ErrDuplicateSubmission)
	}

	written := false
	defer func() {
		if !written {
			s.deduper.Unrecord(ctx, req.SubmissionID)
		}
	}()

	roster, err := s.store.ListTeams(ctx)
	if err != nil {
		metrics.RecordSubmission(string(req.Game), "store_error")
		return res, err
	}

	res.Result, err = scoring.Evaluate(req.Game, roster, req.Submission)
	if err != nil {
		s.rejected.Add(1)
		metrics.RecordValidationFailure(string(req.Game))
		metrics.RecordSubmission(string(req.Game), "rejected")
		s.logger.Debug(ctx, "submission rejected",
			logger.String("game", string(req.Game)),
			logger.Error(err),
		)
		return res, err
	}

	res.Events, err = s.store.InsertScoringEvents(ctx, req.SubmissionID, req.Game, res.Result.Deltas)
	if err != nil {
		metrics.RecordSubmission(string(req.Game), "store_error")
		s.logger.Error(ctx, "writing submission failed",
			logger.String("game", string(req.Game)),
			logger.String("submission", req.SubmissionID.String()),
			logger.Error(err),
		)
		return res, err
	}
	written = true

	s.submissions.Add(1)
	metrics.RecordSubmission(string(req.Game), "accepted")
	var transferred int64
	for _, d := range res.Result.Deltas {
		if d.Points > 0 {
			transferred += d.Points
		}
	}
	metrics.RecordPointsTransferred(string(req.Game), transferred)
	s.logger.Info(ctx, "submission recorded",
		logger.String("game", string(req.Game)),
		logger.String("submission", req.SubmissionID.String()),
		logger.Int("events", len(res.Events)),
		logger.Int64("transferred", transferred),
	)

	res.Leaderboard, err = s.leaderboard(ctx)
	if err != nil {
		return res, fmt.Errorf("service.Submit: submission written, leaderboard refresh failed: %w", err)
	}
	return res, nil
}

// DeleteEvent removes one scoring event and returns the refreshed leaderboard.
func (s *Service) DeleteEvent(ctx context.Context, id int64) (_ []model.LeaderboardEntry, err error) {
	ctx, span := s.startSpan(ctx, "DeleteEvent", attribute.Int64("event_id", id))
	defer func() { endSpan(span, err) }()

	if err = s.ready(); err != nil {
		return nil, err
	}
	if err = s.store.DeleteScoringEvent(ctx, id); err != nil {
		return nil, err
	}
	metrics.RecordEventDeleted()
	s.logger.Info(ctx, "scoring event deleted", logger.Int64("id", id))

	entries, err := s.leaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.DeleteEvent: event deleted, leaderboard refresh failed: %w", err)
	}
	return entries, nil
}

// Login exchanges a passcode for a session token.
func (s *Service) Login(ctx context.Context, code string) (_ string, _ session.Session, err error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer func() { endSpan(span, err) }()

	if s.gate == nil {
		return "", session.Session{}, ErrNoGate
	}
	token, sess, err := s.gate.Login(ctx, code)
	metrics.RecordLoginAttempt(loginOutcome(err))
	if err != nil {
		return "", session.Session{}, err
	}
	s.logger.Info(ctx, "session issued", logger.String("session", sess.ID))
	return token, sess, nil
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, session.ErrCodeFormat):
		return "bad_format"
	case errors.Is(err, session.ErrCodeMismatch):
		return "mismatch"
	default:
		return "error"
	}
}

// VerifySession checks a session token.
func (s *Service) VerifySession(token string) (session.Session, error) {
	if s.gate == nil {
		return session.Session{}, ErrNoGate
	}
	return s.gate.Verify(token)
}

// SessionTTL returns the lifetime of issued sessions.
func (s *Service) SessionTTL() time.Duration {
	if s.gate == nil {
		return session.DefaultTTL
	}
	return s.gate.TTL()
}

// ExportWorkbook renders the leaderboard and history as xlsx.
func (s *Service) ExportWorkbook(ctx context.Context) (_ []byte, err error) {
	ctx, span := s.startSpan(ctx, "ExportWorkbook")
	defer func() { endSpan(span, err) }()

	if err = s.ready(); err != nil {
		return nil, err
	}
	entries, err := s.leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.store.FetchHistory(ctx)
	if err != nil {
		return nil, err
	}
	return report.Workbook(entries, history)
}

// LeaderboardChart renders the standings as a PNG bar chart.
func (s *Service) LeaderboardChart(ctx context.Context) (_ []byte, err error) {
	ctx, span := s.startSpan(ctx, "LeaderboardChart")
	defer func() { endSpan(span, err) }()

	if err = s.ready(); err != nil {
		return nil, err
	}
	entries, err := s.leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	return report.LeaderboardChart(entries)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"dedupeSize":  s.dedupeSize,
		"submissions": s.submissions.Load(),
		"duplicates":  s.duplicates.Load(),
		"rejected":    s.rejected.Load(),
	}
	if s.started {
		stats["dedupeEntries"] = s.deduper.Size()
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())
	}
	return stats
}
