package simulate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/liao/internal/adapters/mq/queue"
	"github.com/okian/liao/internal/adapters/mq/worker"
	service "github.com/okian/liao/internal/app"
	"github.com/okian/liao/internal/domain/model"
	"github.com/okian/liao/pkg/logger"
)

const enqueueRetryDelay = time.Millisecond

// Submitter is the part of the scoring service a run drives.
type Submitter interface {
	Teams(ctx context.Context) ([]model.Team, error)
	Submit(ctx context.Context, req service.SubmitRequest) (service.SubmitResult, error)
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
}

// Report summarizes a run.
type Report struct {
	Requested   int                      `json:"requested"`
	Stored      int                      `json:"stored"`
	Failed      int                      `json:"failed"`
	Events      int                      `json:"events"`
	Transferred int64                    `json:"transferred"`
	Unbalanced  int                      `json:"unbalanced"`
	ByGame      map[model.Game]int       `json:"by_game"`
	Errors      []string                 `json:"errors,omitempty"`
	Duration    time.Duration            `json:"duration"`
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
}

// Runner generates submissions and feeds them to a Submitter through a
// bounded queue drained by a worker pool.
type Runner struct {
	submitter   Submitter
	submissions int
	workers     int
	queueSize   int
	seed        uint64
	logger      logger.Logger

	mu     sync.Mutex
	report Report
}

// NewRunner creates a runner for submitter.
func NewRunner(submitter Submitter, opts ...Option) *Runner {
	r := &Runner{
		submitter:   submitter,
		submissions: DefaultSubmissions,
		workers:     DefaultWorkers,
		queueSize:   DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Named("simulate")
	}
	return r
}

// Run executes the simulation. Every stored submission must be zero-sum and
// the leaderboard total must not change over the run.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	r.report = Report{ByGame: make(map[model.Game]int)}

	roster, err := r.submitter.Teams(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load teams: %w", err)
	}
	before, err := r.submitter.Leaderboard(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load leaderboard: %w", err)
	}
	reqs, err := NewGenerator(r.seed).Generate(roster, r.submissions)
	if err != nil {
		return Report{}, err
	}
	r.report.Requested = len(reqs)
	r.logger.Info(ctx, "starting simulation",
		logger.Int("teams", len(roster)),
		logger.Int("submissions", len(reqs)),
		logger.Int("workers", r.workers))

	q := queue.NewInMemoryQueue[service.SubmitRequest](queue.WithCapacity(r.queueSize))
	pool := worker.NewPool[service.SubmitRequest](r.workers, q, r.submit, worker.WithLogger(r.logger))
	pool.Start(ctx)

	var enqueueErr error
	for _, req := range reqs {
		if err := enqueue(ctx, q, req); err != nil {
			enqueueErr = err
			break
		}
	}
	if err := errors.Join(enqueueErr, pool.Shutdown(ctx)); err != nil {
		return r.snapshot(start), err
	}

	entries, err := r.submitter.Leaderboard(ctx)
	if err != nil {
		return r.snapshot(start), fmt.Errorf("load leaderboard: %w", err)
	}
	r.mu.Lock()
	r.report.Leaderboard = entries
	r.mu.Unlock()

	report := r.snapshot(start)
	r.logger.Info(ctx, "simulation finished",
		logger.Int("stored", report.Stored),
		logger.Int("failed", report.Failed),
		logger.Duration("duration", report.Duration))
	if report.Unbalanced > 0 {
		return report, fmt.Errorf("%w: %d submissions", ErrNotZeroSum, report.Unbalanced)
	}
	return report, Verify(before, entries)
}

// enqueue retries until the queue accepts req or ctx ends.
func enqueue(ctx context.Context, q *queue.InMemoryQueue[service.SubmitRequest], req service.SubmitRequest) error {
	for !q.Enqueue(ctx, req) {
		if q.IsClosed() {
			return fmt.Errorf("%w: queue closed", ErrEnqueue)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrEnqueue, ctx.Err())
		case <-time.After(enqueueRetryDelay):
		}
	}
	return nil
}

func (r *Runner) submit(ctx context.Context, req service.SubmitRequest) error {
	res, err := r.submitter.Submit(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.report.Failed++
		r.report.Errors = append(r.report.Errors, fmt.Sprintf("%s %s: %v", req.Game, req.SubmissionID, err))
		return err
	}
	r.report.Stored++
	r.report.ByGame[req.Game]++
	r.report.Events += len(res.Events)
	if sum := res.Result.Sum(); sum != 0 {
		r.report.Unbalanced++
		r.report.Errors = append(r.report.Errors, fmt.Sprintf("%s %s: deltas sum to %d", req.Game, req.SubmissionID, sum))
	}
	for _, d := range res.Result.Deltas {
		if d.Points > 0 {
			r.report.Transferred += d.Points
		}
	}
	return nil
}

func (r *Runner) snapshot(start time.Time) Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.report
	out.ByGame = make(map[model.Game]int, len(r.report.ByGame))
	for g, n := range r.report.ByGame {
		out.ByGame[g] = n
	}
	out.Errors = append([]string(nil), r.report.Errors...)
	sort.Strings(out.Errors)
	out.Duration = time.Since(start)
	return out
}

// Verify checks that the leaderboard total is unchanged between two
// snapshots. Deleted history rows can leave the total off zero, so only
// the change is compared.
func Verify(before, after []model.LeaderboardEntry) error {
	if d := total(after) - total(before); d != 0 {
		return fmt.Errorf("%w: total moved by %d", ErrNotZeroSum, d)
	}
	return nil
}

func total(entries []model.LeaderboardEntry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.TotalScore
	}
	return sum
}
