// Package repository persists teams, scoring events and passcodes with bun
// on postgres or sqlite.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/liao/internal/adapters/repository/migrations"
	"github.com/okian/liao/internal/domain/leaderboard"
	"github.com/okian/liao/internal/domain/model"
	"github.com/okian/liao/pkg/metrics"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store provides read/write access to teams and scoring events.
type Store interface {
	// FetchTeamsWithScores returns every team with all of its deltas.
	FetchTeamsWithScores(ctx context.Context) ([]model.TeamScores, error)
	// InsertScoringEvents writes all deltas of one submission in a single
	// transaction. Either every row is written or none.
	InsertScoringEvents(ctx context.Context, submissionID uuid.UUID, game model.Game, deltas []model.Delta) ([]model.ScoringEvent, error)
	// FetchHistory returns every event, newest first.
	FetchHistory(ctx context.Context) ([]model.HistoryRow, error)
	// DeleteScoringEvent removes one event. Returns ErrNotFound when no row matched.
	DeleteScoringEvent(ctx context.Context, id int64) error

	ListTeams(ctx context.Context) ([]model.Team, error)
	CreateTeam(ctx context.Context, name string) (model.Team, error)
	PasscodeExists(ctx context.Context, code string) (bool, error)
	CreatePasscode(ctx context.Context, code string) error
	Close() error
}

// BunStore implements Store on a bun.DB.
type BunStore struct {
	db           *bun.DB
	now          func() time.Time
	maxOpenConns int
}

var _ Store = (*BunStore)(nil)

// Open connects to the database selected by driver.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*BunStore, error) {
	s := &BunStore{now: time.Now, maxOpenConns: 10}
	for _, opt := range opts {
		opt(s)
	}

	var sqldb *sql.DB
	switch strings.ToLower(driver) {
	case DriverSQLite:
		var err error
		sqldb, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("repository.Open: %w", err)
		}
		// A single connection keeps ":memory:" databases alive and
		// serialises writers.
		sqldb.SetMaxOpenConns(1)
		sqldb.SetConnMaxLifetime(0)
		s.db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		sqldb.SetMaxOpenConns(s.maxOpenConns)
		s.db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	if err := s.db.PingContext(ctx); err != nil {
		_ = s.db.Close()
		return nil, storeErr("Open", err)
	}
	return s, nil
}

// sqliteDSN enables foreign keys through the DSN so every new connection
// gets them.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// DB exposes the underlying bun.DB.
func (s *BunStore) DB() *bun.DB { return s.db }

// Migrator returns a migrator bound to the store schema.
func (s *BunStore) Migrator() *migrate.Migrator {
	return migrate.NewMigrator(s.db, migrations.Migrations)
}

// Migrate creates the migration tables if needed and applies every pending
// migration. It returns the applied group, which is empty when the schema
// was already current.
func (s *BunStore) Migrate(ctx context.Context) (*migrate.MigrationGroup, error) {
	m := s.Migrator()
	if err := m.Init(ctx); err != nil {
		return nil, storeErr("Migrate", err)
	}
	group, err := m.Migrate(ctx)
	if err != nil {
		return nil, storeErr("Migrate", err)
	}
	return group, nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

// observe records latency and failures of one store operation.
func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if *err != nil && !errors.Is(*err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}

func (s *BunStore) FetchTeamsWithScores(ctx context.Context) (_ []model.TeamScores, err error) {
	const op = "FetchTeamsWithScores"
	defer observe(op, time.Now(), &err)

	teams, err := s.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	var rows []scoringEventRow
	if err = s.db.NewSelect().
		Model(&rows).
		Column("id", "team_id", "points").
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, storeErr(op, err)
	}
	events := make([]model.ScoringEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toModel())
	}
	return leaderboard.Group(teams, events), nil
}

func (s *BunStore) InsertScoringEvents(ctx context.Context, submissionID uuid.UUID, game model.Game, deltas []model.Delta) (_ []model.ScoringEvent, err error) {
	const op = "InsertScoringEvents"
	defer observe(op, time.Now(), &err)

	if len(deltas) == 0 {
		return nil, nil
	}
	createdAt := s.now().UTC().Truncate(time.Microsecond)
	rows := make([]scoringEventRow, 0, len(deltas))
	for _, d := range deltas {
		rows = append(rows, scoringEventRow{
			Game:         string(game),
			TeamID:       d.TeamID,
			Points:       d.Points,
			SubmissionID: submissionID,
			CreatedAt:    createdAt,
		})
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&rows).Returning("id").Exec(ctx)
		return err
	})
	if err != nil {
		return nil, storeErr(op, err)
	}

	events := make([]model.ScoringEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toModel())
	}
	return events, nil
}

func (s *BunStore) FetchHistory(ctx context.Context) (_ []model.HistoryRow, err error) {
	const op = "FetchHistory"
	defer observe(op, time.Now(), &err)

	var rows []historyRow
	if err = s.db.NewSelect().
		TableExpr("scoring_events AS se").
		ColumnExpr("se.id, se.game, se.team_id, se.points, se.submission_id, se.created_at").
		ColumnExpr("t.name AS team_name").
		Join("JOIN teams AS t ON t.id = se.team_id").
		OrderExpr("se.created_at DESC, se.id DESC").
		Scan(ctx, &rows); err != nil {
		return nil, storeErr(op, err)
	}

	history := make([]model.HistoryRow, 0, len(rows))
	for _, r := range rows {
		history = append(history, model.HistoryRow{
			ScoringEvent: model.ScoringEvent{
				ID:           r.ID,
				Game:         model.Game(r.Game),
				TeamID:       r.TeamID,
				Points:       r.Points,
				SubmissionID: r.SubmissionID,
				CreatedAt:    r.CreatedAt.UTC(),
			},
			TeamName: r.TeamName,
		})
	}
	return history, nil
}

func (s *BunStore) DeleteScoringEvent(ctx context.Context, id int64) (err error) {
	const op = "DeleteScoringEvent"
	defer observe(op, time.Now(), &err)

	res, err := s.db.NewDelete().
		Model((*scoringEventRow)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return storeErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("repository.%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}

func (s *BunStore) ListTeams(ctx context.Context) (_ []model.Team, err error) {
	const op = "ListTeams"
	defer observe(op, time.Now(), &err)

	var rows []teamRow
	if err = s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, storeErr(op, err)
	}
	teams := make([]model.Team, 0, len(rows))
	for _, r := range rows {
		teams = append(teams, r.toModel())
	}
	return teams, nil
}

func (s *BunStore) CreateTeam(ctx context.Context, name string) (_ model.Team, err error) {
	const op = "CreateTeam"
	defer observe(op, time.Now(), &err)

	row := teamRow{Name: strings.TrimSpace(name), CreatedAt: s.now().UTC().Truncate(time.Microsecond)}
	if row.Name == "" {
		return model.Team{}, fmt.Errorf("repository.%s: empty team name", op)
	}
	if _, err = s.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return model.Team{}, storeErr(op, err)
	}
	return row.toModel(), nil
}

func (s *BunStore) PasscodeExists(ctx context.Context, code string) (_ bool, err error) {
	const op = "PasscodeExists"
	defer observe(op, time.Now(), &err)

	ok, err := s.db.NewSelect().
		Model((*passcodeRow)(nil)).
		Where("code = ?", code).
		Exists(ctx)
	if err != nil {
		return false, storeErr(op, err)
	}
	return ok, nil
}

func (s *BunStore) CreatePasscode(ctx context.Context, code string) (err error) {
	const op = "CreatePasscode"
	defer observe(op, time.Now(), &err)

	row := passcodeRow{Code: code, CreatedAt: s.now().UTC().Truncate(time.Microsecond)}
	if _, err = s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return storeErr(op, err)
	}
	return nil
}
