package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func init() {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_scoring_events_created_at ON scoring_events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_scoring_events_submission_id ON scoring_events(submission_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scoring_events_team_id ON scoring_events(team_id)`,
	}

	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return run(ctx, db, "create scoring_events", statements{
			dialect.PG: append([]string{`
				CREATE TABLE IF NOT EXISTS scoring_events (
					id            BIGSERIAL PRIMARY KEY,
					game          TEXT NOT NULL,
					team_id       BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					points        BIGINT NOT NULL,
					submission_id UUID NOT NULL,
					created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
			}, indexes...),
			dialect.SQLite: append([]string{`
				CREATE TABLE IF NOT EXISTS scoring_events (
					id            INTEGER PRIMARY KEY AUTOINCREMENT,
					game          TEXT NOT NULL,
					team_id       INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					points        INTEGER NOT NULL,
					submission_id TEXT NOT NULL,
					created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
			}, indexes...),
		})
	}, func(ctx context.Context, db *bun.DB) error {
		drop := []string{`DROP TABLE IF EXISTS scoring_events`}
		return run(ctx, db, "drop scoring_events", statements{dialect.PG: drop, dialect.SQLite: drop})
	})
}
