package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return run(ctx, db, "create teams", statements{
			dialect.PG: {`
				CREATE TABLE IF NOT EXISTS teams (
					id         BIGSERIAL PRIMARY KEY,
					name       TEXT NOT NULL UNIQUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
			},
			dialect.SQLite: {`
				CREATE TABLE IF NOT EXISTS teams (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					name       TEXT NOT NULL UNIQUE,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
			},
		})
	}, func(ctx context.Context, db *bun.DB) error {
		drop := []string{`DROP TABLE IF EXISTS teams`}
		return run(ctx, db, "drop teams", statements{dialect.PG: drop, dialect.SQLite: drop})
	})
}
