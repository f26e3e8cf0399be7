package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return run(ctx, db, "create passcodes", statements{
			dialect.PG: {`
				CREATE TABLE IF NOT EXISTS passcodes (
					id         BIGSERIAL PRIMARY KEY,
					code       VARCHAR(7) NOT NULL UNIQUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
			},
			dialect.SQLite: {`
				CREATE TABLE IF NOT EXISTS passcodes (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					code       TEXT NOT NULL UNIQUE,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
			},
		})
	}, func(ctx context.Context, db *bun.DB) error {
		drop := []string{`DROP TABLE IF EXISTS passcodes`}
		return run(ctx, db, "drop passcodes", statements{dialect.PG: drop, dialect.SQLite: drop})
	})
}
