// Package migrations holds the schema of the scoring store for both the
// postgres and the sqlite dialect.
package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}

// statements is the DDL of one migration step per dialect.
type statements map[dialect.Name][]string

// run executes the statements matching the dialect of db in a single
// transaction, one statement per call.
func run(ctx context.Context, db *bun.DB, step string, ddl statements) error {
	stmts, ok := ddl[db.Dialect().Name()]
	if !ok {
		return fmt.Errorf("%s: no schema for dialect %s", step, db.Dialect().Name())
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", step, err)
			}
		}
		return nil
	})
}
