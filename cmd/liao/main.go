// Command liao runs the scoring server and its admin tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/okian/liao/internal/adapters/repository"
	"github.com/okian/liao/internal/config"
	"github.com/okian/liao/pkg/logger"
)

const configKey = "config"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		// Use stderr since the logger may not be initialized yet
		_, _ = os.Stderr.WriteString("liao: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "liao",
		Usage:  "score party mini-games between teams",
		Before: setup,
		After: func(*cli.Context) error {
			return logger.Sync()
		},
		Action: serve,
		Commands: []*cli.Command{
			newServeCommand(),
			newMigrateCommand(),
			newTeamCommand(),
			newPasscodeCommand(),
			newExportCommand(),
			newSimulateCommand(),
		},
	}
}

// setup loads configuration (defaults -> optional file -> env) and
// initializes logging before any command runs.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(c.App.ErrWriter)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(c.Context, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.New(c.Context)
}

// openStore connects to the configured store and applies migrations when
// migrate is set.
func openStore(c *cli.Context, migrate bool) (*repository.BunStore, error) {
	cfg := configFrom(c)
	store, err := repository.Open(c.Context, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if !migrate {
		return store, nil
	}
	group, err := store.Migrate(c.Context)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if !group.IsZero() {
		logger.Get().Info(c.Context, "migrated store", logger.String("group", group.String()))
	}
	return store, nil
}
