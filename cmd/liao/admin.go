package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/okian/liao/internal/adapters/session"
	app "github.com/okian/liao/internal/app"
	"github.com/okian/liao/pkg/logger"
)

var errUsage = errors.New("usage")

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					store, err := openStore(c, false)
					if err != nil {
						return err
					}
					defer store.Close()
					return store.Migrator().Init(c.Context)
				},
			},
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					store, err := openStore(c, false)
					if err != nil {
						return err
					}
					defer store.Close()
					group, err := store.Migrate(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(c.App.Writer, "no new migrations to run")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "migrated to %s\n", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					store, err := openStore(c, false)
					if err != nil {
						return err
					}
					defer store.Close()
					m := store.Migrator()
					if err := m.Init(c.Context); err != nil {
						return err
					}
					group, err := m.Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(c.App.Writer, "no groups to roll back")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					store, err := openStore(c, false)
					if err != nil {
						return err
					}
					defer store.Close()
					m := store.Migrator()
					if err := m.Init(c.Context); err != nil {
						return err
					}
					ms, err := m.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "migrations: %s\n", ms)
					fmt.Fprintf(c.App.Writer, "applied: %s\n", ms.Applied())
					fmt.Fprintf(c.App.Writer, "unapplied: %s\n", ms.Unapplied())
					return nil
				},
			},
		},
	}
}

// rosterFile is the YAML layout read by "team seed".
type rosterFile struct {
	Teams []string `yaml:"teams"`
}

func newTeamCommand() *cli.Command {
	return &cli.Command{
		Name:  "team",
		Usage: "manage the team roster",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "create a team",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
					if name == "" {
						return fmt.Errorf("%w: team name is required", errUsage)
					}
					store, err := openStore(c, true)
					if err != nil {
						return err
					}
					defer store.Close()
					team, err := store.CreateTeam(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d\t%s\n", team.ID, team.Name)
					return nil
				},
			},
			{
				Name:      "seed",
				Usage:     "create every team listed in a YAML file",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return fmt.Errorf("%w: roster file is required", errUsage)
					}
					raw, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					var roster rosterFile
					if err := yaml.Unmarshal(raw, &roster); err != nil {
						return fmt.Errorf("parse %s: %w", path, err)
					}
					store, err := openStore(c, true)
					if err != nil {
						return err
					}
					defer store.Close()
					for _, name := range roster.Teams {
						team, err := store.CreateTeam(c.Context, strings.TrimSpace(name))
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "%d\t%s\n", team.ID, team.Name)
					}
					logger.Get().Info(c.Context, "seeded teams", logger.Int("count", len(roster.Teams)))
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "print the roster",
				Action: func(c *cli.Context) error {
					store, err := openStore(c, true)
					if err != nil {
						return err
					}
					defer store.Close()
					teams, err := store.ListTeams(c.Context)
					if err != nil {
						return err
					}
					for _, t := range teams {
						fmt.Fprintf(c.App.Writer, "%d\t%s\n", t.ID, t.Name)
					}
					return nil
				},
			},
		},
	}
}

func newPasscodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "passcode",
		Usage: "manage login passcodes",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "register a passcode",
				ArgsUsage: "CODE",
				Action: func(c *cli.Context) error {
					code := c.Args().First()
					if err := session.ValidateCode(code); err != nil {
						return fmt.Errorf("%w: passcode must be exactly %d characters: %w", errUsage, session.CodeLength, err)
					}
					store, err := openStore(c, true)
					if err != nil {
						return err
					}
					defer store.Close()
					if err := store.CreatePasscode(c.Context, code); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "passcode added")
					return nil
				},
			},
		},
	}
}

func newExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the leaderboard and history workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "liao.xlsx",
				Usage:   "output `FILE`",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			store, err := openStore(c, true)
			if err != nil {
				return err
			}
			svc := app.New(app.WithStore(store), app.WithDedupeSize(cfg.DedupeSize))
			if err := svc.Start(c.Context); err != nil {
				_ = store.Close()
				return err
			}
			defer svc.Stop()

			data, err := svc.ExportWorkbook(c.Context)
			if err != nil {
				return err
			}
			out := c.String("out")
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
			return nil
		},
	}
}
