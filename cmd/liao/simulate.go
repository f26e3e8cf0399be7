package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	app "github.com/okian/liao/internal/app"
	"github.com/okian/liao/internal/domain/model"
	"github.com/okian/liao/internal/simulate"
	"github.com/okian/liao/pkg/logger"
)

func newSimulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "write random valid submissions to rehearse an event",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "submissions", Aliases: []string{"n"}, Value: simulate.DefaultSubmissions, Usage: "number of submissions"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: simulate.DefaultWorkers, Usage: "concurrent submitters"},
			&cli.Uint64Flag{Name: "seed", Usage: "generator seed, 0 for random"},
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

			report, err := simulate.NewRunner(svc,
				simulate.WithSubmissions(c.Int("submissions")),
				simulate.WithWorkers(c.Int("workers")),
				simulate.WithSeed(c.Uint64("seed")),
				simulate.WithLogger(logger.Named("simulate")),
			).Run(c.Context)

			w := c.App.Writer
			fmt.Fprintf(w, "submissions: %d stored, %d failed of %d\n", report.Stored, report.Failed, report.Requested)
			for _, g := range model.Games() {
				if n := report.ByGame[g]; n > 0 {
					fmt.Fprintf(w, "  %-8s %d\n", g, n)
				}
			}
			fmt.Fprintf(w, "points transferred: %d\n", report.Transferred)
			for _, e := range report.Leaderboard {
				fmt.Fprintf(w, "%3d  %-20s %d\n", e.Rank, e.Team.Name, e.TotalScore)
			}
			return err
		},
	}
}
