package leaderboard_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/liao/internal/domain/leaderboard"
	"github.com/okian/liao/internal/domain/model"
)

var teams = []model.Team{
	{ID: 1, Name: "Alpha"},
	{ID: 2, Name: "Bravo"},
	{ID: 3, Name: "Charlie"},
	{ID: 4, Name: "Delta"},
}

func TestAggregate(t *testing.T) {
	convey.Convey("Given teams with recorded deltas", t, func() {
		scores := []model.TeamScores{
			{Team: teams[0], Deltas: []int64{3600, -1000}},
			{Team: teams[1], Deltas: []int64{-3600}},
			{Team: teams[2], Deltas: []int64{2600}},
			{Team: teams[3]},
		}

		convey.Convey("When the leaderboard is aggregated", func() {
			got := leaderboard.Aggregate(scores)

			convey.Convey("Then totals are ranked highest first with shared ranks on ties", func() {
				want := []model.LeaderboardEntry{
					{Rank: 1, Team: teams[0], TotalScore: 2600},
					{Rank: 1, Team: teams[2], TotalScore: 2600},
					{Rank: 3, Team: teams[3], TotalScore: 0},
					{Rank: 4, Team: teams[1], TotalScore: -3600},
				}
				convey.So(cmp.Diff(want, got), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When there are no teams", func() {
			convey.So(leaderboard.Aggregate(nil), convey.ShouldBeEmpty)
		})
	})
}

func TestFromEvents(t *testing.T) {
	convey.Convey("Given a stream of scoring events", t, func() {
		events := []model.ScoringEvent{
			{ID: 1, Game: model.Molkky, TeamID: 1, Points: 3600},
			{ID: 2, Game: model.Molkky, TeamID: 2, Points: -3600},
			{ID: 3, Game: model.Darts, TeamID: 99, Points: 500},
			{ID: 4, Game: model.Darts, TeamID: 3, Points: 1050},
			{ID: 5, Game: model.Darts, TeamID: 1, Points: -1050},
		}

		convey.Convey("Then unknown teams are ignored and idle teams total zero", func() {
			got := leaderboard.FromEvents(teams, events)
			totals := map[int64]int64{}
			for _, e := range got {
				totals[e.Team.ID] = e.TotalScore
			}
			convey.So(totals, convey.ShouldResemble, map[int64]int64{1: 2550, 2: -3600, 3: 1050, 4: 0})
		})

		convey.Convey("Then the input order of events does not matter", func() {
			f := gofakeit.New(7)
			want := leaderboard.FromEvents(teams, events)
			for i := 0; i < 50; i++ {
				shuffled := make([]model.ScoringEvent, len(events))
				copy(shuffled, events)
				f.ShuffleAnySlice(shuffled)
				convey.So(cmp.Diff(want, leaderboard.FromEvents(teams, shuffled)), convey.ShouldBeEmpty)
			}
		})

		convey.Convey("Then deleting a recorded event equals never inserting it", func() {
			afterDelete := make([]model.ScoringEvent, 0, len(events))
			for _, ev := range events {
				if ev.ID != 4 {
					afterDelete = append(afterDelete, ev)
				}
			}
			neverInserted := []model.ScoringEvent{
				{ID: 1, Game: model.Molkky, TeamID: 1, Points: 3600},
				{ID: 2, Game: model.Molkky, TeamID: 2, Points: -3600},
				{ID: 3, Game: model.Darts, TeamID: 99, Points: 500},
				{ID: 5, Game: model.Darts, TeamID: 1, Points: -1050},
			}
			got := leaderboard.FromEvents(teams, afterDelete)
			convey.So(cmp.Diff(leaderboard.FromEvents(teams, neverInserted), got), convey.ShouldBeEmpty)

			totals := map[int64]int64{}
			for _, e := range got {
				totals[e.Team.ID] = e.TotalScore
			}
			convey.So(totals, convey.ShouldResemble, map[int64]int64{1: 2550, 2: -3600, 3: 0, 4: 0})
		})

		convey.Convey("Then deleting any one event moves only its team by its points", func() {
			full := map[int64]int64{}
			for _, e := range leaderboard.FromEvents(teams, events) {
				full[e.Team.ID] = e.TotalScore
			}
			for i, removed := range events {
				rest := append(append([]model.ScoringEvent{}, events[:i]...), events[i+1:]...)
				for _, e := range leaderboard.FromEvents(teams, rest) {
					want := full[e.Team.ID]
					if e.Team.ID == removed.TeamID {
						want -= removed.Points
					}
					convey.So(e.TotalScore, convey.ShouldEqual, want)
				}
			}
		})
	})
}
