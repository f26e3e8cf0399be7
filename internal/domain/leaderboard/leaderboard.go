// Package leaderboard derives team standings from scoring events. Nothing
// here is persisted; standings are recomputed on every read.
package leaderboard

import (
	"sort"

	"github.com/okian/liao/internal/domain/model"
)

// Aggregate sums every team's deltas and ranks the teams by total, highest
// first. Equal totals are ordered by ascending team id and share a rank.
func Aggregate(scores []model.TeamScores) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(scores))
	for _, ts := range scores {
		var total int64
		for _, d := range ts.Deltas {
			total += d
		}
		entries = append(entries, model.LeaderboardEntry{Team: ts.Team, TotalScore: total})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].Team.ID < entries[j].Team.ID
	})

	for i := range entries {
		if i > 0 && entries[i].TotalScore == entries[i-1].TotalScore {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}

// FromEvents groups events by team and aggregates them. Events of teams
// missing from teams are ignored; teams without events total zero.
func FromEvents(teams []model.Team, events []model.ScoringEvent) []model.LeaderboardEntry {
	return Aggregate(Group(teams, events))
}

// Group collects the deltas of each team in roster order.
func Group(teams []model.Team, events []model.ScoringEvent) []model.TeamScores {
	idx := make(map[int64]int, len(teams))
	scores := make([]model.TeamScores, len(teams))
	for i, t := range teams {
		idx[t.ID] = i
		scores[i] = model.TeamScores{Team: t, Deltas: []int64{}}
	}
	for _, ev := range events {
		i, ok := idx[ev.TeamID]
		if !ok {
			continue
		}
		scores[i].Deltas = append(scores[i].Deltas, ev.Points)
	}
	return scores
}
