// Package scoring holds the game rules that turn per-team form input into
// zero-sum point transfers.
//
// Every rule is pure. Teams are considered in ascending id order and sorts
// are stable, so equal scores rank the lower team id first.
package scoring

import (
	"sort"

	"github.com/okian/liao/internal/domain/model"
)

// Placement is a team's finishing position within one submission.
type Placement struct {
	Place  int   `json:"place"`
	TeamID int64 `json:"team_id"`
	Value  int64 `json:"value"`
	Points int64 `json:"points"`
}

// Result is the outcome of a rule: the deltas to persist plus the ranking
// that produced them.
type Result struct {
	Game       model.Game    `json:"game"`
	Deltas     []model.Delta `json:"deltas"`
	Placements []Placement   `json:"placements"`
	Draw       bool          `json:"draw,omitempty"`
}

// Sum returns the total of all deltas. It is zero for every valid result.
func (r Result) Sum() int64 {
	var sum int64
	for _, d := range r.Deltas {
		sum += d.Points
	}
	return sum
}

// Submission carries the raw input of any game dialog. Only the field that
// belongs to the evaluated game is read.
type Submission struct {
	Molkky  MolkkyInput
	Scores  map[int64]string
	Bowling map[int64]BowlingEntry
}

// Evaluate dispatches to the rule of game.
func Evaluate(game model.Game, roster []model.Team, sub Submission) (Result, error) {
	switch game {
	case model.Molkky:
		return ScoreMolkky(roster, sub.Molkky)
	case model.KusoGe:
		return ScoreKusoGe(roster, sub.Scores)
	case model.Bowling:
		return ScoreBowling(roster, sub.Bowling)
	case model.Darts:
		return ScoreDarts(roster, sub.Scores)
	default:
		return Result{}, invalid(game, "unsupported game")
	}
}

// ranked is a participant with the value used for ordering.
type ranked struct {
	teamID int64
	value  int64
}

// orderedRoster returns a copy of roster sorted by ascending id.
func orderedRoster(roster []model.Team) []model.Team {
	out := make([]model.Team, len(roster))
	copy(out, roster)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func rosterIndex(roster []model.Team) map[int64]struct{} {
	idx := make(map[int64]struct{}, len(roster))
	for _, t := range roster {
		idx[t.ID] = struct{}{}
	}
	return idx
}

// checkKnown rejects input keyed by teams outside the roster.
func checkKnown[V any](game model.Game, roster []model.Team, input map[int64]V) error {
	idx := rosterIndex(roster)
	unknown := make([]int64, 0)
	for id := range input {
		if _, ok := idx[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return invalid(game, "unknown team id %d", unknown[0])
}

// sortDesc orders best first for higher-is-better games.
func sortDesc(rs []ranked) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].value > rs[j].value })
}

// sortAsc orders best first for lower-is-better games.
func sortAsc(rs []ranked) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].value < rs[j].value })
}

// settle builds a Result from the ranked order and the points awarded by
// team. Deltas follow roster order; teams missing from emit get no delta.
func settle(game model.Game, roster []model.Team, order []ranked, points map[int64]int64, emit map[int64]bool) Result {
	res := Result{Game: game}
	for _, t := range roster {
		if emit[t.ID] {
			res.Deltas = append(res.Deltas, model.Delta{TeamID: t.ID, Points: points[t.ID]})
		}
	}
	for i, r := range order {
		res.Placements = append(res.Placements, Placement{
			Place:  i + 1,
			TeamID: r.teamID,
			Value:  r.value,
			Points: points[r.teamID],
		})
	}
	return res
}
