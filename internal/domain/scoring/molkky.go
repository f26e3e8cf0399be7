package scoring

import "github.com/okian/liao/internal/domain/model"

const (
	molkkyBase       = 3000
	molkkyPerPoint   = 100
	molkkyMinPlayers = 2
)

// MolkkySide is one side of a head-to-head Molkky match.
type MolkkySide struct {
	TeamID int64  `json:"team_id"`
	Score  string `json:"score"`
}

// MolkkyInput is the two-team Molkky dialog.
type MolkkyInput struct {
	TeamA MolkkySide `json:"team_a"`
	TeamB MolkkySide `json:"team_b"`
}

// ScoreMolkky transfers 3000 plus 100 per point of difference from the
// loser to the winner. Equal scores produce a zero-point draw.
func ScoreMolkky(roster []model.Team, in MolkkyInput) (Result, error) {
	idx := rosterIndex(roster)
	if in.TeamA.TeamID == 0 || in.TeamB.TeamID == 0 {
		return Result{}, invalid(model.Molkky, "both teams must be selected")
	}
	if in.TeamA.TeamID == in.TeamB.TeamID {
		return Result{}, invalid(model.Molkky, "teams must be different")
	}
	for _, side := range []MolkkySide{in.TeamA, in.TeamB} {
		if _, ok := idx[side.TeamID]; !ok {
			return Result{}, invalid(model.Molkky, "unknown team id %d", side.TeamID)
		}
	}
	a, okA, err := read(model.Molkky, in.TeamA.TeamID, in.TeamA.Score)
	if err != nil {
		return Result{}, err
	}
	b, okB, err := read(model.Molkky, in.TeamB.TeamID, in.TeamB.Score)
	if err != nil {
		return Result{}, err
	}
	if !okA || !okB {
		return Result{}, invalid(model.Molkky, "need %d scores", molkkyMinPlayers)
	}

	order := []ranked{{teamID: in.TeamA.TeamID, value: a}, {teamID: in.TeamB.TeamID, value: b}}
	sortDesc(order)

	res := Result{Game: model.Molkky}
	points := make(map[int64]int64, 2)
	if a == b {
		res.Draw = true
	} else {
		amount := molkkyBase + abs(a-b)*molkkyPerPoint
		points[order[0].teamID] = amount
		points[order[1].teamID] = -amount
	}
	res.Deltas = []model.Delta{
		{TeamID: in.TeamA.TeamID, Points: points[in.TeamA.TeamID]},
		{TeamID: in.TeamB.TeamID, Points: points[in.TeamB.TeamID]},
	}
	for i, r := range order {
		res.Placements = append(res.Placements, Placement{
			Place:  i + 1,
			TeamID: r.teamID,
			Value:  r.value,
			Points: points[r.teamID],
		})
	}
	return res, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
