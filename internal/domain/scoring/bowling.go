package scoring

import "github.com/okian/liao/internal/domain/model"

const (
	bowlingBonusWeight = 10
	bowlingHandicap    = 60
	bowlingPerPin      = 100
	bowlingMinPlayers  = 2
)

// BowlingEntry is one team's row in the bowling dialog.
type BowlingEntry struct {
	Score    string `json:"score"`
	Bonus    string `json:"bonus"`
	Handicap bool   `json:"handicap"`
}

// effective returns score + bonus*10 (+60 with handicap). ok is false unless
// both score and bonus were entered.
func (e BowlingEntry) effective(teamID int64) (int64, bool, error) {
	score, okScore, err := read(model.Bowling, teamID, e.Score)
	if err != nil {
		return 0, false, err
	}
	bonus, okBonus, err := read(model.Bowling, teamID, e.Bonus)
	if err != nil {
		return 0, false, err
	}
	if !okScore || !okBonus {
		return 0, false, nil
	}
	total := score + bonus*bowlingBonusWeight
	if e.Handicap {
		total += bowlingHandicap
	}
	return total, true, nil
}

// ScoreBowling moves 100 points per pin of difference between the best and
// worst effective score from last place to first place.
func ScoreBowling(roster []model.Team, entries map[int64]BowlingEntry) (Result, error) {
	if err := checkKnown(model.Bowling, roster, entries); err != nil {
		return Result{}, err
	}
	ordered := orderedRoster(roster)
	order := make([]ranked, 0, len(entries))
	for _, t := range ordered {
		e, ok := entries[t.ID]
		if !ok {
			continue
		}
		total, ok, err := e.effective(t.ID)
		if err != nil {
			return Result{}, err
		}
		if ok {
			order = append(order, ranked{teamID: t.ID, value: total})
		}
	}
	if len(order) < bowlingMinPlayers {
		return Result{}, invalid(model.Bowling, "need at least %d participants, got %d", bowlingMinPlayers, len(order))
	}
	sortDesc(order)

	first, last := order[0], order[len(order)-1]
	amount := (first.value - last.value) * bowlingPerPin

	points := make(map[int64]int64, len(order))
	emit := make(map[int64]bool, len(order))
	for _, r := range order {
		points[r.teamID] = 0
		emit[r.teamID] = true
	}
	points[first.teamID] = amount
	points[last.teamID] = -amount
	return settle(model.Bowling, ordered, order, points, emit), nil
}
