package scoring

import "github.com/okian/liao/internal/domain/model"

const (
	dartsSecondBase  = 1000
	dartsSecondRate  = 5
	dartsThirdBase   = 2000
	dartsThirdRate   = 10
	dartsMinPlayers  = 2
	dartsPaidPlacing = 3
)

// ScoreDarts ranks teams by remaining points, lowest first. Second and third
// pay first place; fourth and below record nothing. Every roster team must
// have a score.
func ScoreDarts(roster []model.Team, scores map[int64]string) (Result, error) {
	if err := checkKnown(model.Darts, roster, scores); err != nil {
		return Result{}, err
	}
	ordered := orderedRoster(roster)
	order := make([]ranked, 0, len(ordered))
	for _, t := range ordered {
		n, ok, err := read(model.Darts, t.ID, scores[t.ID])
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, invalid(model.Darts, "missing score for team %q", t.Name)
		}
		order = append(order, ranked{teamID: t.ID, value: n})
	}
	if len(order) < dartsMinPlayers {
		return Result{}, invalid(model.Darts, "need at least %d participants, got %d", dartsMinPlayers, len(order))
	}
	sortAsc(order)

	first := order[0]
	points := make(map[int64]int64, dartsPaidPlacing)
	emit := make(map[int64]bool, dartsPaidPlacing)

	second := order[1]
	points[second.teamID] = -dartsSecondBase - (second.value-first.value)*dartsSecondRate
	emit[second.teamID] = true
	paid := points[second.teamID]

	if len(order) >= dartsPaidPlacing {
		third := order[2]
		points[third.teamID] = -dartsThirdBase - (third.value-first.value)*dartsThirdRate
		emit[third.teamID] = true
		paid += points[third.teamID]
	}
	points[first.teamID] = -paid
	emit[first.teamID] = true

	return settle(model.Darts, ordered, order, points, emit), nil
}
