package scoring

import "github.com/okian/liao/internal/domain/model"

const (
	kusoGeBase       = 3000
	kusoGePerPoint   = 100
	kusoGeMinPlayers = 3
)

// ScoreKusoGe ranks participants by score, highest first. First place takes
// 3000 plus 100 per point over third place from third place; everyone else
// records a zero delta.
func ScoreKusoGe(roster []model.Team, scores map[int64]string) (Result, error) {
	if err := checkKnown(model.KusoGe, roster, scores); err != nil {
		return Result{}, err
	}
	order, err := participants(model.KusoGe, roster, scores)
	if err != nil {
		return Result{}, err
	}
	if len(order) < kusoGeMinPlayers {
		return Result{}, invalid(model.KusoGe, "need at least %d participants, got %d", kusoGeMinPlayers, len(order))
	}
	sortDesc(order)

	first, third := order[0], order[2]
	amount := kusoGeBase + (first.value-third.value)*kusoGePerPoint

	points := make(map[int64]int64, len(order))
	emit := make(map[int64]bool, len(order))
	for _, r := range order {
		points[r.teamID] = 0
		emit[r.teamID] = true
	}
	points[first.teamID] = amount
	points[third.teamID] = -amount
	return settle(model.KusoGe, orderedRoster(roster), order, points, emit), nil
}

// participants parses raw scores in ascending team id order and drops
// absent teams.
func participants(game model.Game, roster []model.Team, scores map[int64]string) ([]ranked, error) {
	out := make([]ranked, 0, len(scores))
	for _, t := range orderedRoster(roster) {
		raw, ok := scores[t.ID]
		if !ok {
			continue
		}
		n, ok, err := read(game, t.ID, raw)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ranked{teamID: t.ID, value: n})
		}
	}
	return out, nil
}
