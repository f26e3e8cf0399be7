// Package simulate drives random but valid game submissions through the
// scoring service. It is used to rehearse an event and to smoke-test a
// deployment before real teams play.
package simulate

import (
	"strconv"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	service "github.com/okian/liao/internal/app"
	"github.com/okian/liao/internal/domain/model"
	"github.com/okian/liao/internal/domain/scoring"
)

// Score ranges used by the generator.
const (
	molkkyMaxScore  = 50
	kusogeMinScore  = -20
	kusogeMaxScore  = 100
	bowlingMinScore = 40
	bowlingMaxScore = 300
	bowlingMaxBonus = 5
	dartsMaxScore   = 501
)

// Generator builds submissions that every game rule accepts.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator returns a generator seeded with seed. Zero picks a random seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Playable lists the games a roster of n teams can play.
func Playable(n int) []model.Game {
	games := make([]model.Game, 0, len(model.Games()))
	for _, g := range model.Games() {
		switch {
		case n < 2:
		case g == model.KusoGe && n < 3:
		default:
			games = append(games, g)
		}
	}
	return games
}

// Generate returns n submissions with fresh ids.
func (g *Generator) Generate(roster []model.Team, n int) ([]service.SubmitRequest, error) {
	games := Playable(len(roster))
	if len(games) == 0 {
		return nil, ErrTooFewTeams
	}

	out := make([]service.SubmitRequest, 0, n)
	for i := 0; i < n; i++ {
		game := games[g.faker.Number(0, len(games)-1)]
		out = append(out, service.SubmitRequest{
			SubmissionID: uuid.MustParse(g.faker.UUID()),
			Game:         game,
			Submission:   g.submission(game, roster),
		})
	}
	return out, nil
}

func (g *Generator) submission(game model.Game, roster []model.Team) scoring.Submission {
	switch game {
	case model.Molkky:
		pair := g.pick(roster, 2)
		a, b := pair[0], pair[1]
		return scoring.Submission{Molkky: scoring.MolkkyInput{
			TeamA: scoring.MolkkySide{TeamID: a.ID, Score: g.number(0, molkkyMaxScore)},
			TeamB: scoring.MolkkySide{TeamID: b.ID, Score: g.number(0, molkkyMaxScore)},
		}}
	case model.KusoGe:
		scores := make(map[int64]string)
		for _, t := range g.pick(roster, g.faker.Number(3, len(roster))) {
			scores[t.ID] = g.number(kusogeMinScore, kusogeMaxScore)
		}
		return scoring.Submission{Scores: scores}
	case model.Bowling:
		entries := make(map[int64]scoring.BowlingEntry)
		for _, t := range g.pick(roster, g.faker.Number(2, len(roster))) {
			entries[t.ID] = scoring.BowlingEntry{
				Score:    g.number(bowlingMinScore, bowlingMaxScore),
				Bonus:    g.number(0, bowlingMaxBonus),
				Handicap: g.faker.Bool(),
			}
		}
		return scoring.Submission{Bowling: entries}
	default:
		scores := make(map[int64]string, len(roster))
		for _, t := range roster {
			scores[t.ID] = g.number(0, dartsMaxScore)
		}
		return scoring.Submission{Scores: scores}
	}
}

// pick returns k distinct teams in random order.
func (g *Generator) pick(roster []model.Team, k int) []model.Team {
	teams := make([]model.Team, len(roster))
	copy(teams, roster)
	g.faker.ShuffleAnySlice(teams)
	return teams[:k]
}

func (g *Generator) number(lo, hi int) string {
	return strconv.Itoa(g.faker.Number(lo, hi))
}
