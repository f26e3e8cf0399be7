package scoring_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/liao/internal/domain/model"
	"github.com/okian/liao/internal/domain/scoring"
)

func roster(n int) []model.Team {
	teams := make([]model.Team, 0, n)
	for i := 1; i <= n; i++ {
		teams = append(teams, model.Team{ID: int64(i), Name: "T" + strconv.Itoa(i)})
	}
	return teams
}

func pointsByTeam(res scoring.Result) map[int64]int64 {
	out := make(map[int64]int64, len(res.Deltas))
	for _, d := range res.Deltas {
		out[d.TeamID] = d.Points
	}
	return out
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		cases := []struct {
			raw     string
			want    int64
			present bool
		}{
			{"10", 10, true},
			{" 0 ", 0, true},
			{"-5", -5, true},
			{"10.0", 10, true},
			{"１２", 12, true},
			{"", 0, false},
			{"   ", 0, false},
			{"abc", 0, false},
			{"1000000000", scoring.MaxValue, true},
			{"-1000000000", -scoring.MaxValue, true},
		}
		for _, tc := range cases {
			v := scoring.Parse(tc.raw)
			n, ok := v.Get()
			So(ok, ShouldEqual, tc.present)
			So(n, ShouldEqual, tc.want)
			So(v.Malformed(), ShouldBeEmpty)
		}

		Convey("Fractions and out of range numbers are malformed, not absent", func() {
			for _, raw := range []string{"1.5", "1000000001", "-1000000001", "9e18", "99999999999999999999", "1e400"} {
				v := scoring.Parse(raw)
				So(v.Present(), ShouldBeFalse)
				So(v.Malformed(), ShouldNotBeEmpty)
				So(v.String(), ShouldEqual, "malformed")
			}
		})

		Convey("Absent is the zero value and distinct from zero", func() {
			So(scoring.Value{}.Present(), ShouldBeFalse)
			So(scoring.Participating(0).Present(), ShouldBeTrue)
			So(scoring.Absent.String(), ShouldEqual, "absent")
			So(scoring.Participating(7).String(), ShouldEqual, "7")
		})
	})
}

func TestMolkky(t *testing.T) {
	Convey("Given two Molkky teams", t, func() {
		teams := roster(3)

		Convey("When A beats B 10 to 4", func() {
			res, err := scoring.ScoreMolkky(teams, scoring.MolkkyInput{
				TeamA: scoring.MolkkySide{TeamID: 1, Score: "10"},
				TeamB: scoring.MolkkySide{TeamID: 2, Score: "4"},
			})
			So(err, ShouldBeNil)

			Convey("Then 3600 points move from B to A in input order", func() {
				want := []model.Delta{{TeamID: 1, Points: 3600}, {TeamID: 2, Points: -3600}}
				So(cmp.Diff(want, res.Deltas), ShouldBeEmpty)
				So(res.Draw, ShouldBeFalse)
				So(res.Placements[0].TeamID, ShouldEqual, 1)
			})
		})

		Convey("When B wins", func() {
			res, err := scoring.ScoreMolkky(teams, scoring.MolkkyInput{
				TeamA: scoring.MolkkySide{TeamID: 3, Score: "0"},
				TeamB: scoring.MolkkySide{TeamID: 1, Score: "50"},
			})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{3: -8000, 1: 8000})
		})

		Convey("When the scores are equal", func() {
			res, err := scoring.ScoreMolkky(teams, scoring.MolkkyInput{
				TeamA: scoring.MolkkySide{TeamID: 1, Score: "7"},
				TeamB: scoring.MolkkySide{TeamID: 2, Score: "7"},
			})
			So(err, ShouldBeNil)
			So(res.Draw, ShouldBeTrue)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: 0, 2: 0})
		})

		Convey("When the input is incomplete", func() {
			inputs := []scoring.MolkkyInput{
				{TeamA: scoring.MolkkySide{TeamID: 1, Score: "1"}},
				{TeamA: scoring.MolkkySide{TeamID: 1, Score: "1"}, TeamB: scoring.MolkkySide{TeamID: 1, Score: "2"}},
				{TeamA: scoring.MolkkySide{TeamID: 1, Score: ""}, TeamB: scoring.MolkkySide{TeamID: 2, Score: "2"}},
				{TeamA: scoring.MolkkySide{TeamID: 1, Score: "1"}, TeamB: scoring.MolkkySide{TeamID: 99, Score: "2"}},
			}
			for _, in := range inputs {
				_, err := scoring.ScoreMolkky(teams, in)
				So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
			}
		})
	})
}

func TestKusoGe(t *testing.T) {
	Convey("Given four KusoGe scores", t, func() {
		teams := roster(4)
		res, err := scoring.ScoreKusoGe(teams, map[int64]string{1: "50", 2: "30", 3: "10", 4: "0"})
		So(err, ShouldBeNil)

		Convey("Then first takes 7000 from third and the rest record zero", func() {
			want := []model.Delta{
				{TeamID: 1, Points: 7000},
				{TeamID: 2, Points: 0},
				{TeamID: 3, Points: -7000},
				{TeamID: 4, Points: 0},
			}
			So(cmp.Diff(want, res.Deltas), ShouldBeEmpty)
		})

		Convey("Absent teams get no delta", func() {
			res, err := scoring.ScoreKusoGe(teams, map[int64]string{1: "5", 2: "", 3: "9", 4: "1"})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: 0, 3: 3800, 4: -3800})
		})

		Convey("Ties rank the lower team id first", func() {
			res, err := scoring.ScoreKusoGe(teams, map[int64]string{4: "10", 3: "10", 2: "10"})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{2: 3000, 3: 0, 4: -3000})
		})

		Convey("Fewer than three participants is rejected", func() {
			_, err := scoring.ScoreKusoGe(teams, map[int64]string{1: "10", 2: "0", 3: " "})
			var verr *scoring.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Game, ShouldEqual, model.KusoGe)
		})

		Convey("Unknown team ids are rejected", func() {
			_, err := scoring.ScoreKusoGe(teams, map[int64]string{1: "1", 2: "2", 3: "3", 42: "4"})
			So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestBowling(t *testing.T) {
	Convey("Given two bowling teams", t, func() {
		teams := roster(3)
		res, err := scoring.ScoreBowling(teams, map[int64]scoring.BowlingEntry{
			1: {Score: "120", Bonus: "2"},
			2: {Score: "100", Bonus: "1", Handicap: true},
		})
		So(err, ShouldBeNil)

		Convey("Then the handicapped team wins by 30 pins", func() {
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: -3000, 2: 3000})
			So(res.Placements[0].Value, ShouldEqual, 170)
			So(res.Placements[1].Value, ShouldEqual, 140)
		})

		Convey("A team without a bonus does not participate", func() {
			_, err := scoring.ScoreBowling(teams, map[int64]scoring.BowlingEntry{
				1: {Score: "120", Bonus: "2"},
				2: {Score: "100"},
			})
			So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
		})

		Convey("Middle teams record zero", func() {
			res, err := scoring.ScoreBowling(teams, map[int64]scoring.BowlingEntry{
				1: {Score: "100", Bonus: "0"},
				2: {Score: "90", Bonus: "0"},
				3: {Score: "80", Bonus: "0"},
			})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: 2000, 2: 0, 3: -2000})
		})
	})
}

func TestDarts(t *testing.T) {
	Convey("Given three darts teams", t, func() {
		teams := roster(3)
		res, err := scoring.ScoreDarts(teams, map[int64]string{1: "50", 2: "60", 3: "80"})
		So(err, ShouldBeNil)

		Convey("Then second and third pay first", func() {
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: 3350, 2: -1050, 3: -2300})
		})

		Convey("A missing score rejects the whole submission", func() {
			_, err := scoring.ScoreDarts(teams, map[int64]string{1: "50", 2: "60"})
			So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
		})

		Convey("Fourth place and below record nothing", func() {
			res, err := scoring.ScoreDarts(roster(5), map[int64]string{1: "90", 2: "10", 3: "20", 4: "30", 5: "40"})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{2: 3250, 3: -1050, 4: -2200})
			So(len(res.Placements), ShouldEqual, 5)
		})

		Convey("Two teams settle first and second only", func() {
			res, err := scoring.ScoreDarts(roster(2), map[int64]string{1: "30", 2: "10"})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: -1100, 2: 1100})
		})

		Convey("A single team is rejected", func() {
			_, err := scoring.ScoreDarts(roster(1), map[int64]string{1: "30"})
			So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestValueBounds(t *testing.T) {
	Convey("Given values at the accepted bound", t, func() {
		teams := roster(3)

		Convey("Then every rule keeps the winner positive", func() {
			res, err := scoring.ScoreMolkky(teams, scoring.MolkkyInput{
				TeamA: scoring.MolkkySide{TeamID: 1, Score: "1000000000"},
				TeamB: scoring.MolkkySide{TeamID: 2, Score: "-1000000000"},
			})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: 200000003000, 2: -200000003000})

			res, err = scoring.ScoreKusoGe(teams, map[int64]string{1: "1000000000", 2: "0", 3: "-1000000000"})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: 200000003000, 2: 0, 3: -200000003000})

			res, err = scoring.ScoreBowling(teams, map[int64]scoring.BowlingEntry{
				1: {Score: "1000000000", Bonus: "1000000000", Handicap: true},
				2: {Score: "-1000000000", Bonus: "-1000000000"},
			})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: 2200000006000, 2: -2200000006000})

			res, err = scoring.ScoreDarts(teams, map[int64]string{1: "-1000000000", 2: "0", 3: "1000000000"})
			So(err, ShouldBeNil)
			So(pointsByTeam(res), ShouldResemble, map[int64]int64{1: 25000003000, 2: -5000001000, 3: -20000002000})
		})

		Convey("Then one past the bound is a validation error in every rule", func() {
			_, err := scoring.ScoreMolkky(teams, scoring.MolkkyInput{
				TeamA: scoring.MolkkySide{TeamID: 1, Score: "100000000000000000"},
				TeamB: scoring.MolkkySide{TeamID: 2, Score: "0"},
			})
			So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)

			_, err = scoring.ScoreKusoGe(teams, map[int64]string{1: "9e18", 2: "0", 3: "-9e18"})
			So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)

			_, err = scoring.ScoreBowling(teams, map[int64]scoring.BowlingEntry{
				1: {Score: "100", Bonus: "1000000001"},
				2: {Score: "90", Bonus: "0"},
			})
			So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)

			_, err = scoring.ScoreDarts(teams, map[int64]string{1: "10", 2: "20", 3: "-1000000001"})
			So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
		})

		Convey("Then a fractional score rejects the submission instead of dropping the team", func() {
			_, err := scoring.ScoreKusoGe(teams, map[int64]string{1: "10", 2: "1.5", 3: "3"})
			var verr *scoring.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Reason, ShouldContainSubstring, "integers")
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Evaluate dispatches by game", t, func() {
		teams := roster(3)
		res, err := scoring.Evaluate(model.Darts, teams, scoring.Submission{
			Scores: map[int64]string{1: "50", 2: "60", 3: "80"},
		})
		So(err, ShouldBeNil)
		So(res.Game, ShouldEqual, model.Darts)

		_, err = scoring.Evaluate(model.Game("chess"), teams, scoring.Submission{})
		So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
	})
}

func TestZeroSum(t *testing.T) {
	Convey("Every valid result is zero-sum", t, func() {
		f := gofakeit.New(42)
		for i := 0; i < 200; i++ {
			n := f.Number(3, 12)
			teams := roster(n)
			scores := make(map[int64]string, n)
			entries := make(map[int64]scoring.BowlingEntry, n)
			for _, tm := range teams {
				scores[tm.ID] = strconv.Itoa(f.Number(0, 500))
				entries[tm.ID] = scoring.BowlingEntry{
					Score:    strconv.Itoa(f.Number(0, 300)),
					Bonus:    strconv.Itoa(f.Number(0, 10)),
					Handicap: f.Bool(),
				}
			}
			sub := scoring.Submission{
				Scores:  scores,
				Bowling: entries,
				Molkky: scoring.MolkkyInput{
					TeamA: scoring.MolkkySide{TeamID: 1, Score: scores[1]},
					TeamB: scoring.MolkkySide{TeamID: 2, Score: scores[2]},
				},
			}
			for _, g := range model.Games() {
				res, err := scoring.Evaluate(g, teams, sub)
				So(err, ShouldBeNil)
				So(res.Sum(), ShouldEqual, 0)
			}
		}
	})
}
