package scoring

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/okian/liao/internal/domain/model"
)

// MaxValue bounds the magnitude of an entered value. Every formula stays
// well inside int64 for inputs within the bound.
const MaxValue = 1_000_000_000

// Value is a parsed form field: either a participating integer or absent.
// The zero Value is Absent, which keeps "not entered" distinct from 0.
// A numeric entry that cannot be scored is neither and carries a reason.
type Value struct {
	n         int64
	present   bool
	malformed string
}

// Absent marks a team that did not enter a value.
var Absent = Value{}

// Participating wraps an entered value.
func Participating(n int64) Value {
	return Value{n: n, present: true}
}

// Parse converts raw form input. Full-width digits are accepted. Blank and
// non-numeric input are Absent. Fractions and values beyond MaxValue are
// malformed.
func Parse(raw string) Value {
	s := strings.TrimSpace(width.Narrow.String(raw))
	if s == "" {
		return Absent
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return bounded(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRange(err) {
		return Absent
	}
	if math.IsNaN(f) {
		return Absent
	}
	if math.IsInf(f, 0) || math.Abs(f) > MaxValue {
		return Value{malformed: "value out of range"}
	}
	if f != math.Trunc(f) {
		return Value{malformed: "scores must be integers"}
	}
	return Participating(int64(f))
}

func bounded(n int64) Value {
	if n > MaxValue || n < -MaxValue {
		return Value{malformed: "value out of range"}
	}
	return Participating(n)
}

func isRange(err error) bool {
	var numErr *strconv.NumError
	return errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange)
}

// Get returns the value and whether it was entered.
func (v Value) Get() (int64, bool) {
	return v.n, v.present
}

// Present reports whether the team entered a value.
func (v Value) Present() bool {
	return v.present
}

// Malformed returns why an entered number cannot be scored, or "".
func (v Value) Malformed() string {
	return v.malformed
}

func (v Value) String() string {
	switch {
	case v.malformed != "":
		return "malformed"
	case !v.present:
		return "absent"
	}
	return strconv.FormatInt(v.n, 10)
}

// read parses raw for a team and turns a malformed entry into a
// ValidationError.
func read(game model.Game, teamID int64, raw string) (int64, bool, error) {
	v := Parse(raw)
	if v.malformed != "" {
		return 0, false, invalid(game, "team %d: %s: %q", teamID, v.malformed, raw)
	}
	n, ok := v.Get()
	return n, ok, nil
}
