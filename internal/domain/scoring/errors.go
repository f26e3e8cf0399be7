package scoring

import (
	"errors"
	"fmt"

	"github.com/okian/liao/internal/domain/model"
)

// ErrValidation is the kind shared by every rule rejection.
var ErrValidation = errors.New("validation failed")

// ValidationError reports why a submission cannot be scored. Nothing must be
// persisted when a rule returns it.
type ValidationError struct {
	Game   model.Game
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Game == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Game, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(game model.Game, format string, args ...any) error {
	return &ValidationError{Game: game, Reason: fmt.Sprintf(format, args...)}
}
