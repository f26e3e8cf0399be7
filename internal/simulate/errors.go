package simulate

import "errors"

// Sentinel errors.
var (
	ErrTooFewTeams = errors.New("at least two teams are required")
	ErrNotZeroSum  = errors.New("points were not zero-sum")
	ErrEnqueue     = errors.New("enqueue failed")
)
