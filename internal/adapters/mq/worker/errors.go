package worker

import "errors"

// ErrDrainTimeout is returned by Pool.Shutdown when the source was not
// drained in time and queued jobs may have been dropped.
var ErrDrainTimeout = errors.New("worker pool did not drain")
