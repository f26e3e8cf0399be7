package simulate

import (
	"github.com/okian/liao/pkg/logger"
)

// Default run configuration constants.
const (
	DefaultSubmissions = 20
	DefaultWorkers     = 4
	DefaultQueueSize   = 64
)

// Option configures a Runner.
type Option func(*Runner)

// WithSubmissions sets how many submissions are generated.
func WithSubmissions(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.submissions = n
		}
	}
}

// WithWorkers sets the number of concurrent submitters.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithQueueSize bounds the number of pending submissions.
func WithQueueSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// WithSeed makes generation reproducible. Zero picks a random seed.
func WithSeed(seed uint64) Option {
	return func(r *Runner) {
		r.seed = seed
	}
}

// WithLogger sets the runner logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
