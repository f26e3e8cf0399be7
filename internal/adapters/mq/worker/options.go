package worker

import (
	"time"

	"github.com/okian/liao/pkg/logger"
)

// Option applies a configuration option to a worker.
type Option func(*settings)

type settings struct {
	name         string
	logger       logger.Logger
	drainTimeout time.Duration
}

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDrainTimeout bounds how long Pool.Shutdown waits for the source to
// drain, and then for busy workers to stop.
func WithDrainTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.drainTimeout = d
		}
	}
}
