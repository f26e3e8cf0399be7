package repository

import "time"

// Option configures a BunStore.
type Option func(*BunStore)

// WithClock overrides the source of event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *BunStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxOpenConns limits the postgres connection pool. SQLite always uses a
// single connection.
func WithMaxOpenConns(n int) Option {
	return func(s *BunStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}
