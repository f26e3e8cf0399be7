package session

import "time"

// Option configures a Gate.
type Option func(*Gate)

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithClock overrides the time source used to issue and verify tokens.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithIssuer sets the iss claim.
func WithIssuer(issuer string) Option {
	return func(g *Gate) {
		g.issuer = issuer
	}
}
