package api

import (
	"github.com/okian/liao/internal/adapters/session"
	"github.com/okian/liao/pkg/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithCookie sets the session cookie name and its Secure flag.
func WithCookie(name string, secure bool) Option {
	return func(s *Server) {
		if name != "" {
			s.cookieName = name
		}
		s.secureCookie = secure
	}
}

// WithAllowedOrigins enables CORS for origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithLoginLimiter replaces the per-client login limiter.
func WithLoginLimiter(l *session.IPRateLimiter) Option {
	return func(s *Server) {
		if l != nil {
			s.loginLimiter = l
		}
	}
}

// WithTrustProxy takes the client address from True-Client-IP, X-Real-IP or
// X-Forwarded-For. Enable it only behind a proxy that overwrites them.
func WithTrustProxy(trust bool) Option {
	return func(s *Server) {
		s.trustProxy = trust
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
