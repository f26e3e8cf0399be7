package session

import "errors"

// Sentinel kinds for session errors.
var (
	ErrCodeFormat     = errors.New("passcode must be 7 characters")
	ErrCodeMismatch   = errors.New("passcode does not match")
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrRateLimited    = errors.New("too many login attempts")
	ErrMissingSecret  = errors.New("session secret is required")
)
