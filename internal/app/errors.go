package service

import "errors"

// Sentinel error kinds returned by the service.
var (
	ErrNotStarted          = errors.New("service not started")
	ErrNoStore             = errors.New("service requires a store")
	ErrNoGate              = errors.New("service requires a session gate")
	ErrDuplicateSubmission = errors.New("submission already recorded")
)
