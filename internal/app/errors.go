package service

import "errors"

// Sentinel error kinds returned by the service. The HTTP layer maps them to
// status codes with errors.Is.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrTooLarge       = errors.New("input too large")
	ErrBackpressure   = errors.New("scoring queue is full")
	ErrBatchTimeout   = errors.New("batch timed out")
	ErrNotStarted     = errors.New("service not started")
	ErrDuplicateID    = errors.New("duplicate attempt id")
	ErrServiceStopped = errors.New("service stopped")
)
